package ofmx

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the file suffix of OFMX snapshots.
const Extension = ".ofmx"

// Scan lists the OFMX files under root in lexical order. A root that is
// itself an .ofmx file is returned alone; a missing root yields nothing.
func Scan(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(root) == Extension {
			return []string{root}, nil
		}
		return nil, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == Extension {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// SelectMember picks the first OFMX document of an archive, skipping shape
// extensions.
func SelectMember(names []string) (string, bool) {
	return selectOFMX(names, false)
}

// SelectShapes picks the shape extension of an archive.
func SelectShapes(names []string) (string, bool) {
	return selectOFMX(names, true)
}

func selectOFMX(names []string, shapes bool) (string, bool) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	for _, name := range sorted {
		if filepath.Ext(name) != Extension && filepath.Ext(name) != ".xml" {
			continue
		}
		if isShapes(name) == shapes {
			return name, true
		}
	}
	return "", false
}

func isShapes(name string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(name)), "shape")
}
