package arinc

import "strings"

// SelectMember picks the ARINC file of a snapshot archive. The isolated
// export is preferred over the merged one.
func SelectMember(names []string) (string, bool) {
	var first string
	for _, name := range names {
		if !strings.HasSuffix(name, ".pc") {
			continue
		}
		if strings.Contains(name, "/isolated/") {
			return name, true
		}
		if first == "" {
			first = name
		}
	}
	return first, first != ""
}
