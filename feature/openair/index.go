package openair

import (
	"regexp"
	"strings"
	"sync"
	"unicode"

	"aero-importer/core/aero"

	"github.com/paulmach/orb"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type key struct {
	name  string
	class string
}

// Index resolves shapes by normalised name and class.
type Index struct {
	shapes map[key]orb.Ring
}

// BuildIndex keys every named shape by (name, class) and by (name, "").
// The first shape for a key wins.
func BuildIndex(shapes []Shape) *Index {
	ix := &Index{shapes: make(map[key]orb.Ring, 2*len(shapes))}
	for _, s := range shapes {
		name := NormalizeName(s.Name)
		if name == "" {
			continue
		}
		for _, k := range []key{{name, NormalizeClass(s.Class)}, {name, ""}} {
			if _, ok := ix.shapes[k]; !ok {
				ix.shapes[k] = s.Ring
			}
		}
	}
	return ix
}

// ByNameClass returns the ring stored under the normalised name and class.
func (ix *Index) ByNameClass(name, class string) (orb.Ring, bool) {
	if ix == nil {
		return nil, false
	}
	r, ok := ix.shapes[key{NormalizeName(name), NormalizeClass(class)}]
	return r, ok
}

// Len returns the number of keys in the index.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.shapes)
}

var decimalToken = regexp.MustCompile(`^\d+\.\d+$`)

// NormalizeName folds a name to upper-case ASCII with single spaces and
// drops trailing frequencies such as "118.700".
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	tokens := strings.Fields(strings.ToUpper(folded))
	for len(tokens) > 0 && decimalToken.MatchString(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// NormalizeClass trims and upper-cases an airspace class.
func NormalizeClass(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Collector gathers shapes and rejections from Parse.
type Collector struct {
	mu       sync.Mutex
	shapes   []Shape
	rejected []aero.Rejection
}

// EmitShape implements ShapeEmitter.
func (c *Collector) EmitShape(s Shape) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shapes = append(c.shapes, s)
	return nil
}

// Reject implements ShapeEmitter.
func (c *Collector) Reject(kind aero.Kind, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rejected = append(c.rejected, aero.Rejection{Kind: kind, Err: err})
}

// Shapes returns the collected shapes in input order.
func (c *Collector) Shapes() []Shape {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Shape(nil), c.shapes...)
}

// Rejections returns the rejected blocks.
func (c *Collector) Rejections() []aero.Rejection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]aero.Rejection(nil), c.rejected...)
}
