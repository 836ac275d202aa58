package openair

import (
	"context"
	"strings"
	"testing"

	"aero-importer/core/aero"
	"aero-importer/core/geo"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `* OpenAIR sample
AC C
AN GENEVA CTA 118.700
AL 4500ft MSL
AH FL195
AT 46:15:00 N 006:10:00 E
DP 46:00:00 N 006:00:00 E
DP 46:00:00 N 006:30:00 E
DP 46:30:00 N 006:30:00 E
DP 46:30:00 N 006:00:00 E

AC R
AN LS-R4 Bière
AY RESTRICTED
V X=46:00:00 N 014:00:00 E
DC 5

AC D
AN ARC ZONE
V X=47:00:00 N 008:00:00 E
V D=+
DA 10,0,90
DB 47:00:00 N 008:14:38 E, 46:50:00 N 008:00:00 E
V W=2
SP 0,1,0,0,255
SB 255,255,255
`

func parse(t *testing.T, input string) *Collector {
	t.Helper()
	c := &Collector{}
	require.NoError(t, Parse(context.Background(), strings.NewReader(input), "sample.txt", c))
	return c
}

func TestParse(t *testing.T) {
	c := parse(t, sample)
	assert.Empty(t, c.Rejections())

	shapes := c.Shapes()
	require.Len(t, shapes, 3)

	cta := shapes[0]
	assert.Equal(t, "GENEVA CTA 118.700", cta.Name)
	assert.Equal(t, "C", cta.Class)
	assert.Equal(t, "4500ft MSL", cta.Lower)
	assert.Equal(t, "FL195", cta.Upper)
	assert.Equal(t, 2, cta.Line)
	require.Len(t, cta.Ring, 5)
	assert.Equal(t, orb.Point{6, 46}, cta.Ring[0])
	assert.True(t, cta.Ring.Closed())

	circle := shapes[1]
	require.Len(t, circle.Ring, 73)
	assert.Equal(t, circle.Ring[0], circle.Ring[72])
	for _, p := range circle.Ring {
		assert.InDelta(t, 5*geo.MetersPerNM, orbgeo.Distance(orb.Point{14, 46}, p), 1)
	}

	arc := shapes[2]
	assert.Equal(t, "D", arc.Class)
	assert.True(t, arc.Ring.Closed())
	assert.Greater(t, len(arc.Ring), 10)
}

// The circle scenario: 46.0 N 14.0 E, radius 5 nm.
func TestParse_Circle(t *testing.T) {
	c := parse(t, "AC R\nAN CIRCLE\nV X=46:00:00 N 014:00:00 E\nDC 5\n")
	shapes := c.Shapes()
	require.Len(t, shapes, 1)
	ring := shapes[0].Ring
	assert.Len(t, ring, 73)
	assert.Equal(t, ring[0], ring[len(ring)-1])
}

func TestParse_CounterClockwiseArc(t *testing.T) {
	c := parse(t, "AC D\nAN A\nV X=47:00:00 N 008:00:00 E\nV D=-\nDP 47:00:00 N 008:00:00 E\nDA 10,90,0\n")
	shapes := c.Shapes()
	require.Len(t, shapes, 1)
	// centre + 19 arc vertices + closing vertex
	assert.Len(t, shapes[0].Ring, 21)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		section string
		line    int
	}{
		{"UnknownDirective", "AC C\nAN X\nZZ 1\n", "ZZ", 3},
		{"VertexBeforeAC", "DP 46:00:00 N 006:00:00 E\n", "DP", 1},
		{"ArcWithoutCentre", "AC C\nAN X\nDA 10,0,90\n", "DA", 3},
		{"ArcBetweenWithoutCentre", "AC C\nAN X\nDB 46:00:00 N 006:00:00 E, 46:10:00 N 006:00:00 E\n", "DB", 3},
		{"CircleWithoutCentre", "AC C\nAN X\nDC 5\n", "DC", 3},
		{"Unterminated", "AC C\nAN EMPTY\nAL GND\nAC D\nAN NEXT\nDC 1\n", "AC", 1},
		{"UnterminatedAtEOF", "AC C\nAN EMPTY\n", "AC", 1},
		{"BadDirection", "AC C\nV D=x\n", "V", 2},
		{"BadRadius", "AC C\nV X=46:00:00 N 014:00:00 E\nDC five\n", "DC", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Parse(context.Background(), strings.NewReader(tt.input), "bad.txt", &Collector{})
			var perr *aero.ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.section, perr.Section)
			assert.Equal(t, tt.line, perr.Line)
			assert.Equal(t, "bad.txt", perr.File)
		})
	}
}

func TestParse_DegenerateRing(t *testing.T) {
	input := "AC C\nAN FLAT\nDP 46:00:00 N 006:00:00 E\nDP 46:10:00 N 006:00:00 E\nAC C\nAN OK\nDP 46:00:00 N 006:00:00 E\nDP 46:10:00 N 006:00:00 E\nDP 46:10:00 N 006:10:00 E\n"
	c := parse(t, input)

	require.Len(t, c.Shapes(), 1)
	assert.Equal(t, "OK", c.Shapes()[0].Name)
	require.Len(t, c.Rejections(), 1)
	assert.Equal(t, aero.ClassGeometry, aero.ErrorClass(c.Rejections()[0].Err))
	assert.Contains(t, c.Rejections()[0].Err.Error(), "FLAT")
}

func TestParse_BadPointRejectsBlock(t *testing.T) {
	input := "AC C\nAN BROKEN\nDP 46:00:00 N 006:00:00 E\nDP 95:00:00 N 006:00:00 E\nDP 46:10:00 N 006:10:00 E\nDP 46:10:00 N 006:00:00 E\n"
	c := parse(t, input)
	assert.Empty(t, c.Shapes())
	assert.Len(t, c.Rejections(), 1)
}

func TestSplitPair(t *testing.T) {
	a, b, ok := splitPair("47:00:00 N 008:14:40 E, 46:50:00 N 008:00:00 E")
	require.True(t, ok)
	assert.Equal(t, "47:00:00 N 008:14:40 E", a)
	assert.Equal(t, "46:50:00 N 008:00:00 E", b)

	_, _, ok = splitPair("47:00:00 N 008:14:40 E")
	assert.False(t, ok)
}
