package arinc

import (
	"context"
	"errors"
	"strings"
	"testing"

	"aero-importer/core/aero"
	"aero-importer/core/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rec builds a 132 column record from zero based offsets. Columns 129-132
// hold the cycle.
func rec(fields map[int]string) string {
	b := []byte(strings.Repeat(" ", RecordLength))
	copy(b[128:], "2601")
	for at, v := range fields {
		copy(b[at:], v)
	}
	return string(b)
}

var (
	lineAirport = rec(map[int]string{0: "S", 1: "EUR", 4: "P", 6: "LSGG", 10: "LS", 12: "A", 21: "0",
		32: "N46140000", 41: "E006061000", 51: "E0020", 56: "01411", 70: "07000", 93: "GENEVA"})
	lineEnd05 = rec(map[int]string{0: "S", 1: "EUR", 4: "P", 6: "LSGG", 10: "LS", 12: "G", 13: "RW05", 21: "0",
		22: "12795", 27: "0460", 32: "N46133500", 41: "E006052500", 77: "164"})
	lineEnd23 = rec(map[int]string{0: "S", 1: "EUR", 4: "P", 6: "LSGG", 10: "LS", 12: "G", 13: "RW23", 21: "0",
		22: "12795", 27: "2260", 32: "N46145500", 41: "E006080000", 77: "150"})
	lineVOR = rec(map[int]string{0: "S", 1: "EUR", 4: "D", 6: "LSGG", 10: "LS", 13: "PAS", 21: "0",
		22: "11660", 32: "N46100000", 41: "E006000000", 74: "E0020", 79: "01500", 90: "WGE", 93: "PASSEIRY"})
	lineEA = rec(map[int]string{0: "S", 1: "EUR", 4: "E", 5: "A", 6: "LS", 13: "SW", 21: "0", 26: "W",
		32: "N46200000", 41: "E006100000"})
	linePC = rec(map[int]string{0: "S", 1: "EUR", 4: "P", 6: "LSGG", 10: "LS", 12: "C", 13: "PLAYA", 21: "0", 26: "RF",
		32: "N46150000", 41: "E006050000", 98: "PLAYA POINT"})
	lineUC = rec(map[int]string{0: "S", 1: "EUR", 4: "U", 5: "C", 6: "LS", 9: "LSGG", 16: "C", 24: "0",
		81: "GND", 87: "FL195", 92: "M", 93: "GENEVA CTA"})
	lineUCSegment = rec(map[int]string{0: "S", 1: "EUR", 4: "U", 5: "C", 6: "LS", 9: "LSGG", 24: "0"})
	lineUCContinuation = rec(map[int]string{0: "S", 1: "EUR", 4: "U", 5: "C", 6: "LS", 9: "LSGX", 24: "1"})
	lineUR = rec(map[int]string{0: "S", 1: "EUR", 4: "U", 5: "R", 6: "LS", 8: "R", 9: "LSR21", 24: "0",
		82: "GND", 87: "09000", 92: "M", 93: "VALAIS"})
	lineUF = rec(map[int]string{0: "S", 1: "EUR", 4: "U", 5: "F", 6: "LSAS", 14: "F", 19: "0",
		80: "GND", 90: "UNL", 98: "SWITZERLAND FIR"})
)

func sample() string {
	return strings.Join([]string{
		lineAirport, lineEnd05, lineEnd23, lineVOR, lineEA, linePC,
		lineUC, lineUCSegment, lineUCContinuation, lineUR, lineUF,
	}, "\r\n") + "\r\n"
}

func parse(t *testing.T, input string) *aero.Collector {
	t.Helper()
	c := aero.NewCollector()
	require.NoError(t, Parse(context.Background(), strings.NewReader(input), aero.Provenance{Cycle: "2513", File: "sample.pc"}, c))
	return c
}

func byKind[T aero.Record](c *aero.Collector) []T {
	var out []T
	for _, r := range c.Records() {
		if v, ok := r.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func TestParse_Sample(t *testing.T) {
	c := parse(t, sample())
	assert.Empty(t, c.Rejections())

	airports := byKind[*aero.Airport](c)
	require.Len(t, airports, 1)
	apt := airports[0]
	assert.Equal(t, "LSGG", apt.CodeICAO)
	assert.Equal(t, "ARINC:PA:LSGG", apt.NativeID)
	assert.Equal(t, "GENEVA", apt.Name)
	require.NotNil(t, apt.MagVar)
	assert.InDelta(t, 2.0, *apt.MagVar, 1e-9)
	assert.Equal(t, "FT", apt.ElevationUOM)
	assert.Equal(t, aero.SourceARINC, apt.Prov.Source)
	assert.Equal(t, "2601", apt.Prov.Cycle)

	runways := byKind[*aero.Runway](c)
	require.Len(t, runways, 1)
	assert.Equal(t, "05/23", runways[0].Designator)
	assert.Equal(t, "ARINC:PG:LSGG:05-23", runways[0].NativeID)
	assert.Equal(t, "ARINC:PA:LSGG", runways[0].AirportRef)
	require.NotNil(t, runways[0].Width)
	assert.Equal(t, 164.0, *runways[0].Width)

	ends := byKind[*aero.RunwayEnd](c)
	require.Len(t, ends, 2)
	assert.Equal(t, "ARINC:RD:LSGG:05", ends[0].NativeID)
	assert.Equal(t, "ARINC:PG:LSGG:05-23", ends[1].RunwayRef)
	require.NotNil(t, ends[1].MagBearing)
	assert.InDelta(t, 226.0, *ends[1].MagBearing, 1e-9)

	navaids := byKind[*aero.Navaid](c)
	require.Len(t, navaids, 1)
	assert.Equal(t, "PAS", navaids[0].CodeID)
	require.NotNil(t, navaids[0].Frequency)
	assert.InDelta(t, 116.6, *navaids[0].Frequency, 1e-9)
	assert.Equal(t, "MHz", navaids[0].FrequencyUOM)

	var codes []string
	for _, w := range byKind[*aero.Waypoint](c) {
		codes = append(codes, w.CodeID)
	}
	assert.ElementsMatch(t, []string{"SW", "PLAYA"}, codes)

	airspaces := byKind[*aero.Airspace](c)
	require.Len(t, airspaces, 3)
	var types []string
	for _, a := range airspaces {
		types = append(types, a.CodeType)
	}
	assert.ElementsMatch(t, []string{"L", "R", "F"}, types)
}

func TestParse_Airspaces(t *testing.T) {
	airspaces := byKind[*aero.Airspace](parse(t, sample()))
	require.Len(t, airspaces, 3)

	uc := airspaces[0]
	assert.Equal(t, "ARINC:UC:LS:LSGG:L", uc.NativeID)
	assert.Equal(t, "GENEVA CTA", uc.Name)
	assert.Equal(t, "C", uc.Class)
	assert.Equal(t, "GND", uc.Lower.Ref)
	assert.Equal(t, "FL", uc.Upper.Ref)
	require.NotNil(t, uc.Upper.Value)
	assert.Equal(t, 195, *uc.Upper.Value)
	assert.Equal(t, "M", uc.Upper.UOM)

	ur := airspaces[1]
	assert.Equal(t, "ARINC:UR:LS:R:LSR21", ur.NativeID)
	require.NotNil(t, ur.Upper.Value)
	assert.Equal(t, 9000, *ur.Upper.Value)

	uf := airspaces[2]
	assert.Equal(t, "ARINC:UF:LSAS", uf.NativeID)
	assert.Equal(t, "EUR", uf.Region)
	assert.Equal(t, "GND", uf.Lower.Ref, "lower falls back to columns 81-85")
	assert.Equal(t, "UNL", uf.Upper.Ref)
	assert.Equal(t, "SWITZERLAND FIR", uf.Name)
}

func TestParse_Waypoints(t *testing.T) {
	wps := byKind[*aero.Waypoint](parse(t, sample()))
	require.Len(t, wps, 2)
	assert.Equal(t, "ARINC:EA:LS:SW", wps[0].NativeID)
	assert.Equal(t, "SW", wps[0].Name, "name falls back to the ident")
	assert.Equal(t, "ARINC:PC:LSGG:PLAYA", wps[1].NativeID)
	assert.Equal(t, "PLAYA POINT", wps[1].Name)
	assert.Equal(t, "RF", wps[1].PointType)
}

func TestParse_SynthesisesAirport(t *testing.T) {
	end := func(desig, lat, lon string) string {
		return rec(map[int]string{0: "S", 4: "P", 6: "LSZH", 10: "LS", 12: "G", 13: desig, 21: "0", 32: lat, 41: lon})
	}
	input := strings.Join([]string{
		end("RW14", "N47000000", "E008000000"),
		end("RW32", "N47020000", "E008020000"),
	}, "\n")

	c := parse(t, input)
	airports := byKind[*aero.Airport](c)
	require.Len(t, airports, 1)
	assert.Equal(t, "ARINC:PA:LSZH", airports[0].NativeID)
	assert.InDelta(t, 8+1.0/60, airports[0].Point.Lon(), 1e-9)
	assert.InDelta(t, 47+1.0/60, airports[0].Point.Lat(), 1e-9)

	runways := byKind[*aero.Runway](c)
	require.Len(t, runways, 1)
	assert.Equal(t, "14/32", runways[0].Designator)
	assert.Empty(t, runways[0].UOMDimRwy)
}

func TestParse_CycleFallback(t *testing.T) {
	line := []byte(lineEA)
	copy(line[128:], "    ")

	c := parse(t, string(line))
	require.Len(t, c.Records(), 1)
	assert.Equal(t, "2513", c.Records()[0].Base().Prov.Cycle)
}

func TestParse_ShortRecord(t *testing.T) {
	input := lineAirport + "\n" + lineEnd05[:100] + "\n"
	err := Parse(context.Background(), strings.NewReader(input), aero.Provenance{File: "short.pc"}, aero.NewCollector())

	var perr *aero.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, "PG", perr.Section)
	assert.Equal(t, "short.pc", perr.File)
}

func TestParse_SkipsUnknown(t *testing.T) {
	header := "HDR01" + strings.Repeat(" ", 127)
	unknownType := "X" + lineEA[1:]
	unknownSection := rec(map[int]string{0: "S", 4: "Z", 5: "Z"})
	short := "S   ZZ"

	c := parse(t, strings.Join([]string{header, unknownType, unknownSection, short, "", lineEA}, "\n"))
	assert.Len(t, c.Records(), 1)
}

func TestParse_BadCoordinate(t *testing.T) {
	bad := []byte(lineEA)
	copy(bad[32:], "N99000000")

	c := parse(t, string(bad)+"\n"+linePC)
	require.Len(t, c.Records(), 1)
	require.Len(t, c.Rejections(), 1)
	rej := c.Rejections()[0]
	assert.Equal(t, aero.KindWaypoint, rej.Kind)
	var gerr *geo.GeometryError
	assert.True(t, errors.As(rej.Err, &gerr))
	assert.Equal(t, aero.ClassGeometry, aero.ErrorClass(rej.Err))
}

func TestParse_BadRunwayEnd(t *testing.T) {
	bad := []byte(lineEnd05)
	copy(bad[32:], "N46991234")

	c := parse(t, lineAirport+"\n"+string(bad)+"\n")
	require.Len(t, c.Rejections(), 1)
	assert.Equal(t, aero.KindRunwayEnd, c.Rejections()[0].Kind)

	for _, r := range c.Records() {
		_, isRunway := r.(*aero.Runway)
		assert.False(t, isRunway, "rejected end created runway %s", r.Base().NativeID)
	}
	assert.Equal(t, 1, c.Counts()[aero.KindAirport])
	assert.Zero(t, c.Counts()[aero.KindRunway])
}

func TestParse_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Parse(ctx, strings.NewReader(sample()), aero.Provenance{}, aero.NewCollector())
	assert.ErrorIs(t, err, context.Canceled)
}
