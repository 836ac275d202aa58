package shapes

import (
	"testing"

	"aero-importer/core/aero"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type idIndex map[string]orb.Ring

func (m idIndex) ByNativeID(id string) (orb.Ring, bool) {
	r, ok := m[id]
	return r, ok
}

type nameIndex map[[2]string]orb.Ring

func (m nameIndex) ByNameClass(name, class string) (orb.Ring, bool) {
	r, ok := m[[2]string{name, class}]
	return r, ok
}

var (
	ringA = orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}
	ringB = orb.Ring{{5, 5}, {6, 5}, {6, 6}, {5, 5}}
	ringC = orb.Ring{{9, 9}, {10, 9}, {10, 10}, {9, 9}}
)

func asp(source aero.Source, id, name, class string) *aero.Airspace {
	return &aero.Airspace{
		Meta:  aero.Meta{NativeID: id, Prov: aero.Provenance{Source: source}},
		Name:  name,
		Class: class,
	}
}

func TestMerge(t *testing.T) {
	ofmx := idIndex{"ASE1": ringA, "GENEVA": ringC}
	openair := nameIndex{
		{"GENEVA", "D"}: ringB,
		{"ZURICH", ""}:  ringC,
	}

	byID := asp(aero.SourceOFMX, "ASE1", "GENEVA", "D")
	byName := asp(aero.SourceARINC, "ARINC:UC:LS:LSGG:A", "GENEVA", "D")
	fallback := asp(aero.SourceARINC, "ARINC:UC:LS:LSZH:A", "ZURICH", "C")
	// an OFMX record never joins by name
	ofmxMiss := asp(aero.SourceOFMX, "ASE9", "ZURICH", "")
	// an ARINC record never joins by id
	arincMiss := asp(aero.SourceARINC, "GENEVA", "BERN", "D")
	kept := asp(aero.SourceOFMX, "ASE1", "GENEVA", "D")
	kept.Polygon = ringB

	st := Merge([]*aero.Airspace{byID, byName, fallback, ofmxMiss, arincMiss, kept}, ofmx, openair)

	assert.Equal(t, Stats{ByID: 1, ByName: 2, Kept: 1, Unmatched: 2}, st)
	assert.Equal(t, ringA, byID.Polygon)
	assert.Equal(t, ringB, byName.Polygon)
	assert.Equal(t, ringC, fallback.Polygon)
	assert.Nil(t, ofmxMiss.Polygon)
	assert.Nil(t, arincMiss.Polygon)
	assert.Equal(t, ringB, kept.Polygon)
}

func TestMerge_NilLookups(t *testing.T) {
	recs := []*aero.Airspace{
		asp(aero.SourceOFMX, "ASE1", "A", ""),
		asp(aero.SourceARINC, "X", "B", "C"),
	}
	st := Merge(recs, nil, nil)
	require.Equal(t, 2, st.Unmatched)
	for _, r := range recs {
		assert.Nil(t, r.Polygon)
	}
}
