// Package shapes attaches polygons from companion shape sources to airspace
// records that carry metadata only.
//
// OFMX airspaces are matched by native id against the OFMX shape extension.
// ARINC airspaces are matched by name and class against OpenAIR shapes. The
// two join keys are never mixed.
package shapes

import (
	"aero-importer/core/aero"

	"github.com/paulmach/orb"
)

// Lookup resolves a polygon by native airspace id.
type Lookup interface {
	ByNativeID(id string) (orb.Ring, bool)
}

// NameClassLookup resolves a polygon by airspace name and class.
// Implementations normalise both values.
type NameClassLookup interface {
	ByNameClass(name, class string) (orb.Ring, bool)
}

// Stats counts the outcome of a merge.
type Stats struct {
	// ByID is the number of airspaces matched by native id.
	ByID int `json:"by_id"`
	// ByName is the number of airspaces matched by name and class.
	ByName int `json:"by_name"`
	// Kept is the number of airspaces that already had a polygon.
	Kept int `json:"kept"`
	// Unmatched is the number of airspaces left without geometry.
	Unmatched int `json:"unmatched"`
}

// Merge sets Polygon on every airspace that has none and a matching shape.
// Either lookup may be nil.
func Merge(records []*aero.Airspace, ofmx Lookup, openair NameClassLookup) Stats {
	var st Stats
	for _, a := range records {
		if a.Polygon != nil {
			st.Kept++
			continue
		}

		var (
			ring orb.Ring
			ok   bool
		)
		switch a.Prov.Source {
		case aero.SourceOFMX:
			if ofmx != nil {
				ring, ok = ofmx.ByNativeID(a.NativeID)
				if ok {
					st.ByID++
				}
			}
		case aero.SourceARINC:
			if openair != nil {
				ring, ok = openair.ByNameClass(a.Name, a.Class)
				if !ok && a.Class != "" {
					ring, ok = openair.ByNameClass(a.Name, "")
				}
				if ok {
					st.ByName++
				}
			}
		}

		if !ok {
			st.Unmatched++
			continue
		}
		a.Polygon = ring
	}
	return st
}
