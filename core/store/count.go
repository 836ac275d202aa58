package store

import (
	"context"
	"fmt"

	"aero-importer/core/aero"

	"gorm.io/gorm"
)

// Filter restricts queries to rows of one provenance. Empty fields match everything.
type Filter struct {
	Source aero.Source `json:"source,omitempty" query:"source"`
	Cycle  string      `json:"cycle,omitempty" query:"cycle"`
}

// Scope applies the filter to a query.
func (f Filter) Scope(db *gorm.DB) *gorm.DB {
	if f.Source != "" {
		db = db.Where("source = ?", string(f.Source))
	}
	if f.Cycle != "" {
		db = db.Where("cycle = ?", f.Cycle)
	}
	return db
}

// Count returns the number of stored rows per kind matching filter.
// It never writes.
func Count(ctx context.Context, db *gorm.DB, filter Filter) (map[aero.Kind]int64, error) {
	counts := make(map[aero.Kind]int64, len(aero.Kinds))
	for _, kind := range aero.Kinds {
		var n int64
		err := db.WithContext(ctx).Model(ModelFor(kind)).Scopes(filter.Scope).Count(&n).Error
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", kind.Table(), err)
		}
		counts[kind] = n
	}
	return counts, nil
}

// Match reports whether a row with base b passes the filter.
func (f Filter) Match(b *Base) bool {
	return (f.Source == "" || string(f.Source) == b.Source) && (f.Cycle == "" || f.Cycle == b.Cycle)
}

// CountMatching counts the rows of s passing filter, per kind.
func (s *EntitySet) CountMatching(filter Filter) map[aero.Kind]int64 {
	counts := make(map[aero.Kind]int64, len(aero.Kinds))
	add := func(kind aero.Kind, b *Base) {
		if filter.Match(b) {
			counts[kind]++
		}
	}
	for i := range s.Airports {
		add(aero.KindAirport, &s.Airports[i].Base)
	}
	for i := range s.Runways {
		add(aero.KindRunway, &s.Runways[i].Base)
	}
	for i := range s.RunwayEnds {
		add(aero.KindRunwayEnd, &s.RunwayEnds[i].Base)
	}
	for i := range s.Navaids {
		add(aero.KindNavaid, &s.Navaids[i].Base)
	}
	for i := range s.Waypoints {
		add(aero.KindWaypoint, &s.Waypoints[i].Base)
	}
	for i := range s.Airspaces {
		add(aero.KindAirspace, &s.Airspaces[i].Base)
	}
	for _, kind := range aero.Kinds {
		if _, ok := counts[kind]; !ok {
			counts[kind] = 0
		}
	}
	return counts
}
