package aero

import "fmt"

// Kind identifies an entity kind.
type Kind string

const (
	KindAirport   Kind = "airport"
	KindRunway    Kind = "runway"
	KindRunwayEnd Kind = "runway_end"
	KindNavaid    Kind = "navaid"
	KindWaypoint  Kind = "waypoint"
	KindAirspace  Kind = "airspace"
)

// Kinds lists every kind in load order. Referenced kinds come before the
// kinds that reference them.
var Kinds = []Kind{KindAirport, KindRunway, KindRunwayEnd, KindNavaid, KindWaypoint, KindAirspace}

var tables = map[Kind]string{
	KindAirport:   "airports",
	KindRunway:    "runways",
	KindRunwayEnd: "runway_ends",
	KindNavaid:    "navaids",
	KindWaypoint:  "waypoints",
	KindAirspace:  "airspaces",
}

// Table returns the store table holding rows of this kind.
func (k Kind) Table() string {
	return tables[k]
}

// ParseKind accepts a kind name or its table name.
func ParseKind(s string) (Kind, error) {
	for k, table := range tables {
		if s == string(k) || s == table {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

// Source identifies the format family a row was imported from.
type Source string

const (
	SourceOFMX  Source = "ofmx"
	SourceARINC Source = "arinc"
)

// IsValid reports whether s is a known source.
func (s Source) IsValid() bool {
	switch s {
	case SourceOFMX, SourceARINC:
		return true
	default:
		return false
	}
}

// ParseSource validates a source name. The empty string is rejected.
func ParseSource(s string) (Source, error) {
	src := Source(s)
	if !src.IsValid() {
		return "", fmt.Errorf("unknown source %q (want %s or %s)", s, SourceOFMX, SourceARINC)
	}
	return src, nil
}
