package aero

import "github.com/paulmach/orb"

// Record is a raw entity produced by a parser. The set of implementations is
// closed: Airport, Runway, RunwayEnd, Navaid, Waypoint and Airspace.
type Record interface {
	Kind() Kind
	Base() *Meta
	isRecord()
}

// Meta is embedded in every record.
type Meta struct {
	// NativeID is the identifier assigned by the source format.
	NativeID string

	// Region is the ICAO region or area code, empty when the source has none.
	Region string

	// Prov is the snapshot the record was read from.
	Prov Provenance

	// Seq is the position of the record in its stream, assigned on Emit.
	Seq int

	// Line is the source line the record started on, when known.
	Line int
}

// Base returns the shared metadata of a record.
func (m *Meta) Base() *Meta { return m }

func (*Meta) isRecord() {}

// Limit is a vertical limit as published: a reference (FL, GND, MSL...), an
// optional value and its unit.
type Limit struct {
	Ref   string
	Value *int
	UOM   string
}

// Airport is an aerodrome or heliport.
type Airport struct {
	Meta
	CodeID           string
	CodeICAO         string
	CodeGPS          string
	CodeType         string
	Name             string
	City             string
	Elevation        *float64
	ElevationUOM     string
	MagVar           *float64
	MagVarYear       *int
	TransitionAlt    *float64
	TransitionAltUOM string
	Remarks          string
	Point            orb.Point
}

func (*Airport) Kind() Kind { return KindAirport }

// Runway is a physical runway. Its geometry is derived from its ends.
type Runway struct {
	Meta
	AirportRef  string
	Designator  string
	Length      *float64
	Width       *float64
	UOMDimRwy   string
	Surface     string
	Preparation string
	PCNNote     string
	StripLength *float64
	StripWidth  *float64
	UOMDimStrip string
}

func (*Runway) Kind() Kind { return KindRunway }

// RunwayEnd is one threshold of a runway.
type RunwayEnd struct {
	Meta
	RunwayRef   string
	AirportRef  string
	Designator  string
	TrueBearing *float64
	MagBearing  *float64
	Point       orb.Point
}

func (*RunwayEnd) Kind() Kind { return KindRunwayEnd }

// Navaid is a radio navigation aid: VOR, DME, TACAN, NDB or marker.
type Navaid struct {
	Meta
	CodeID         string
	Name           string
	NavaidType     string
	CodeType       string
	Frequency      *float64
	FrequencyUOM   string
	Channel        string
	GhostFrequency *float64
	Elevation      *float64
	ElevationUOM   string
	MagVar         *float64
	Datum          string
	AssociatedVOR  string
	Point          orb.Point
}

func (*Navaid) Kind() Kind { return KindNavaid }

// Waypoint is a designated point.
type Waypoint struct {
	Meta
	CodeID    string
	Name      string
	PointType string
	Point     orb.Point
}

func (*Waypoint) Kind() Kind { return KindWaypoint }

// Airspace is an airspace volume. Polygon stays nil until a shape is merged.
type Airspace struct {
	Meta
	CodeID   string
	CodeType string
	Name     string
	NameAlt  string
	Class    string
	Upper    Limit
	Lower    Limit
	Remarks  string
	Polygon  orb.Ring
}

func (*Airspace) Kind() Kind { return KindAirspace }
