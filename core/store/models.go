package store

import (
	"time"

	"aero-importer/core/aero"

	"github.com/google/uuid"
)

// Base holds the identity and provenance columns shared by every table.
// ofmx_id and region are declared per model because their indexes differ.
type Base struct {
	// ID is a UUIDv5 derived from the row's uniqueness key.
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	// Source is the format family the row was imported from.
	Source string `gorm:"size:16;not null;index" json:"source"`
	// Cycle is the AIRAC cycle of the snapshot.
	Cycle string `gorm:"size:16;not null;index" json:"cycle"`
	// ValidFrom and ValidTo bound the snapshot validity.
	ValidFrom *time.Time `gorm:"type:date" json:"valid_from,omitempty"`
	ValidTo   *time.Time `gorm:"type:date" json:"valid_to,omitempty"`
	// CreatedAt is set on first insert and never overwritten by upserts.
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Airport maps the airports table.
type Airport struct {
	Base
	OfmxID           string   `gorm:"column:ofmx_id;not null;uniqueIndex:ux_airports_ofmx_id" json:"ofmx_id"`
	Region           string   `gorm:"size:16;not null;default:''" json:"region"`
	CodeID           *string  `json:"code_id,omitempty"`
	CodeICAO         *string  `gorm:"column:code_icao" json:"code_icao,omitempty"`
	CodeGPS          *string  `gorm:"column:code_gps" json:"code_gps,omitempty"`
	CodeType         *string  `json:"code_type,omitempty"`
	Name             *string  `json:"name,omitempty"`
	City             *string  `json:"city,omitempty"`
	Elevation        *float64 `json:"elevation,omitempty"`
	ElevationUOM     *string  `gorm:"column:elevation_uom" json:"elevation_uom,omitempty"`
	MagVar           *float64 `json:"mag_var,omitempty"`
	MagVarYear       *int     `json:"mag_var_year,omitempty"`
	TransitionAlt    *float64 `json:"transition_alt,omitempty"`
	TransitionAltUOM *string  `gorm:"column:transition_alt_uom" json:"transition_alt_uom,omitempty"`
	Remarks          *string  `json:"remarks,omitempty"`
	Geom             Geometry `gorm:"column:geom" geom:"Point" json:"-"`
}

func (Airport) TableName() string { return "airports" }

// Runway maps the runways table. Geom is null until two ends are known.
type Runway struct {
	Base
	OfmxID        string     `gorm:"column:ofmx_id;not null;uniqueIndex:ux_runways_ofmx_id" json:"ofmx_id"`
	Region        string     `gorm:"size:16;not null;default:''" json:"region"`
	AirportOfmxID *string    `gorm:"column:airport_ofmx_id;index" json:"airport_ofmx_id,omitempty"`
	AirportUID    *uuid.UUID `gorm:"column:airport_uid;type:uuid" json:"airport_uid,omitempty"`
	Designator    *string    `json:"designator,omitempty"`
	Length        *float64   `json:"length,omitempty"`
	Width         *float64   `json:"width,omitempty"`
	UomDimRwy     *string    `gorm:"column:uom_dim_rwy" json:"uom_dim_rwy,omitempty"`
	Surface       *string    `json:"surface,omitempty"`
	Preparation   *string    `json:"preparation,omitempty"`
	PcnNote       *string    `gorm:"column:pcn_note" json:"pcn_note,omitempty"`
	StripLength   *float64   `json:"strip_length,omitempty"`
	StripWidth    *float64   `json:"strip_width,omitempty"`
	UomDimStrip   *string    `gorm:"column:uom_dim_strip" json:"uom_dim_strip,omitempty"`
	Geom          Geometry   `gorm:"column:geom" geom:"LineString" json:"-"`
}

func (Runway) TableName() string { return "runways" }

// RunwayEnd maps the runway_ends table.
type RunwayEnd struct {
	Base
	OfmxID        string     `gorm:"column:ofmx_id;not null;uniqueIndex:ux_runway_ends_ofmx_id" json:"ofmx_id"`
	Region        string     `gorm:"size:16;not null;default:''" json:"region"`
	RunwayOfmxID  *string    `gorm:"column:runway_ofmx_id;index" json:"runway_ofmx_id,omitempty"`
	RunwayUID     *uuid.UUID `gorm:"column:runway_uid;type:uuid" json:"runway_uid,omitempty"`
	AirportOfmxID *string    `gorm:"column:airport_ofmx_id" json:"airport_ofmx_id,omitempty"`
	AirportUID    *uuid.UUID `gorm:"column:airport_uid;type:uuid" json:"airport_uid,omitempty"`
	Designator    *string    `json:"designator,omitempty"`
	TrueBearing   *float64   `json:"true_bearing,omitempty"`
	MagBearing    *float64   `json:"mag_bearing,omitempty"`
	Geom          Geometry   `gorm:"column:geom" geom:"Point" json:"-"`
}

func (RunwayEnd) TableName() string { return "runway_ends" }

// Navaid maps the navaids table.
type Navaid struct {
	Base
	OfmxID              string     `gorm:"column:ofmx_id;not null;uniqueIndex:ux_navaids_ofmx_id" json:"ofmx_id"`
	Region              string     `gorm:"size:16;not null;default:''" json:"region"`
	CodeID              *string    `json:"code_id,omitempty"`
	Name                *string    `json:"name,omitempty"`
	NavaidType          *string    `json:"navaid_type,omitempty"`
	CodeType            *string    `json:"code_type,omitempty"`
	Frequency           *float64   `json:"frequency,omitempty"`
	FrequencyUOM        *string    `gorm:"column:frequency_uom" json:"frequency_uom,omitempty"`
	Channel             *string    `json:"channel,omitempty"`
	GhostFrequency      *float64   `json:"ghost_frequency,omitempty"`
	Elevation           *float64   `json:"elevation,omitempty"`
	ElevationUOM        *string    `gorm:"column:elevation_uom" json:"elevation_uom,omitempty"`
	MagVar              *float64   `json:"mag_var,omitempty"`
	Datum               *string    `json:"datum,omitempty"`
	AssociatedVorOfmxID *string    `gorm:"column:associated_vor_ofmx_id" json:"associated_vor_ofmx_id,omitempty"`
	AssociatedVorUID    *uuid.UUID `gorm:"column:associated_vor_uid;type:uuid" json:"associated_vor_uid,omitempty"`
	Geom                Geometry   `gorm:"column:geom" geom:"Point" json:"-"`
}

func (Navaid) TableName() string { return "navaids" }

// Waypoint maps the waypoints table.
type Waypoint struct {
	Base
	OfmxID    string   `gorm:"column:ofmx_id;not null;uniqueIndex:ux_waypoints_ofmx_id" json:"ofmx_id"`
	Region    string   `gorm:"size:16;not null;default:''" json:"region"`
	CodeID    *string  `json:"code_id,omitempty"`
	Name      *string  `json:"name,omitempty"`
	PointType *string  `json:"point_type,omitempty"`
	Geom      Geometry `gorm:"column:geom" geom:"Point" json:"-"`
}

func (Waypoint) TableName() string { return "waypoints" }

// Airspace maps the airspaces table.
//
// Upstream data reuses native ids across distinct airspaces, so uniqueness is
// the five column composite rather than ofmx_id alone. All five columns are
// NOT NULL with an empty-string default so the key never contains NULL.
// Tightening this index needs an explicit migration.
type Airspace struct {
	Base
	OfmxID        string   `gorm:"column:ofmx_id;not null;default:'';uniqueIndex:ux_airspaces_identity,priority:1" json:"ofmx_id"`
	Region        string   `gorm:"size:16;not null;default:'';uniqueIndex:ux_airspaces_identity,priority:2" json:"region"`
	CodeID        string   `gorm:"not null;default:'';uniqueIndex:ux_airspaces_identity,priority:3" json:"code_id"`
	CodeType      string   `gorm:"not null;default:'';uniqueIndex:ux_airspaces_identity,priority:4" json:"code_type"`
	Name          string   `gorm:"not null;default:'';uniqueIndex:ux_airspaces_identity,priority:5" json:"name"`
	NameAlt       *string  `json:"name_alt,omitempty"`
	AirspaceClass *string  `json:"airspace_class,omitempty"`
	UpperRef      *string  `json:"upper_ref,omitempty"`
	UpperValue    *int     `json:"upper_value,omitempty"`
	UpperUOM      *string  `gorm:"column:upper_uom" json:"upper_uom,omitempty"`
	LowerRef      *string  `json:"lower_ref,omitempty"`
	LowerValue    *int     `json:"lower_value,omitempty"`
	LowerUOM      *string  `gorm:"column:lower_uom" json:"lower_uom,omitempty"`
	Remarks       *string  `json:"remarks,omitempty"`
	Geom          Geometry `gorm:"column:geom" geom:"MultiPolygon" json:"-"`
}

func (Airspace) TableName() string { return "airspaces" }

// Models returns one zero value per kind, in load order.
func Models() []any {
	return []any{&Airport{}, &Runway{}, &RunwayEnd{}, &Navaid{}, &Waypoint{}, &Airspace{}}
}

// ModelFor returns the zero model of a kind.
func ModelFor(kind aero.Kind) any {
	switch kind {
	case aero.KindAirport:
		return &Airport{}
	case aero.KindRunway:
		return &Runway{}
	case aero.KindRunwayEnd:
		return &RunwayEnd{}
	case aero.KindNavaid:
		return &Navaid{}
	case aero.KindWaypoint:
		return &Waypoint{}
	case aero.KindAirspace:
		return &Airspace{}
	default:
		return nil
	}
}

// ConflictColumns returns the uniqueness key of a kind.
func ConflictColumns(kind aero.Kind) []string {
	if kind == aero.KindAirspace {
		return []string{"ofmx_id", "region", "code_id", "code_type", "name"}
	}
	return []string{"ofmx_id"}
}

// EntitySet holds reconciled rows of every kind, ready to be written.
type EntitySet struct {
	Airports   []Airport
	Runways    []Runway
	RunwayEnds []RunwayEnd
	Navaids    []Navaid
	Waypoints  []Waypoint
	Airspaces  []Airspace
}

// Counts returns the number of rows per kind.
func (s *EntitySet) Counts() map[aero.Kind]int {
	return map[aero.Kind]int{
		aero.KindAirport:   len(s.Airports),
		aero.KindRunway:    len(s.Runways),
		aero.KindRunwayEnd: len(s.RunwayEnds),
		aero.KindNavaid:    len(s.Navaids),
		aero.KindWaypoint:  len(s.Waypoints),
		aero.KindAirspace:  len(s.Airspaces),
	}
}
