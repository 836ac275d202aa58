package store

import (
	"database/sql/driver"
	"fmt"

	"aero-importer/core/database"
	"aero-importer/core/geo"

	"github.com/paulmach/orb"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Geometry is a nullable geometry column in SRID 4326.
//
// Values are written as EWKT and read back from hex EWKB (PostGIS) or EWKT
// (SQLite). The PostGIS subtype comes from the field's geom tag:
//
//	Geom Geometry `gorm:"column:geom" geom:"MultiPolygon"`
type Geometry struct {
	orb.Geometry
}

// NewGeometry wraps g. A nil g is stored as NULL.
func NewGeometry(g orb.Geometry) Geometry {
	return Geometry{Geometry: g}
}

// Valid reports whether the column holds a geometry.
func (g Geometry) Valid() bool {
	return g.Geometry != nil
}

// Value implements driver.Valuer.
func (g Geometry) Value() (driver.Value, error) {
	if g.Geometry == nil {
		return nil, nil
	}
	return geo.EWKT(g.Geometry), nil
}

// Scan implements sql.Scanner.
func (g *Geometry) Scan(src any) error {
	decoded, err := geo.Decode(src)
	if err != nil {
		return fmt.Errorf("scan geometry: %w", err)
	}
	g.Geometry = decoded
	return nil
}

// GormDataType implements schema.GormDataTypeInterface.
func (Geometry) GormDataType() string {
	return "geometry"
}

// GormDBDataType implements migrator.GormDataTypeInterface.
func (Geometry) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() != database.DriverPostgres {
		return "text"
	}
	subtype := field.Tag.Get("geom")
	if subtype == "" {
		subtype = "Geometry"
	}
	return fmt.Sprintf("geometry(%s,%d)", subtype, geo.SRID)
}
