package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"aero-importer/core/aero"
	"aero-importer/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testNS = uuid.MustParse("6ba7b811-9dad-11d1-80b4-00c04fd430c8")

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), db, ""))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func str(s string) *string { return &s }

func num(f float64) *float64 { return &f }

func base(kind aero.Kind, key, source, cycle string) Base {
	return Base{
		ID:     uuid.NewSHA1(testNS, []byte(string(kind)+":"+key)),
		Source: source,
		Cycle:  cycle,
	}
}

// fixture returns one airport AH0001ID with two runways and their ends.
func fixture(cycle string) *EntitySet {
	apt := Airport{
		Base:   base(aero.KindAirport, "AH0001ID", "ofmx", cycle),
		OfmxID: "AH0001ID",
		Region: "LF",
		CodeID: str("LFXX"),
		Name:   str("TEST FIELD"),
		Geom:   NewGeometry(orb.Point{2.35, 48.85}),
	}
	runways := []Runway{
		{
			Base:          base(aero.KindRunway, "RWY1", "ofmx", cycle),
			OfmxID:        "RWY1",
			Region:        "LF",
			AirportOfmxID: str("AH0001ID"),
			AirportUID:    &apt.ID,
			Designator:    str("09/27"),
			Length:        num(1800),
			Geom:          NewGeometry(orb.LineString{{2.34, 48.85}, {2.36, 48.85}}),
		},
		{
			Base:          base(aero.KindRunway, "RWY2", "ofmx", cycle),
			OfmxID:        "RWY2",
			Region:        "LF",
			AirportOfmxID: str("AH0001ID"),
			AirportUID:    &apt.ID,
			Designator:    str("18/36"),
		},
	}
	ends := []RunwayEnd{
		{
			Base:         base(aero.KindRunwayEnd, "RDN1", "ofmx", cycle),
			OfmxID:       "RDN1",
			RunwayOfmxID: str("RWY1"),
			Designator:   str("09"),
			TrueBearing:  num(90),
			Geom:         NewGeometry(orb.Point{2.34, 48.85}),
		},
	}
	return &EntitySet{Airports: []Airport{apt}, Runways: runways, RunwayEnds: ends}
}

func ring() orb.Ring {
	return orb.Ring{{7, 46}, {8, 46}, {8, 47}, {7, 46}}
}

func airspace(key, region, codeID, codeType, name, source, cycle string) Airspace {
	return Airspace{
		Base:     base(aero.KindAirspace, key+"|"+region+"|"+codeID+"|"+codeType+"|"+name, source, cycle),
		OfmxID:   key,
		Region:   region,
		CodeID:   codeID,
		CodeType: codeType,
		Name:     name,
		Geom:     NewGeometry(orb.MultiPolygon{{ring()}}),
	}
}

func TestLoad_Idempotent(t *testing.T) {
	db := setupSQLite(t)
	loader := NewLoader(db, Config{BatchSize: 100}, zap.NewNop())
	ctx := context.Background()

	written, err := loader.Load(ctx, fixture("2601"))
	require.NoError(t, err)
	assert.Equal(t, 1, written[aero.KindAirport])
	assert.Equal(t, 2, written[aero.KindRunway])

	var first Airport
	require.NoError(t, db.First(&first, "ofmx_id = ?", "AH0001ID").Error)

	_, err = loader.Load(ctx, fixture("2601"))
	require.NoError(t, err)

	counts, err := Count(ctx, db, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[aero.KindAirport])
	assert.Equal(t, int64(2), counts[aero.KindRunway])
	assert.Equal(t, int64(1), counts[aero.KindRunwayEnd])

	var second Airport
	require.NoError(t, db.First(&second, "ofmx_id = ?", "AH0001ID").Error)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, orb.Point{2.35, 48.85}, second.Geom.Geometry)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	var rwy Runway
	require.NoError(t, db.First(&rwy, "ofmx_id = ?", "RWY1").Error)
	assert.Equal(t, orb.LineString{{2.34, 48.85}, {2.36, 48.85}}, rwy.Geom.Geometry)
	require.NotNil(t, rwy.AirportUID)
	assert.Equal(t, first.ID, *rwy.AirportUID)

	var bare Runway
	require.NoError(t, db.First(&bare, "ofmx_id = ?", "RWY2").Error)
	assert.False(t, bare.Geom.Valid())
}

func TestLoad_ReimportOverwrites(t *testing.T) {
	db := setupSQLite(t)
	loader := NewLoader(db, Config{}, zap.NewNop())
	ctx := context.Background()

	_, err := loader.Load(ctx, fixture("2601"))
	require.NoError(t, err)

	next := fixture("2602")
	next.Airports[0].Name = str("RENAMED FIELD")
	next.Airports[0].Geom = NewGeometry(orb.Point{2.4, 48.9})
	_, err = loader.Load(ctx, next)
	require.NoError(t, err)

	var apts []Airport
	require.NoError(t, db.Find(&apts).Error)
	require.Len(t, apts, 1)
	assert.Equal(t, "RENAMED FIELD", *apts[0].Name)
	assert.Equal(t, "2602", apts[0].Cycle)
	assert.Equal(t, orb.Point{2.4, 48.9}, apts[0].Geom.Geometry)

	var n int64
	require.NoError(t, db.Model(&Runway{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestLoad_AirspaceCompositeKey(t *testing.T) {
	db := setupSQLite(t)
	loader := NewLoader(db, Config{}, zap.NewNop())
	ctx := context.Background()

	set := &EntitySet{Airspaces: []Airspace{
		airspace("ASE1", "LS", "GVA", "CTR", "GENEVA CTR", "ofmx", "2601"),
		airspace("ASE1", "LF", "GVA", "CTR", "GENEVA CTR", "ofmx", "2601"),
		airspace("ASE1", "LS", "GVA2", "CTR", "GENEVA CTR", "ofmx", "2601"),
		airspace("ASE1", "LS", "GVA", "TMA", "GENEVA CTR", "ofmx", "2601"),
		airspace("ASE1", "LS", "GVA", "CTR", "GENEVA CTR 2", "ofmx", "2601"),
	}}
	_, err := loader.Load(ctx, set)
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&Airspace{}).Count(&n).Error)
	assert.Equal(t, int64(5), n)

	// identical in all five key columns: collapses onto the existing row
	dup := airspace("ASE1", "LS", "GVA", "CTR", "GENEVA CTR", "ofmx", "2601")
	dup.Remarks = str("updated")
	_, err = loader.Load(ctx, &EntitySet{Airspaces: []Airspace{dup}})
	require.NoError(t, err)

	require.NoError(t, db.Model(&Airspace{}).Count(&n).Error)
	assert.Equal(t, int64(5), n)

	var stored Airspace
	require.NoError(t, db.First(&stored, "region = ? AND code_id = ? AND code_type = ? AND name = ?", "LS", "GVA", "CTR", "GENEVA CTR").Error)
	require.NotNil(t, stored.Remarks)
	assert.Equal(t, "updated", *stored.Remarks)
	assert.Equal(t, orb.MultiPolygon{{ring()}}, stored.Geom.Geometry)
}

func TestCount_ProvenanceFilter(t *testing.T) {
	db := setupSQLite(t)
	loader := NewLoader(db, Config{}, zap.NewNop())
	ctx := context.Background()

	set := &EntitySet{
		Airspaces: []Airspace{
			airspace("ARINC:UC:LS:LSGG:A", "LS", "LSGG", "A", "GENEVA", "arinc", "2601"),
			airspace("ARINC:UF:LSAS", "", "LSAS", "F", "SWITZERLAND", "arinc", "2601"),
			airspace("ASE1", "LS", "GVA", "CTR", "GENEVA CTR", "ofmx", "2601"),
			airspace("ARINC:UR:LS:R:LSR1", "LS", "LSR1", "R", "RESTRICTED", "arinc", "2513"),
		},
		Waypoints: []Waypoint{
			{Base: base(aero.KindWaypoint, "WPT1", "ofmx", "2601"), OfmxID: "WPT1", Geom: NewGeometry(orb.Point{6, 46})},
		},
	}
	_, err := loader.Load(ctx, set)
	require.NoError(t, err)

	counts, err := Count(ctx, db, Filter{Source: aero.SourceARINC, Cycle: "2601"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[aero.KindAirspace])
	assert.Equal(t, int64(0), counts[aero.KindWaypoint])

	counts, err = Count(ctx, db, Filter{Source: aero.SourceOFMX})
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[aero.KindAirspace])
	assert.Equal(t, int64(1), counts[aero.KindWaypoint])
}

func TestLoad_RollsBackFailedKind(t *testing.T) {
	db, mock := setupMockDB(t)
	loader := NewLoader(db, Config{BatchSize: 10}, zap.NewNop())

	set := &EntitySet{
		Airports: []Airport{{Base: base(aero.KindAirport, "A1", "arinc", "2601"), OfmxID: "A1"}},
		Waypoints: []Waypoint{
			{Base: base(aero.KindWaypoint, "W1", "arinc", "2601"), OfmxID: "W1", Geom: NewGeometry(orb.Point{6, 46})},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "airports"`)).WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "waypoints"`) + `.*ON CONFLICT \("ofmx_id"\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	written, err := loader.Load(context.Background(), set)
	require.Error(t, err)

	var serr *aero.StoreError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, aero.KindAirport, serr.Kind)
	assert.Contains(t, err.Error(), "deadlock detected")

	assert.NotContains(t, written, aero.KindAirport)
	assert.Equal(t, 1, written[aero.KindWaypoint])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_CompositeConflictTarget(t *testing.T) {
	db, mock := setupMockDB(t)
	loader := NewLoader(db, Config{}, nil)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT ("ofmx_id","region","code_id","code_type","name") DO UPDATE SET`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	set := &EntitySet{Airspaces: []Airspace{airspace("ASE1", "LS", "GVA", "CTR", "GENEVA CTR", "ofmx", "2601")}}
	_, err := loader.Load(context.Background(), set)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_Cancelled(t *testing.T) {
	db := setupSQLite(t)
	loader := NewLoader(db, Config{}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	written, err := loader.Load(ctx, fixture("2601"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, written)
}

func TestCheckSchema(t *testing.T) {
	t.Run("Migrated", func(t *testing.T) {
		db := setupSQLite(t)
		report, err := CheckSchema(db)
		require.NoError(t, err)
		assert.True(t, report.Matched, "%+v", report)
		assert.Len(t, report.Tables, 6)
		assert.Equal(t, "ok", report.Tables["airspaces"].Status)
	})

	t.Run("MissingTable", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)
		require.NoError(t, db.AutoMigrate(&Airport{}))

		report, err := CheckSchema(db)
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Equal(t, "ok", report.Tables["airports"].Status)
		assert.Equal(t, "missing", report.Tables["runways"].Status)
	})

	t.Run("MissingColumn", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
		require.NoError(t, err)
		require.NoError(t, Migrate(context.Background(), db, ""))
		require.NoError(t, db.Exec("ALTER TABLE waypoints DROP COLUMN point_type").Error)

		report, err := CheckSchema(db)
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Equal(t, []string{"point_type"}, report.Tables["waypoints"].MissingColumns)
	})
}

func TestGeometry(t *testing.T) {
	var g Geometry
	v, err := g.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	g = NewGeometry(orb.Point{1, 2})
	v, err = g.Value()
	require.NoError(t, err)
	assert.Equal(t, "SRID=4326;POINT(1 2)", v)

	var back Geometry
	require.NoError(t, back.Scan(v))
	assert.Equal(t, orb.Point{1, 2}, back.Geometry)
	assert.Error(t, back.Scan(3.5))
}

func TestEntitySetCounts(t *testing.T) {
	set := fixture("2601")
	set.Airspaces = []Airspace{airspace("A", "", "", "", "", "ofmx", "2601")}
	counts := set.Counts()
	assert.Equal(t, 1, counts[aero.KindAirport])
	assert.Equal(t, 2, counts[aero.KindRunway])
	assert.Equal(t, 0, counts[aero.KindNavaid])
	assert.Equal(t, 1, counts[aero.KindAirspace])
}

func TestEntitySetCountMatching(t *testing.T) {
	set := fixture("2601")
	set.Airspaces = []Airspace{
		airspace("A", "", "", "", "", "ofmx", "2601"),
		airspace("B", "", "", "", "", "arinc", "2601"),
		airspace("C", "", "", "", "", "arinc", "2513"),
	}

	counts := set.CountMatching(Filter{Source: aero.SourceARINC, Cycle: "2601"})
	assert.Equal(t, int64(0), counts[aero.KindAirport])
	assert.Equal(t, int64(1), counts[aero.KindAirspace])
	assert.Len(t, counts, len(aero.Kinds))

	all := set.CountMatching(Filter{})
	assert.Equal(t, int64(2), all[aero.KindRunway])
	assert.Equal(t, int64(3), all[aero.KindAirspace])
}
