package store

import (
	"context"
	"fmt"

	"aero-importer/core/aero"
	"aero-importer/core/database"

	"gorm.io/gorm"
)

// Migrate creates or updates the six tables.
//
// On PostgreSQL it first ensures the schema and the postgis extension exist,
// and afterwards adds a GiST index on every geom column. The connection is
// expected to have schema first on its search_path (see database.Connect).
func Migrate(ctx context.Context, db *gorm.DB, schema string) error {
	db = db.WithContext(ctx)
	postgres := db.Dialector.Name() == database.DriverPostgres

	if postgres {
		if err := database.ValidateSchemaName(schema); err != nil {
			return err
		}
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("create schema %s: %w", schema, err)
		}
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS postgis WITH SCHEMA public").Error; err != nil {
			return fmt.Errorf("create postgis extension: %w", err)
		}
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if postgres {
		for _, kind := range aero.Kinds {
			table := kind.Table()
			stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS ix_%s_geom ON %s.%s USING GIST (geom)", table, schema, table)
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("create gist index on %s: %w", table, err)
			}
		}
	}
	return nil
}
