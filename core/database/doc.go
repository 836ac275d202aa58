// Package database handles database connections and schema inspection.
//
// It wraps GORM with the two supported dialects: PostgreSQL (PostGIS) through
// pgx, and SQLite for local runs and tests.
//
// # Connect
//
// Connect opens the configured driver, applies pool settings and pings the
// server. For PostgreSQL the configured schema is validated and placed first on
// the session search_path through pgx runtime parameters, so unqualified table
// names resolve to the aeronautical schema.
//
// # Schema Inspection
//
// GetTableColumns lists the live columns of a table. The store uses it to
// compare the live schema with its models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "airports")
package database
