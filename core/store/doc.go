// Package store is the PostGIS persistence layer of the importer.
//
// It defines the gorm models of the six entity tables, the Geometry column
// type, and the Loader that writes reconciled rows with one upsert
// transaction per kind. Re-importing the same snapshot rewrites every non-key
// column in place; rows are never deleted.
//
// Migrate prepares a database, Count and CheckSchema are the read-only
// queries used by the validator.
package store
