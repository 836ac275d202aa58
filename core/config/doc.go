// Package config provides configuration management for the importer.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Every key has a default taken from the `default`
// struct tag of its section.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port, API key and body limit
//   - Database: PostgreSQL/PostGIS (or sqlite) connection and schema
//   - Storage: S3/MinIO credentials and snapshot bucket
//   - Log: Logging level and format
//   - Store: Loader batch size and automatic migration
//   - Source: Default snapshot locations and AIRAC cycle
//   - Reconcile: Row id namespace and reference cache TTL
//   - Validate: Validation rate limit
//
// Nested keys map to environment variables with dots replaced by
// underscores, e.g. DATABASE_SCHEMA sets database.schema.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Schema)
package config
