// Package importer runs the import pipeline.
//
// A run opens the configured snapshots, parses OFMX, ARINC-424 and OpenAIR
// concurrently, attaches shapes to airspaces, reconciles the records into
// store rows and, unless it is a dry run, upserts them one kind at a time.
//
// # Pipeline
//
//	open (file, zip member, bucket object)
//	  -> parse (ofmx, ofmx shapes, arinc, openair)
//	  -> shapes.Merge
//	  -> reconcile.Reconcile
//	  -> store.Migrate (optional) -> store.Loader.Load
//
// Plan stops before the store and never writes. Import is serialised: a
// process never runs two writers at once.
//
// # HTTP Endpoints
//
//   - POST /import : Runs an import (supports ?dry_run=true and a JSON Request body).
//   - GET /import/last : Returns the summary of the last run.
package importer
