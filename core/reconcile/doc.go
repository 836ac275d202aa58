// Package reconcile turns raw parser records into canonical store rows.
//
// Reconciliation assigns each record a canonical identity, resolves its
// references, stamps provenance and geometry, and collapses duplicates.
//
// # Identity
//
// The canonical id of a record is its trimmed native id. Row primary keys are
// UUIDv5 values derived from the kind and the uniqueness key, so re-importing
// a snapshot always targets the same rows. Airspaces use the composite key
// ofmx_id|region|code_id|code_type|name.
//
// # References
//
// Runway to airport, runway end to runway and airport, and navaid to its
// associated VOR are resolved first against the records of the current run,
// then against the rows already stored. The stored ids are held in a
// ReferenceCache:
//   - the three indices load concurrently
//   - concurrent callers share one load through singleflight
//   - a loaded index is reused until its TTL expires
//
// An unresolved reference keeps its native id, leaves the uid null and is
// reported as an aero.ReferenceError warning.
//
// # Duplicates
//
// Records sharing a uniqueness key collapse to the last one in stream order.
// Output order is the order in which keys were first seen.
//
// # Usage
//
//	cache := reconcile.NewReferenceCache(db, time.Duration(cfg.CacheTTLSeconds)*time.Second)
//	r := reconcile.New(cfg, cache, logger)
//	res, err := r.Reconcile(ctx, records)
package reconcile
