// Package validate compares expected entity counts with the store.
//
// Expected counts are either supplied by the caller or re-derived by a dry
// run of the import pipeline over the configured snapshots. Actual counts
// come from the store under the same provenance filter, so rows of another
// source or cycle never affect a report. Validation only reads.
//
// # HTTP Endpoints
//
//   - GET /validate?source=&cycle= : Re-derives expected counts and compares.
//   - POST /validate?source=&cycle= : Compares against a JSON map of kind to count.
//   - GET /validate/schema : Compares the model columns with the live tables.
//
// Requests are throttled; excess requests get 429.
package validate
