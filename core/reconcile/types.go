package reconcile

import (
	"aero-importer/core/aero"
	"aero-importer/core/store"
)

// MaxWarnings caps the warnings kept in a Summary. All warnings are logged.
const MaxWarnings = 50

// Summary describes the outcome of a reconciliation.
type Summary struct {
	// Entities is the number of rows produced per kind.
	Entities map[aero.Kind]int `json:"entities"`

	// Duplicates is the number of records collapsed onto a later record with
	// the same uniqueness key.
	Duplicates int `json:"duplicates"`

	// Unresolved is the number of references that matched nothing.
	Unresolved int `json:"unresolved"`

	// Rejected is the number of geometries dropped because they failed validation.
	// The rows themselves are kept without geometry.
	Rejected int `json:"rejected"`

	// Warnings holds the first MaxWarnings warning messages.
	Warnings []string `json:"warnings,omitempty"`
}

// Result is the reconciled entity set plus its summary.
type Result struct {
	store.EntitySet
	Summary Summary
}
