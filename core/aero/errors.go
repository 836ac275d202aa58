package aero

import (
	"errors"
	"fmt"

	"aero-importer/core/geo"
)

// ParseError reports input that could not be parsed. It aborts the parser call.
type ParseError struct {
	File    string
	Line    int
	Section string
	Msg     string
	Err     error
}

func (e *ParseError) Error() string {
	msg := "parse error"
	if e.File != "" {
		msg += " in " + e.File
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" at line %d", e.Line)
	}
	if e.Section != "" {
		msg += fmt.Sprintf(" (section %q)", e.Section)
	}
	msg += ": " + e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReferenceError reports a reference that resolved neither in the current run
// nor in the store. The referencing row is still written.
type ReferenceError struct {
	Kind    Kind
	ID      string
	RefKind Kind
	Ref     string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %s: unresolved %s reference %q", e.Kind, e.ID, e.RefKind, e.Ref)
}

// StoreError wraps a failed write of one kind.
type StoreError struct {
	Kind Kind
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Kind.Table(), e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Error classes used in run summaries.
const (
	ClassParse     = "parse"
	ClassGeometry  = "geometry"
	ClassReference = "reference"
	ClassStore     = "store"
	ClassOther     = "other"
)

// ErrorClass maps an error onto the importer taxonomy.
func ErrorClass(err error) string {
	var (
		perr *ParseError
		gerr *geo.GeometryError
		rerr *ReferenceError
		serr *StoreError
	)
	switch {
	case errors.As(err, &gerr):
		return ClassGeometry
	case errors.As(err, &perr):
		return ClassParse
	case errors.As(err, &rerr):
		return ClassReference
	case errors.As(err, &serr):
		return ClassStore
	default:
		return ClassOther
	}
}
