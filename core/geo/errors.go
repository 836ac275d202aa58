package geo

import "fmt"

// GeometryError reports a malformed coordinate or a degenerate shape.
type GeometryError struct {
	// Reason describes what is wrong with the input.
	Reason string
	// Input is the offending raw value, if any.
	Input string
}

func (e *GeometryError) Error() string {
	if e.Input == "" {
		return "geometry: " + e.Reason
	}
	return fmt.Sprintf("geometry: %s (%q)", e.Reason, e.Input)
}

func newError(reason, input string) *GeometryError {
	return &GeometryError{Reason: reason, Input: input}
}
