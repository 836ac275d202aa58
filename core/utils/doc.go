// Package utils provides small conversion helpers shared by the parsers and the
// store: fixed-width field extraction, optional value parsing and driver value
// coercion.
package utils
