// Package aero defines the raw record model shared by every format parser.
//
// A parser turns a byte stream into Records: Airport, Runway, RunwayEnd,
// Navaid, Waypoint and Airspace. Records carry their native identifier and the
// Provenance of the snapshot they came from, and are handed to an Emitter one
// at a time. The Collector is the in-memory Emitter used by the import pipeline.
//
// The package also holds the importer error taxonomy (ParseError,
// ReferenceError, StoreError). Geometry failures are reported with
// geo.GeometryError.
package aero
