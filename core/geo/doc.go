// Package geo normalizes source coordinate encodings into canonical geometry.
//
// All geometry produced here is expressed as (longitude, latitude) pairs in
// WGS84 (EPSG:4326) using paulmach/orb types. The package is pure: no I/O and no
// shared state.
//
// # Coordinates
//
//   - ARINC 424: "N47265700" / "E008322200" (degrees, minutes, seconds, hundredths)
//   - OFMX: "472657.00N" / "0083222.00E" or decimal "47.44916667N"
//   - OpenAIR: "47:26:57 N 008:32:22 E" with optional decimal seconds
//
// Every parser has a matching formatter so values can be written back in their
// native encoding.
//
// # Shapes
//
// Ring and Line validate vertex sequences. Circle, Arc and ArcBetween expand
// OpenAIR curved boundaries into discrete vertices using ArcStepDegrees.
package geo
