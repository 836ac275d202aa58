// Package ofmx reads OFMX snapshots and their shape-extension documents.
//
// The parser streams the document with encoding/xml, decoding one feature
// element at a time, and emits raw records through an aero.Emitter:
//
//	Ahp -> Airport    Rwy -> Runway    Rdn -> RunwayEnd
//	Ase -> Airspace   Dpn -> Waypoint  Vor, Ndb, Dme, Tcn, Mkr -> Navaid
//
// Other elements are skipped with their subtree. The native id of a record
// is the mid attribute of its Uid; when mid is missing a composite such as
// AHP:{region}:{codeId} is built from the Uid children.
//
// Airspace geometry is not part of the snapshot. ParseShapes reads the
// companion shape document into a ShapeIndex keyed by the same native ids.
package ofmx
