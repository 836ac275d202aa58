// Package arinc reads ARINC-424 fixed-field records as published in
// OpenFlightMaps ARINC snapshots.
//
// Every record is 132 columns. The section code selects a layout from an
// explicit dispatch table; field offsets are zero based:
//
//	PA      airport            PG      runway end
//	UC      controlled airspace  UR   restrictive airspace
//	UF      FIR/UIR            D , DB  VHF navaid, NDB
//	EA, PC  waypoint
//
// Runways have no record of their own. Runway ends are paired by their
// reciprocal designators and the runways are emitted at the end of the
// stream, together with airports that are only known from their runway ends.
// The AIRAC cycle is read from columns 129-132 of the first record.
package arinc
