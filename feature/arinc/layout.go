package arinc

import (
	"aero-importer/core/aero"
	"aero-importer/core/utils"
)

// RecordLength is the fixed width of an ARINC-424 record.
const RecordLength = 132

// layout describes one section of the dispatch table.
type layout struct {
	kind    aero.Kind
	minLen  int
	primary func(line string) bool
	parse   func(s *state, line string) error
}

func zeroAt(i int) func(string) bool {
	return func(line string) bool { return utils.Char(line, i) == '0' }
}

var layouts = map[string]layout{
	"PA": {kind: aero.KindAirport, minLen: RecordLength, primary: zeroAt(21), parse: (*state).airport},
	"PG": {kind: aero.KindRunwayEnd, minLen: RecordLength, primary: zeroAt(21), parse: (*state).runwayEnd},
	"UC": {kind: aero.KindAirspace, minLen: RecordLength, primary: zeroAt(24), parse: (*state).controlled},
	"UR": {kind: aero.KindAirspace, minLen: RecordLength, primary: zeroAt(24), parse: (*state).restrictive},
	"UF": {kind: aero.KindAirspace, minLen: RecordLength, primary: zeroAt(19), parse: (*state).fir},
	"D ": {kind: aero.KindNavaid, minLen: RecordLength, primary: zeroAt(21), parse: (*state).vhf},
	"DB": {kind: aero.KindNavaid, minLen: RecordLength, primary: zeroAt(21), parse: (*state).ndb},
	"EA": {kind: aero.KindWaypoint, minLen: RecordLength, primary: zeroAt(21), parse: (*state).waypoint},
	"PC": {kind: aero.KindWaypoint, minLen: RecordLength, primary: zeroAt(21), parse: (*state).waypoint},
}

// recordTypes are the values of column 1: standard and tailored records.
var recordTypes = map[byte]bool{'S': true, 'T': true}
