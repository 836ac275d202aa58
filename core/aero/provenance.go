package aero

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// AIRAC cycles are 28 days long. Cycle 2001 became effective on 2020-01-02.
const cycleLength = 28 * 24 * time.Hour

var cycleEpoch = time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC)

// Provenance describes the snapshot a record was parsed from.
// It is passed explicitly to every parser call.
type Provenance struct {
	// Source is the format family, ofmx or arinc.
	Source Source `json:"source"`

	// Cycle is the AIRAC cycle label, e.g. "2601".
	Cycle string `json:"cycle"`

	// File names the stream being parsed. Only used in error messages.
	File string `json:"file,omitempty"`

	// ValidFrom and ValidTo override the window derived from Cycle.
	ValidFrom *time.Time `json:"valid_from,omitempty"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`
}

// Window returns the validity window of the snapshot. Explicit bounds win;
// otherwise the window of the AIRAC cycle is used. Both are nil when neither
// is known.
func (p Provenance) Window() (from, to *time.Time) {
	from, to = p.ValidFrom, p.ValidTo
	if from != nil && to != nil {
		return from, to
	}
	start, end, err := CycleWindow(p.Cycle)
	if err != nil {
		return from, to
	}
	if from == nil {
		from = &start
	}
	if to == nil {
		to = &end
	}
	return from, to
}

// CycleWindow converts an AIRAC label "YYNN" into [start, start+28d).
// Cycle 01 of a year is the first cycle boundary falling on or after January 1st.
func CycleWindow(cycle string) (start, end time.Time, err error) {
	if len(cycle) != 4 {
		return start, end, fmt.Errorf("invalid AIRAC cycle %q", cycle)
	}
	yy, err1 := strconv.Atoi(cycle[:2])
	nn, err2 := strconv.Atoi(cycle[2:])
	if err1 != nil || err2 != nil || nn < 1 || nn > 14 {
		return start, end, fmt.Errorf("invalid AIRAC cycle %q", cycle)
	}

	year := 2000 + yy
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	days := jan1.Sub(cycleEpoch).Hours() / 24
	first := int(math.Ceil(days / 28))

	start = cycleEpoch.Add(time.Duration(first+nn-1) * cycleLength)
	if start.Year() != year {
		return time.Time{}, time.Time{}, fmt.Errorf("AIRAC cycle %q does not exist", cycle)
	}
	return start, start.Add(cycleLength), nil
}
