package arinc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"aero-importer/core/aero"
	"aero-importer/core/geo"
	"aero-importer/core/utils"

	"github.com/paulmach/orb"
)

const maxLineSize = 64 * 1024

type runwayData struct {
	id, airport, region, pair string
	length, width             *float64
}

type state struct {
	prov aero.Provenance
	emit aero.Emitter
	line int

	airports  map[string]bool
	airspaces map[string]bool

	// runways in first-seen order
	runways     []*runwayData
	runwayIndex map[string]*runwayData

	// runway end points per airport code, in first-seen airport order
	endAirports []string
	endPoints   map[string][]orb.Point
	endRegion   map[string]string
}

// Parse reads ARINC-424 records from r in a single pass. The cycle of prov is
// replaced by the cycle of the first record when that field is set.
//
// A record of a known section shorter than RecordLength aborts with a
// ParseError. A malformed coordinate rejects the record through emit.Reject.
func Parse(ctx context.Context, r io.Reader, prov aero.Provenance, emit aero.Emitter) error {
	prov.Source = aero.SourceARINC
	s := &state{
		prov:        prov,
		emit:        emit,
		airports:    make(map[string]bool),
		airspaces:   make(map[string]bool),
		runwayIndex: make(map[string]*runwayData),
		endPoints:   make(map[string][]orb.Point),
		endRegion:   make(map[string]string),
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	first := true
	for sc.Scan() {
		s.line++
		if s.line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line := ascii(strings.TrimRight(sc.Text(), "\r\n"))
		if line == "" {
			continue
		}
		if first {
			first = false
			if cycle := ReadCycle(line); cycle != "" {
				s.prov.Cycle = cycle
			}
		}
		if err := s.record(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return &aero.ParseError{File: prov.File, Line: s.line + 1, Msg: "read failed", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.finish()
}

// ascii drops non-ASCII bytes so that column offsets stay aligned.
func ascii(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] >= 0x80 {
			var b strings.Builder
			for j := 0; j < len(line); j++ {
				if line[j] < 0x80 {
					b.WriteByte(line[j])
				}
			}
			return b.String()
		}
	}
	return line
}

func (s *state) record(line string) error {
	if !recordTypes[line[0]] {
		return nil
	}
	sec := section(line)
	l, ok := layouts[sec]
	if !ok {
		return nil
	}
	if len(line) < l.minLen {
		return &aero.ParseError{
			File:    s.prov.File,
			Line:    s.line,
			Section: sec,
			Msg:     fmt.Sprintf("record is %d columns, want %d", len(line), l.minLen),
		}
	}
	if !l.primary(line) {
		return nil
	}

	err := l.parse(s, line)
	var gerr *geo.GeometryError
	if errors.As(err, &gerr) {
		s.emit.Reject(l.kind, fmt.Errorf("line %d: %w", s.line, err))
		return nil
	}
	return err
}

func (s *state) meta(id, region string) aero.Meta {
	return aero.Meta{NativeID: id, Region: region, Prov: s.prov, Line: s.line}
}

func point(line string) (orb.Point, error) {
	return geo.ParseARINCPoint(line[32:41], line[41:51])
}

func ftUOM(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return "FT"
}

func airportID(icao string) string {
	return "ARINC:PA:" + icao
}

func (s *state) airport(line string) error {
	icao := utils.Field(line, 6, 10)
	if icao == "" {
		return nil
	}
	s.airports[icao] = true
	pt, err := point(line)
	if err != nil {
		return err
	}
	return s.emit.Emit(&aero.Airport{
		Meta:             s.meta(airportID(icao), utils.Field(line, 10, 12)),
		CodeID:           icao,
		CodeICAO:         icao,
		Name:             utils.Field(line, 93, 123),
		Elevation:        utils.FloatPtr(utils.Field(line, 56, 61), 1),
		ElevationUOM:     ftUOM(line[56:61]),
		MagVar:           parseMagVar(line[51:56]),
		TransitionAlt:    utils.FloatPtr(utils.Field(line, 70, 75), 1),
		TransitionAltUOM: ftUOM(line[70:75]),
		Point:            pt,
	})
}

func (s *state) runwayEnd(line string) error {
	apt := utils.Field(line, 6, 10)
	desig := normalizeDesignator(line[13:18])
	if apt == "" || desig == "" {
		return nil
	}
	key, pair := runwayPair(desig)
	rwyID := "ARINC:PG:" + apt + ":" + key
	region := utils.Field(line, 10, 12)

	// a rejected end must not create or widen its runway
	pt, err := point(line)
	if err != nil {
		return err
	}

	length := utils.FloatPtr(utils.Field(line, 22, 27), 1)
	width := utils.FloatPtr(utils.Field(line, 77, 80), 1)
	if rwy, ok := s.runwayIndex[rwyID]; ok {
		rwy.length = maxPtr(rwy.length, length)
		rwy.width = maxPtr(rwy.width, width)
	} else {
		rwy = &runwayData{id: rwyID, airport: apt, region: region, pair: pair, length: length, width: width}
		s.runwayIndex[rwyID] = rwy
		s.runways = append(s.runways, rwy)
	}
	if _, seen := s.endPoints[apt]; !seen {
		s.endAirports = append(s.endAirports, apt)
		s.endRegion[apt] = region
	}
	s.endPoints[apt] = append(s.endPoints[apt], pt)

	return s.emit.Emit(&aero.RunwayEnd{
		Meta:       s.meta("ARINC:RD:"+apt+":"+desig, region),
		RunwayRef:  rwyID,
		AirportRef: airportID(apt),
		Designator: desig,
		MagBearing: parseDigits(line[27:31], 10),
		Point:      pt,
	})
}

func maxPtr(a, b *float64) *float64 {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case *b > *a:
		return b
	default:
		return a
	}
}

// emitAirspace drops repeated ids; the first record of an airspace carries
// its metadata, later continuation and segment records do not.
func (s *state) emitAirspace(a *aero.Airspace) error {
	if s.airspaces[a.NativeID] {
		return nil
	}
	s.airspaces[a.NativeID] = true
	return s.emit.Emit(a)
}

func (s *state) controlled(line string) error {
	icao := utils.Field(line, 6, 8)
	typ := utils.Field(line, 9, 10)
	center := utils.Field(line, 9, 14)
	return s.emitAirspace(&aero.Airspace{
		Meta:     s.meta("ARINC:UC:"+icao+":"+center+":"+typ, icao),
		CodeID:   center,
		CodeType: typ,
		Name:     utils.Field(line, 93, 123),
		Class:    utils.Field(line, 16, 17),
		Lower:    parseLimit(line[81:86], line[86:87]),
		Upper:    parseLimit(line[87:92], line[92:93]),
	})
}

func (s *state) restrictive(line string) error {
	icao := utils.Field(line, 6, 8)
	typ := utils.Field(line, 8, 9)
	desig := utils.Field(line, 9, 19)
	return s.emitAirspace(&aero.Airspace{
		Meta:     s.meta("ARINC:UR:"+icao+":"+typ+":"+desig, icao),
		CodeID:   desig,
		CodeType: typ,
		Name:     utils.Field(line, 93, 123),
		Lower:    parseLimit(line[82:86], line[86:87]),
		Upper:    parseLimit(line[87:92], line[92:93]),
	})
}

func (s *state) fir(line string) error {
	ident := utils.Field(line, 6, 10)
	lower := parseLimit(line[85:90], "")
	if lower.Ref == "" && lower.Value == nil {
		lower = parseLimit(line[80:85], "")
	}
	return s.emitAirspace(&aero.Airspace{
		Meta:     s.meta("ARINC:UF:"+ident, utils.Field(line, 1, 4)),
		CodeID:   ident,
		CodeType: utils.Field(line, 14, 15),
		Name:     utils.Field(line, 98, 123),
		Lower:    lower,
		Upper:    parseLimit(line[90:95], ""),
	})
}

func (s *state) navaid(line, prefix, typ, freqUOM string, withElevation bool) error {
	icao := utils.Field(line, 10, 12)
	ident := utils.Field(line, 13, 17)
	pt, err := point(line)
	if err != nil {
		return err
	}
	n := &aero.Navaid{
		Meta:       s.meta("ARINC:"+prefix+":"+icao+":"+ident, icao),
		CodeID:     ident,
		Name:       utils.Field(line, 93, 123),
		NavaidType: typ,
		Frequency:  parseDigits(line[22:27], 100),
		MagVar:     parseMagVar(line[74:79]),
		Datum:      utils.Field(line, 90, 93),
		Point:      pt,
	}
	if n.Frequency != nil {
		n.FrequencyUOM = freqUOM
	}
	if withElevation {
		n.Elevation = utils.FloatPtr(utils.Field(line, 79, 84), 1)
		n.ElevationUOM = ftUOM(line[79:84])
	}
	return s.emit.Emit(n)
}

func (s *state) vhf(line string) error {
	return s.navaid(line, "D", "VOR", "MHz", true)
}

func (s *state) ndb(line string) error {
	return s.navaid(line, "DB", "NDB", "kHz", false)
}

func (s *state) waypoint(line string) error {
	ident := utils.Field(line, 13, 18)
	if ident == "" {
		return nil
	}
	region := utils.Field(line, 6, 10)
	pt, err := point(line)
	if err != nil {
		return err
	}
	name := utils.Field(line, 98, 123)
	if name == "" {
		name = ident
	}
	return s.emit.Emit(&aero.Waypoint{
		Meta:      s.meta("ARINC:"+section(line)+":"+region+":"+ident, region),
		CodeID:    ident,
		Name:      name,
		PointType: utils.Field(line, 26, 29),
		Point:     pt,
	})
}

// finish emits airports known only from their runway ends, then the paired
// runways.
func (s *state) finish() error {
	for _, apt := range s.endAirports {
		if s.airports[apt] {
			continue
		}
		s.airports[apt] = true
		pts := s.endPoints[apt]
		var lon, lat float64
		for _, p := range pts {
			lon += p.Lon()
			lat += p.Lat()
		}
		n := float64(len(pts))
		if err := s.emit.Emit(&aero.Airport{
			Meta:     aero.Meta{NativeID: airportID(apt), Region: s.endRegion[apt], Prov: s.prov},
			CodeID:   apt,
			CodeICAO: apt,
			Point:    orb.Point{lon / n, lat / n},
		}); err != nil {
			return err
		}
	}

	for _, rwy := range s.runways {
		r := &aero.Runway{
			Meta:       aero.Meta{NativeID: rwy.id, Region: rwy.region, Prov: s.prov},
			AirportRef: airportID(rwy.airport),
			Designator: rwy.pair,
			Length:     rwy.length,
			Width:      rwy.width,
		}
		if rwy.length != nil || rwy.width != nil {
			r.UOMDimRwy = "FT"
		}
		if err := s.emit.Emit(r); err != nil {
			return err
		}
	}
	return nil
}
