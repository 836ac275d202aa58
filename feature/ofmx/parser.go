package ofmx

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"aero-importer/core/aero"
	"aero-importer/core/geo"
	"aero-importer/core/utils"

	"github.com/paulmach/orb"
)

// RootElement is the document element of an OFMX snapshot.
const RootElement = "OFMX-Snapshot"

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

type parser struct {
	dec  *xml.Decoder
	prov aero.Provenance
	emit aero.Emitter
}

// Parse streams an OFMX snapshot from r and emits one record per recognised
// feature element. Bad coordinates reject the record through emit.Reject;
// malformed XML or a feature without an identifier aborts with a ParseError.
//
// The effective and expiration attributes of the root element override the
// validity window of prov.
func Parse(ctx context.Context, r io.Reader, prov aero.Provenance, emit aero.Emitter) error {
	prov.Source = aero.SourceOFMX
	p := &parser{dec: xml.NewDecoder(r), prov: prov, emit: emit}
	return p.run(ctx)
}

func (p *parser) run(ctx context.Context) error {
	rootSeen := false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tok, err := p.dec.Token()
		if errors.Is(err, io.EOF) {
			if !rootSeen {
				return p.fail("", "empty document", nil)
			}
			return nil
		}
		if err != nil {
			return p.fail("", "malformed XML", err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !rootSeen {
			rootSeen = true
			if err := p.root(se); err != nil {
				return err
			}
			continue
		}
		if err := p.element(se); err != nil {
			return err
		}
	}
}

func (p *parser) root(se xml.StartElement) error {
	for _, attr := range se.Attr {
		var dst **time.Time
		switch attr.Name.Local {
		case "effective":
			dst = &p.prov.ValidFrom
		case "expiration":
			dst = &p.prov.ValidTo
		default:
			continue
		}
		t, err := parseTime(attr.Value)
		if err != nil {
			return p.fail(se.Name.Local, "invalid "+attr.Name.Local+" attribute", err)
		}
		*dst = &t
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (p *parser) element(se xml.StartElement) error {
	line := p.line()
	name := se.Name.Local

	var (
		rec aero.Record
		err error
	)
	switch name {
	case "Ahp":
		var el ahp
		if err := p.decode(&el, se); err != nil {
			return err
		}
		rec, err = p.airport(&el)
	case "Rwy":
		var el rwy
		if err := p.decode(&el, se); err != nil {
			return err
		}
		rec, err = p.runway(&el)
	case "Rdn":
		var el rdn
		if err := p.decode(&el, se); err != nil {
			return err
		}
		rec, err = p.runwayEnd(&el)
	case "Ase":
		var el ase
		if err := p.decode(&el, se); err != nil {
			return err
		}
		rec, err = p.airspace(&el)
	case "Dpn":
		var el dpn
		if err := p.decode(&el, se); err != nil {
			return err
		}
		rec, err = p.waypoint(&el)
	case "Vor", "Ndb", "Dme", "Tcn", "Mkr":
		var el navaid
		if err := p.decode(&el, se); err != nil {
			return err
		}
		rec, err = p.navaid(&el)
	default:
		if err := p.dec.Skip(); err != nil {
			return p.fail(name, "malformed XML", err)
		}
		return nil
	}

	if err != nil {
		var gerr *geo.GeometryError
		if errors.As(err, &gerr) {
			p.emit.Reject(kindOf(name), err)
			return nil
		}
		return &aero.ParseError{File: p.prov.File, Line: line, Section: name, Msg: err.Error()}
	}

	m := rec.Base()
	m.Prov = p.prov
	m.Line = line
	return p.emit.Emit(rec)
}

func (p *parser) decode(v any, se xml.StartElement) error {
	if err := p.dec.DecodeElement(v, &se); err != nil {
		return p.fail(se.Name.Local, "malformed XML", err)
	}
	return nil
}

func (p *parser) line() int {
	line, _ := p.dec.InputPos()
	return line
}

func (p *parser) fail(section, msg string, err error) error {
	return &aero.ParseError{File: p.prov.File, Line: p.line(), Section: section, Msg: msg, Err: err}
}

func kindOf(element string) aero.Kind {
	switch element {
	case "Ahp":
		return aero.KindAirport
	case "Rwy":
		return aero.KindRunway
	case "Rdn":
		return aero.KindRunwayEnd
	case "Ase":
		return aero.KindAirspace
	case "Dpn":
		return aero.KindWaypoint
	default:
		return aero.KindNavaid
	}
}

var errMissingID = errors.New("missing identifier")

func point(kind aero.Kind, id, lat, lon string) (orb.Point, error) {
	pt, err := geo.ParseOFMXPoint(lat, lon)
	if err != nil {
		return pt, fmt.Errorf("%s %s: %w", kind, id, err)
	}
	return pt, nil
}

func (p *parser) airport(el *ahp) (aero.Record, error) {
	id := el.Uid.airportID()
	if id == "" {
		return nil, errMissingID
	}
	pt, err := point(aero.KindAirport, id, el.GeoLat, el.GeoLong)
	if err != nil {
		return nil, err
	}
	return &aero.Airport{
		Meta:             aero.Meta{NativeID: id, Region: el.Uid.region()},
		CodeID:           strings.TrimSpace(el.Uid.CodeID),
		CodeICAO:         strings.TrimSpace(el.CodeICAO),
		CodeGPS:          strings.TrimSpace(el.CodeGPS),
		CodeType:         strings.TrimSpace(el.CodeType),
		Name:             strings.TrimSpace(el.Name),
		City:             strings.TrimSpace(el.City),
		Elevation:        utils.FloatPtr(el.Elev, 1),
		ElevationUOM:     strings.TrimSpace(el.ElevUOM),
		MagVar:           utils.FloatPtr(el.MagVar, 1),
		MagVarYear:       year(el.MagVarDate),
		TransitionAlt:    utils.FloatPtr(el.TransitionAlt, 1),
		TransitionAltUOM: strings.TrimSpace(el.TransitionAltUOM),
		Remarks:          strings.TrimSpace(el.Remarks),
		Point:            pt,
	}, nil
}

// year reads the leading year of dateMagVar, which is "YYYY" or a full date.
func year(s string) *int {
	s = strings.TrimSpace(s)
	if len(s) > 4 {
		s = s[:4]
	}
	return utils.IntPtr(s)
}

func (p *parser) runway(el *rwy) (aero.Record, error) {
	id := el.Uid.runwayID()
	if id == "" {
		return nil, errMissingID
	}
	return &aero.Runway{
		Meta:        aero.Meta{NativeID: id, Region: el.Uid.Ahp.region()},
		AirportRef:  el.Uid.Ahp.airportID(),
		Designator:  strings.TrimSpace(el.Uid.Desig),
		Length:      utils.FloatPtr(el.Len, 1),
		Width:       utils.FloatPtr(el.Wid, 1),
		UOMDimRwy:   strings.TrimSpace(el.UOMDim),
		Surface:     strings.TrimSpace(el.Composition),
		Preparation: strings.TrimSpace(el.Preparation),
		PCNNote:     strings.TrimSpace(el.PCNNote),
		StripLength: utils.FloatPtr(el.StripLen, 1),
		StripWidth:  utils.FloatPtr(el.StripWid, 1),
		UOMDimStrip: strings.TrimSpace(el.UOMDimStrip),
	}, nil
}

func (p *parser) runwayEnd(el *rdn) (aero.Record, error) {
	id := el.Uid.runwayEndID()
	if id == "" {
		return nil, errMissingID
	}
	pt, err := point(aero.KindRunwayEnd, id, el.GeoLat, el.GeoLong)
	if err != nil {
		return nil, err
	}
	var aptRef, region string
	if el.Uid.Rwy != nil {
		aptRef = el.Uid.Rwy.Ahp.airportID()
		region = el.Uid.Rwy.Ahp.region()
	}
	return &aero.RunwayEnd{
		Meta:        aero.Meta{NativeID: id, Region: region},
		RunwayRef:   el.Uid.Rwy.runwayID(),
		AirportRef:  aptRef,
		Designator:  strings.TrimSpace(el.Uid.Desig),
		TrueBearing: utils.FloatPtr(el.TrueBrg, 1),
		MagBearing:  utils.FloatPtr(el.MagBrg, 1),
		Point:       pt,
	}, nil
}

func (p *parser) airspace(el *ase) (aero.Record, error) {
	id := el.Uid.airspaceID()
	if id == "" {
		return nil, errMissingID
	}
	return &aero.Airspace{
		Meta:     aero.Meta{NativeID: id, Region: el.Uid.region()},
		CodeID:   strings.TrimSpace(el.Uid.CodeID),
		CodeType: strings.TrimSpace(el.Uid.CodeType),
		Name:     strings.TrimSpace(el.Name),
		NameAlt:  strings.TrimSpace(el.LocalType),
		Class:    strings.TrimSpace(el.Class),
		Upper:    limit(el.UpperRef, el.UpperValue, el.UpperUOM),
		Lower:    limit(el.LowerRef, el.LowerValue, el.LowerUOM),
		Remarks:  strings.TrimSpace(el.Remarks),
	}, nil
}

// limit keeps integral values as published and rounds fractional ones.
func limit(ref, value, uom string) aero.Limit {
	l := aero.Limit{Ref: strings.TrimSpace(ref), UOM: strings.TrimSpace(uom)}
	if v := utils.IntPtr(value); v != nil {
		l.Value = v
	} else if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		n := int(math.Round(f))
		l.Value = &n
	}
	return l
}

func (p *parser) waypoint(el *dpn) (aero.Record, error) {
	id := el.Uid.pointID("DPN")
	if id == "" {
		return nil, errMissingID
	}
	pt, err := point(aero.KindWaypoint, id, el.Uid.GeoLat, el.Uid.GeoLong)
	if err != nil {
		return nil, err
	}
	return &aero.Waypoint{
		Meta:      aero.Meta{NativeID: id, Region: el.Uid.region()},
		CodeID:    strings.TrimSpace(el.Uid.CodeID),
		Name:      strings.TrimSpace(el.Name),
		PointType: strings.TrimSpace(el.CodeType),
		Point:     pt,
	}, nil
}

func (p *parser) navaid(el *navaid) (aero.Record, error) {
	typ := navaidTypes[el.XMLName.Local]
	self, vor := el.own()
	id := self.pointID(typ)
	if id == "" {
		return nil, errMissingID
	}
	pt, err := point(aero.KindNavaid, id, self.GeoLat, self.GeoLong)
	if err != nil {
		return nil, err
	}

	codeType := el.CodeType
	if typ == "NDB" {
		codeType = el.Class
	}
	n := &aero.Navaid{
		Meta:           aero.Meta{NativeID: id, Region: self.region()},
		CodeID:         strings.TrimSpace(self.CodeID),
		Name:           strings.TrimSpace(el.Name),
		NavaidType:     typ,
		CodeType:       strings.TrimSpace(codeType),
		Frequency:      utils.FloatPtr(el.Freq, 1),
		FrequencyUOM:   strings.TrimSpace(el.FreqUOM),
		Channel:        strings.TrimSpace(el.Channel),
		GhostFrequency: utils.FloatPtr(el.Ghost, 1),
		Elevation:      utils.FloatPtr(el.Elev, 1),
		ElevationUOM:   strings.TrimSpace(el.ElevUOM),
		MagVar:         utils.FloatPtr(el.MagVar, 1),
		Datum:          strings.TrimSpace(el.Datum),
		Point:          pt,
	}
	if vor != nil {
		n.AssociatedVOR = vor.pointID("VOR")
	}
	return n, nil
}
