package ofmx

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"aero-importer/core/aero"
	"aero-importer/core/geo"

	"github.com/paulmach/orb"
)

// Rejecter receives shapes that failed normalisation.
type Rejecter interface {
	Reject(kind aero.Kind, err error)
}

// ShapeIndex maps airspace native ids to their outer ring.
type ShapeIndex map[string]orb.Ring

// ByNativeID returns the ring of an airspace.
func (ix ShapeIndex) ByNativeID(id string) (orb.Ring, bool) {
	r, ok := ix[strings.TrimSpace(id)]
	return r, ok
}

// ParseShapes reads a shape-extension document into index. The first shape
// for an id wins. Shapes that fail validation are passed to rej and skipped.
func ParseShapes(ctx context.Context, r io.Reader, index ShapeIndex, rej Rejecter) error {
	dec := xml.NewDecoder(r)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line, _ := dec.InputPos()
		if err != nil {
			return &aero.ParseError{Line: line, Section: "shapes", Msg: "malformed XML", Err: err}
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Ase" {
			continue
		}
		var el shapeAse
		if err := dec.DecodeElement(&el, &se); err != nil {
			return &aero.ParseError{Line: line, Section: "Ase", Msg: "malformed XML", Err: err}
		}

		id := el.Uid.airspaceID()
		if id == "" {
			return &aero.ParseError{Line: line, Section: "Ase", Msg: errMissingID.Error()}
		}
		if _, dup := index[id]; dup {
			continue
		}
		ring, err := posList(el.PosList)
		if err != nil {
			if rej != nil {
				rej.Reject(aero.KindAirspace, fmt.Errorf("shape %s: %w", id, err))
			}
			continue
		}
		index[id] = ring
	}
}

// posList parses whitespace separated "lon,lat[,alt]" tuples into a valid ring.
func posList(s string) (orb.Ring, error) {
	fields := strings.Fields(s)
	points := make([]orb.Point, 0, len(fields))
	for _, f := range fields {
		parts := strings.Split(f, ",")
		if len(parts) < 2 {
			return nil, &geo.GeometryError{Reason: "malformed position", Input: f}
		}
		lon, err1 := strconv.ParseFloat(parts[0], 64)
		lat, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return nil, &geo.GeometryError{Reason: "malformed position", Input: f}
		}
		pt, err := geo.NewPoint(lon, lat)
		if err != nil {
			return nil, err
		}
		points = append(points, pt)
	}
	return geo.Ring(points)
}
