package geo

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/ewkb"
	"github.com/paulmach/orb/encoding/wkt"
)

// EWKT renders g as extended WKT carrying the importer SRID, e.g. "SRID=4326;POINT(8.5 47.4)".
// PostGIS accepts this text form directly for geometry columns.
func EWKT(g orb.Geometry) string {
	return "SRID=" + strconv.Itoa(SRID) + ";" + wkt.MarshalString(g)
}

// Decode reads a geometry as returned by a store: hex or binary EWKB from
// PostGIS, or (E)WKT text from stores without a geometry type.
func Decode(src any) (orb.Geometry, error) {
	var text string
	switch v := src.(type) {
	case nil:
		return nil, nil
	case string:
		text = v
	case []byte:
		if len(v) > 0 && (v[0] == 0x00 || v[0] == 0x01) {
			g, _, err := ewkb.Unmarshal(v)
			return g, err
		}
		text = string(v)
	default:
		return nil, fmt.Errorf("unsupported geometry source %T", src)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	if strings.HasPrefix(strings.ToUpper(text), "SRID=") {
		i := strings.IndexByte(text, ';')
		if i < 0 {
			return nil, newError("malformed EWKT", text)
		}
		srid, err := strconv.Atoi(text[5:i])
		if err != nil || srid != SRID {
			return nil, newError("unexpected SRID", text[:i])
		}
		text = text[i+1:]
	}
	if c := upper(text[0]); c >= 'G' && c <= 'Z' {
		return wkt.Unmarshal(text)
	}

	raw, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("geometry is neither WKT nor hex EWKB: %w", err)
	}
	g, _, err := ewkb.Unmarshal(raw)
	return g, err
}
