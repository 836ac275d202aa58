package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// hundredths of an arc second per degree
const hundredthsPerDegree = 360000

// NewPoint validates a longitude/latitude pair and returns it as an orb.Point.
func NewPoint(lon, lat float64) (orb.Point, error) {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return orb.Point{}, newError("coordinate is not a finite number", "")
	}
	if lat < -90 || lat > 90 {
		return orb.Point{}, newError("latitude out of range", strconv.FormatFloat(lat, 'f', -1, 64))
	}
	if lon < -180 || lon > 180 {
		return orb.Point{}, newError("longitude out of range", strconv.FormatFloat(lon, 'f', -1, 64))
	}
	return orb.Point{lon, lat}, nil
}

// ParseARINCLat parses a 9 character ARINC 424 latitude such as "N47265700".
func ParseARINCLat(s string) (float64, error) {
	return parseARINC(s, 2, 'N', 'S', 90)
}

// ParseARINCLon parses a 10 character ARINC 424 longitude such as "E008322200".
func ParseARINCLon(s string) (float64, error) {
	return parseARINC(s, 3, 'E', 'W', 180)
}

// ParseARINCPoint parses the latitude and longitude fields of a single record.
func ParseARINCPoint(lat, lon string) (orb.Point, error) {
	y, err := ParseARINCLat(lat)
	if err != nil {
		return orb.Point{}, err
	}
	x, err := ParseARINCLon(lon)
	if err != nil {
		return orb.Point{}, err
	}
	return NewPoint(x, y)
}

// FormatARINCLat is the inverse of ParseARINCLat.
func FormatARINCLat(v float64) string {
	return formatFixed(v, 2, 'N', 'S')
}

// FormatARINCLon is the inverse of ParseARINCLon.
func FormatARINCLon(v float64) string {
	return formatFixed(v, 3, 'E', 'W')
}

func parseARINC(raw string, degDigits int, pos, neg byte, limit float64) (float64, error) {
	s := strings.TrimSpace(raw)
	if len(s) != degDigits+7 {
		return 0, newError("unexpected coordinate length", raw)
	}
	sign, err := hemisphere(s[0], pos, neg, raw)
	if err != nil {
		return 0, err
	}
	digits := s[1:]
	if !isDigits(digits) {
		return 0, newError("non-numeric coordinate", raw)
	}
	deg, _ := strconv.Atoi(digits[:degDigits])
	minutes, _ := strconv.Atoi(digits[degDigits : degDigits+2])
	seconds, _ := strconv.Atoi(digits[degDigits+2 : degDigits+4])
	hundredths, _ := strconv.Atoi(digits[degDigits+4:])
	return sexagesimal(sign, float64(deg), float64(minutes), float64(seconds)+float64(hundredths)/100, limit, raw)
}

func formatFixed(v float64, degDigits int, pos, neg byte) string {
	hemi := pos
	if v < 0 {
		hemi = neg
	}
	deg, minutes, seconds, hundredths := splitHundredths(v)
	return fmt.Sprintf("%c%0*d%02d%02d%02d", hemi, degDigits, deg, minutes, seconds, hundredths)
}

// ParseOFMXLat parses an OFMX latitude, either "DDMMSS.ssH" or decimal "DD.ddddH".
func ParseOFMXLat(s string) (float64, error) {
	return parseOFMX(s, 2, 'N', 'S', 90)
}

// ParseOFMXLon parses an OFMX longitude, either "DDDMMSS.ssH" or decimal "DDD.ddddH".
func ParseOFMXLon(s string) (float64, error) {
	return parseOFMX(s, 3, 'E', 'W', 180)
}

// ParseOFMXPoint parses a geoLat/geoLong pair.
func ParseOFMXPoint(lat, lon string) (orb.Point, error) {
	y, err := ParseOFMXLat(lat)
	if err != nil {
		return orb.Point{}, err
	}
	x, err := ParseOFMXLon(lon)
	if err != nil {
		return orb.Point{}, err
	}
	return NewPoint(x, y)
}

// FormatOFMXLat writes a latitude as "DDMMSS.ssH".
func FormatOFMXLat(v float64) string {
	return formatOFMX(v, 2, 'N', 'S')
}

// FormatOFMXLon writes a longitude as "DDDMMSS.ssH".
func FormatOFMXLon(v float64) string {
	return formatOFMX(v, 3, 'E', 'W')
}

func parseOFMX(raw string, degDigits int, pos, neg byte, limit float64) (float64, error) {
	s := strings.TrimSpace(raw)
	if len(s) < 2 {
		return 0, newError("coordinate too short", raw)
	}
	sign, err := hemisphere(s[len(s)-1], pos, neg, raw)
	if err != nil {
		return 0, err
	}
	body := s[:len(s)-1]
	whole := body
	if i := strings.IndexByte(body, '.'); i >= 0 {
		whole = body[:i]
	}
	if whole == "" || !isDigits(whole) {
		return 0, newError("non-numeric coordinate", raw)
	}

	switch {
	case len(whole) == degDigits+4:
		deg, _ := strconv.Atoi(whole[:degDigits])
		minutes, _ := strconv.Atoi(whole[degDigits : degDigits+2])
		seconds, err := strconv.ParseFloat(body[degDigits+2:], 64)
		if err != nil {
			return 0, newError("invalid seconds", raw)
		}
		return sexagesimal(sign, float64(deg), float64(minutes), seconds, limit, raw)
	case len(whole) <= degDigits:
		v, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return 0, newError("invalid decimal degrees", raw)
		}
		if v > limit {
			return 0, newError("coordinate out of range", raw)
		}
		return sign * v, nil
	default:
		return 0, newError("unrecognised coordinate layout", raw)
	}
}

func formatOFMX(v float64, degDigits int, pos, neg byte) string {
	hemi := pos
	if v < 0 {
		hemi = neg
	}
	deg, minutes, seconds, hundredths := splitHundredths(v)
	return fmt.Sprintf("%0*d%02d%02d.%02d%c", degDigits, deg, minutes, seconds, hundredths, hemi)
}

// ParseOpenAIR parses an OpenAIR coordinate pair such as "46:30:00 N 014:15:30 E".
// Hemisphere letters may be attached to the value or separated by whitespace.
func ParseOpenAIR(raw string) (orb.Point, error) {
	fields := strings.Fields(strings.ReplaceAll(raw, ",", " "))
	if len(fields) == 0 {
		return orb.Point{}, newError("empty coordinate", raw)
	}

	var values [2]strings.Builder
	var hemis [2]byte
	idx := 0
	for _, f := range fields {
		if idx > 1 {
			return orb.Point{}, newError("unexpected trailing token", raw)
		}
		last := upper(f[len(f)-1])
		if (idx == 0 && (last == 'N' || last == 'S')) || (idx == 1 && (last == 'E' || last == 'W')) {
			values[idx].WriteString(f[:len(f)-1])
			hemis[idx] = last
			idx++
			continue
		}
		values[idx].WriteString(f)
	}
	if idx != 2 {
		return orb.Point{}, newError("missing hemisphere", raw)
	}

	lat, err := ParseDMS(values[0].String(), hemis[0], 90)
	if err != nil {
		return orb.Point{}, err
	}
	lon, err := ParseDMS(values[1].String(), hemis[1], 180)
	if err != nil {
		return orb.Point{}, err
	}
	return NewPoint(lon, lat)
}

// ParseDMS parses "DD:MM:SS.s", "DD:MM.m" or "DD.d" and applies the hemisphere sign.
func ParseDMS(value string, hemi byte, limit float64) (float64, error) {
	if value == "" {
		return 0, newError("empty coordinate value", value)
	}
	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, newError("too many coordinate components", value)
	}
	var vals [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 {
			return 0, newError("invalid coordinate component", value)
		}
		vals[i] = f
	}
	sign := 1.0
	switch upper(hemi) {
	case 'S', 'W':
		sign = -1
	case 'N', 'E':
	default:
		return 0, newError("invalid hemisphere", string(hemi))
	}
	return sexagesimal(sign, vals[0], vals[1], vals[2], limit, value)
}

// FormatOpenAIR writes a point as "DD:MM:SS.ss N DDD:MM:SS.ss E".
func FormatOpenAIR(p orb.Point) string {
	latHemi, lonHemi := byte('N'), byte('E')
	if p.Lat() < 0 {
		latHemi = 'S'
	}
	if p.Lon() < 0 {
		lonHemi = 'W'
	}
	ld, lm, ls, lh := splitHundredths(p.Lat())
	od, om, osec, oh := splitHundredths(p.Lon())
	return fmt.Sprintf("%02d:%02d:%02d.%02d %c %03d:%02d:%02d.%02d %c", ld, lm, ls, lh, latHemi, od, om, osec, oh, lonHemi)
}

func sexagesimal(sign, deg, minutes, seconds, limit float64, raw string) (float64, error) {
	if minutes >= 60 || seconds >= 60 {
		return 0, newError("minutes or seconds out of range", raw)
	}
	v := deg + minutes/60 + seconds/3600
	if v > limit {
		return 0, newError("coordinate out of range", raw)
	}
	return sign * v, nil
}

func splitHundredths(v float64) (deg, minutes, seconds, hundredths int) {
	total := int(math.Round(math.Abs(v) * hundredthsPerDegree))
	deg = total / hundredthsPerDegree
	total %= hundredthsPerDegree
	minutes = total / 6000
	total %= 6000
	seconds = total / 100
	hundredths = total % 100
	return deg, minutes, seconds, hundredths
}

func hemisphere(c, pos, neg byte, raw string) (float64, error) {
	switch upper(c) {
	case pos:
		return 1, nil
	case neg:
		return -1, nil
	default:
		return 0, newError("invalid hemisphere", raw)
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
