package arinc

import (
	"fmt"
	"strconv"
	"strings"

	"aero-importer/core/aero"
	"aero-importer/core/utils"
)

// ReadCycle returns the cycle label of a record, columns 129-132.
func ReadCycle(line string) string {
	return utils.Field(line, 128, 132)
}

// section returns the two character section code of a record. Airport
// records (P) carry their subsection in column 13.
func section(line string) string {
	if utils.Char(line, 4) == 'P' {
		return string([]byte{'P', utils.Char(line, 12)})
	}
	return string([]byte{utils.Char(line, 4), utils.Char(line, 5)})
}

// parseLimit reads a vertical limit field such as "FL195", "GND" or "05500".
func parseLimit(raw, uom string) aero.Limit {
	l := aero.Limit{UOM: strings.TrimSpace(uom)}
	v := strings.TrimSpace(raw)
	switch {
	case v == "":
	case v == "GND" || v == "SFC" || v == "UNL" || v == "UNLTD":
		l.Ref = v
	case strings.HasPrefix(v, "FL") && isDigits(v[2:]):
		l.Ref = "FL"
		l.Value = utils.IntPtr(v[2:])
	case isDigits(v):
		l.Value = utils.IntPtr(v)
	case len(v) > 2 && isAlpha(v[:2]) && isDigits(v[2:]):
		l.Ref = v[:2]
		l.Value = utils.IntPtr(v[2:])
	default:
		l.Ref = v
	}
	return l
}

// parseMagVar reads "E0012" style variations. E or a bare number is positive,
// W, S or a minus sign negative. Two or more digits carry one decimal.
func parseMagVar(raw string) *float64 {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}
	sign := 1.0
	switch v[0] {
	case 'W', 'S', '-':
		sign = -1
	}
	digits := v
	if c := v[0]; isAlpha(v[:1]) || c == '+' || c == '-' {
		digits = strings.TrimSpace(v[1:])
	}
	if !isDigits(digits) {
		return nil
	}
	n, _ := strconv.Atoi(digits)
	out := float64(n)
	if len(digits) >= 2 {
		out /= 10
	}
	out *= sign
	return &out
}

// parseDigits divides an all-digit field by scale, e.g. frequencies by 100
// and bearings by 10.
func parseDigits(raw string, scale float64) *float64 {
	v := strings.TrimSpace(raw)
	if !isDigits(v) {
		return nil
	}
	return utils.FloatPtr(v, scale)
}

// normalizeDesignator turns "RW05L" into "05L". It returns "" when the field
// holds no runway number.
func normalizeDesignator(raw string) string {
	v := strings.ToUpper(strings.TrimSpace(raw))
	v = strings.TrimSpace(strings.TrimPrefix(v, "RW"))
	var digits, side strings.Builder
	for i := 0; i < len(v); i++ {
		switch c := v[i]; {
		case c >= '0' && c <= '9':
			digits.WriteByte(c)
		case c >= 'A' && c <= 'Z':
			side.WriteByte(c)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return ""
	}
	out := fmt.Sprintf("%02d", n)
	if side.Len() > 0 {
		out += side.String()[:1]
	}
	return out
}

var reciprocalSide = map[string]string{"L": "R", "R": "L", "C": "C", "": ""}

// runwayPair returns the pair key ("05-23") and designator ("05/23") of a
// normalised runway end designator.
func runwayPair(desig string) (key, pair string) {
	num, _ := strconv.Atoi(desig[:2])
	side := desig[2:]
	rec := (num + 18) % 36
	if rec == 0 {
		rec = 36
	}
	other := fmt.Sprintf("%02d%s", rec, reciprocalSide[side])

	first, second := desig, other
	if less(other, desig) {
		first, second = other, desig
	}
	return first + "-" + second, first + "/" + second
}

func less(a, b string) bool {
	na, _ := strconv.Atoi(a[:2])
	nb, _ := strconv.Atoi(b[:2])
	if na != nb {
		return na < nb
	}
	return a[2:] < b[2:]
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

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
