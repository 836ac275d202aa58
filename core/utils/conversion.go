package utils

import (
	"strconv"
	"strings"
)

// Field returns line[from:to] trimmed of spaces. Offsets past the end of the
// line are clamped, so a short line yields a shorter or empty field.
func Field(line string, from, to int) string {
	if from >= len(line) || from >= to {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

// Char returns the byte at index i, or a space when the line is shorter.
func Char(line string, i int) byte {
	if i < 0 || i >= len(line) {
		return ' '
	}
	return line[i]
}

// StrPtr returns nil for blank strings and a pointer to the trimmed value otherwise.
func StrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// IntPtr parses a signed integer, returning nil when s is blank or not a number.
// Leading zeros and a leading + or - are accepted.
func IntPtr(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

// FloatPtr parses a decimal number and divides it by scale. It returns nil when
// s is blank or not a number. A scale of 0 is treated as 1.
func FloatPtr(s string, scale float64) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if scale != 0 && scale != 1 {
		v /= scale
	}
	return &v
}
