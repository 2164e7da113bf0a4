package dataprocessing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var yearPattern = regexp.MustCompile(`(\d{4})`)

// ExtractYear returns the first four-digit run in label. "1960 [YR1960]"
// yields 1960.
func ExtractYear(label string) (int, bool) {
	m := yearPattern.FindString(label)
	if m == "" {
		return 0, false
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return year, true
}

// ParseNumber coerces a cell to a float. Empty cells, placeholders such as
// ".." and NaN or infinite values are missing.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseYear parses a year cell, accepting "2000" and "2000.0".
func ParseYear(s string) (int, bool) {
	v, ok := ParseNumber(s)
	if !ok || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

// FormatFloat renders v the shortest way that round-trips. Integral values
// keep a trailing ".0" so float columns stay recognizable as such.
func FormatFloat(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// TypedValue converts a cell for typed output such as JSON or a
// spreadsheet: integers and floats become numbers, an empty cell is nil and
// everything else stays text.
func TypedValue(s string) interface{} {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if i, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}

// FormatOptional renders a possibly missing value; nil becomes an empty cell.
func FormatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatFloat(*v)
}

// ParseOptional is the inverse of FormatOptional.
func ParseOptional(s string) *float64 {
	v, ok := ParseNumber(s)
	if !ok {
		return nil
	}
	return &v
}

// canonicalKey normalizes numeric join keys so "2000" and "2000.0" match.
func canonicalKey(s string) string {
	if v, err := strconv.ParseFloat(s, 64); err == nil && v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return s
}
