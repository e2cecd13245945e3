// Package core holds the domain types of the incident dashboard and the
// parsing rules that turn raw input cells into them.
package core

import (
	"strings"
	"time"
)

// timestampLayouts are tried in order. Layouts without a zone are read in the
// caller's location.
var timestampLayouts = []struct {
	layout string
	zoned  bool
}{
	{time.RFC3339Nano, true},
	{"2006-01-02 15:04:05.999999999Z07:00", true},
	{"2006-01-02 15:04:05.999999999-07", true},
	{"2006-01-02T15:04:05.999999999-07", true},
	{"2006-01-02T15:04:05.999999999", false},
	{"2006-01-02 15:04:05.999999999", false},
	{"2006-01-02 15:04", false},
	{time.DateOnly, false},
	{"02/01/2006 15:04:05", false},
	{"02/01/2006", false},
}

// ParseTimestamp parses an incident date. Zoned values keep their own offset,
// so the calendar date is the one written in the value; naive values are
// interpreted in loc. A nil loc means UTC.
//
// Examples:
//
//	ParseTimestamp("2024-01-05", time.UTC)                  -> 2024-01-05 00:00 UTC
//	ParseTimestamp("2024-01-05 13:10:00.123+00", time.UTC)  -> 2024-01-05 13:10:00.123 UTC
//	ParseTimestamp("2024-01-31 22:30:00-04", time.UTC)      -> 2024-01-31 22:30 -0400
//	ParseTimestamp("05/01/2024", time.UTC)                  -> 2024-01-05 00:00 UTC
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidTimestamp
	}
	for _, l := range timestampLayouts {
		if l.zoned {
			if t, err := time.Parse(l.layout, s); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(l.layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTimestamp
}

// ParseAreaFlag parses the urbano_rural flag. True means rural. Blank and
// unrecognized values are errors rather than a third bucket.
func ParseAreaFlag(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y", "sim", "s", "verdadeiro":
		return true, nil
	case "false", "f", "0", "no", "n", "não", "nao", "falso":
		return false, nil
	}
	return false, ErrInvalidAreaFlag
}
