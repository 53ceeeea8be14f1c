package ical

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // TZID values are resolved on hosts without a zoneinfo database.
)

const (
	layoutDate     = "20060102"
	layoutUTC      = "20060102T150405Z"
	layoutDateTime = "20060102T150405"
)

// ParseTime converts a DTSTART/DTEND token into an instant in canonical.
//
// Three shapes are accepted, tried in order:
//
//   - YYYYMMDD: midnight in tzid (or canonical when empty)
//   - YYYYMMDDTHHMMSSZ: a UTC instant
//   - YYYYMMDDTHHMMSS: wall time in tzid (or canonical when empty)
//
// An unknown tzid falls back to canonical.
func ParseTime(value, tzid string, canonical *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	zone := resolveZone(tzid, canonical)

	if isDateOnly(value) {
		t, err := time.ParseInLocation(layoutDate, value, zone)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
		}
		return t.In(canonical), nil
	}

	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse(layoutUTC, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse utc time %q: %w", value, err)
		}
		return t.In(canonical), nil
	}

	t, err := time.ParseInLocation(layoutDateTime, value, zone)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse local time %q: %w", value, err)
	}
	return t.In(canonical), nil
}

func isDateOnly(v string) bool {
	if len(v) != len(layoutDate) {
		return false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	return true
}

func resolveZone(tzid string, canonical *time.Location) *time.Location {
	tzid = strings.Trim(strings.TrimSpace(tzid), `"`)
	if tzid == "" {
		return canonical
	}
	loc, err := time.LoadLocation(tzid)
	if err != nil {
		return canonical
	}
	return loc
}
