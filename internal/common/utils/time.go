package utils

import (
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the calendar-date form accepted for filter bounds
const DateLayout = "2006-01-02"

// ParseDuration parses a duration string with support for additional time units.
//
// Extends the standard Go time.ParseDuration with support for days ("d") and
// weeks ("w") units. Falls back to standard parsing for all other formats.
//
// Examples:
//
//	ParseDuration("1d")    // 24 hours
//	ParseDuration("2w")    // 336 hours (14 days)
//	ParseDuration("1h30m") // 1.5 hours (standard Go format)
func ParseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	var days int
	if n, err := fmt.Sscanf(s, "%dd", &days); err == nil && n == 1 {
		return time.Duration(days) * 24 * time.Hour, nil
	}

	var weeks int
	if n, err := fmt.Sscanf(s, "%dw", &weeks); err == nil && n == 1 {
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return 0, fmt.Errorf("invalid duration: %s", s)
}

// ParseDateBound parses a filter bound given either as a calendar date
// (midnight UTC) or as an RFC 3339 timestamp.
func ParseDateBound(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date: %s", s)
}

// EpochMillis formats t as milliseconds since the Unix epoch
func EpochMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
