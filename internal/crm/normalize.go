package crm

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// isoLayout matches JavaScript's Date.prototype.toISOString
const isoLayout = "2006-01-02T15:04:05.000Z"

// SafeString converts a raw value to a trimmed string. Absent values become "".
func SafeString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// SafeArray converts a raw value to a list of strings. A single value
// becomes a one-element list; empty entries are dropped and absent values
// become an empty, non-nil list.
func SafeArray(value interface{}) []string {
	result := []string{}

	items, ok := value.([]interface{})
	if !ok {
		items = []interface{}{value}
	}

	for _, item := range items {
		if isFalsy(item) {
			continue
		}
		if s := SafeString(item); s != "" {
			result = append(result, s)
		}
	}
	return result
}

func isFalsy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	}
	return false
}

// ToISODate converts a raw timestamp to an ISO 8601 UTC string. Missing or
// unparseable values become "".
func ToISODate(value interface{}) string {
	t, ok := parseTimestamp(value)
	if !ok {
		return ""
	}
	return t.UTC().Format(isoLayout)
}

func parseTimestamp(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case float64:
		return time.UnixMilli(int64(v)), v != 0
	case int64:
		return time.UnixMilli(v), v != 0
	case json.Number:
		ms, err := v.Int64()
		return time.UnixMilli(ms), err == nil && ms != 0
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil && ms != 0 {
			return time.UnixMilli(ms), true
		}
	}
	return time.Time{}, false
}
