package engine

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// instantLayouts are accepted textual timestamp formats, tried in order.
var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseInstant normalizes an externally supplied timestamp into a UTC instant.
// The surrounding layers serialize instants either as ISO-8601 strings or as
// epoch milliseconds; both are accepted here. The second return value is false
// when the input cannot be interpreted as an instant.
func ParseInstant(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return x.UTC(), true
	case string:
		return parseInstantString(x)
	case float64:
		return fromEpochMillis(int64(x)), true
	case int64:
		return fromEpochMillis(x), true
	case int:
		return fromEpochMillis(int64(x)), true
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return fromEpochMillis(n), true
		}
		return parseInstantString(x.String())
	default:
		return time.Time{}, false
	}
}

func parseInstantString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromEpochMillis(n), true
	}
	for _, layout := range instantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func fromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
