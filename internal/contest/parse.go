package contest

import (
	"encoding/json"
	"strings"
	"time"
)

// Layouts attempted for string timestamps, in order. SCPC returns ISO-8601
// with fractional seconds and a compact numeric offset ("+0000"); some
// records carry a colon-separated offset or a literal Z instead.
var timeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

// Layouts for offset-less timestamps, interpreted in the server's local
// zone the way the judge frontend does.
var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
}

// ParseTime coerces an upstream timestamp of any JSON-decoded type into
// epoch seconds. Numbers are taken as epoch seconds already; strings go
// through the ISO-8601 layouts above. Unknown or unparseable values collapse
// to 0, which downstream classification treats as "unknown" and excludes.
// ParseTime never panics.
func ParseTime(v any) int64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return int64(t)
	case int:
		return int64(t)
	case int64:
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return int64(f)
		}
		return 0
	case string:
		return parseTimeString(t)
	}
	return 0
}

func parseTimeString(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.Unix()
		}
	}
	// Rewrite a trailing literal Z to an explicit UTC offset and retry.
	// Covers variants the layouts above miss.
	if strings.HasSuffix(s, "Z") {
		z := strings.TrimSuffix(s, "Z") + "+00:00"
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, z); err == nil {
				return ts.Unix()
			}
		}
	}
	// Offset-less ISO strings are naive local wall-clock time.
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts.Unix()
		}
	}
	return 0
}
