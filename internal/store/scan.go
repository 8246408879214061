package store

import (
	"fmt"
	"time"
)

// timeLayouts are the textual forms SQLite drivers hand back for
// datetime columns whose declared type is lost (joins, aggregates).
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// scanTime adapts a time destination to both native and textual values.
type scanTime struct {
	dst *time.Time
}

func (s scanTime) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*s.dst = time.Time{}
	case time.Time:
		*s.dst = x
	case string:
		return s.parse(x)
	case []byte:
		return s.parse(string(x))
	default:
		return fmt.Errorf("scan time: unsupported type %T", v)
	}
	return nil
}

func (s scanTime) parse(v string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.dst = t
			return nil
		}
	}
	return fmt.Errorf("scan time: unrecognized format %q", v)
}
