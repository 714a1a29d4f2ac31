package booking

import (
	"fmt"
	"strings"
	"time"
)

// StartOfHour returns the start of the clock hour containing t, in t's location.
func StartOfHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
}

var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseInstant parses an ISO-8601 value. Values without an offset are read in loc.
func ParseInstant(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, formatError(fmt.Errorf("empty date"))
	}
	if loc == nil {
		loc = time.UTC
	}
	for i, layout := range instantLayouts {
		var (
			t   time.Time
			err error
		)
		if i == 0 {
			t, err = time.Parse(layout, raw)
		} else {
			t, err = time.ParseInLocation(layout, raw, loc)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, formatError(fmt.Errorf("unparseable date %q", raw))
}

// ParseDay parses a YYYY-MM-DD calendar day and returns its midnight in loc.
func ParseDay(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, formatError(err)
	}
	return t, nil
}
