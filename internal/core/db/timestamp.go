package db

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp scans a zone-less store date-time. The store keeps wall-clock
// values in the configured zone; drivers disagree on how they surface them
// (time.Time in UTC, text, or bytes), so only the wall clock is kept and In
// attaches the real zone.
type Timestamp struct {
	wall  time.Time
	Valid bool
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02",
}

// Scan implements sql.Scanner.
func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = Timestamp{}
		return nil
	case time.Time:
		*t = Timestamp{wall: wallClock(v), Valid: true}
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}

func (t *Timestamp) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp{wall: wallClock(parsed), Valid: true}
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as a timestamp", s)
}

// In returns the timestamp interpreted in loc.
func (t Timestamp) In(loc *time.Location) (time.Time, bool) {
	if !t.Valid {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	w := t.wall
	return time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), loc), true
}

func wallClock(v time.Time) time.Time {
	return time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), time.UTC)
}
