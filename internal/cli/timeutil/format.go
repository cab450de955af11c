// Package timeutil formats timestamps and durations for CLI tables.
package timeutil

import (
	"fmt"
	"time"
)

// LocalTimeFormat is the layout of timestamps in tables.
const LocalTimeFormat = "2006-01-02 15:04:05"

// Local renders t in the local zone, or "-" for the zero time.
func Local(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(LocalTimeFormat)
}

// LocalRFC3339 renders an RFC 3339 timestamp in the local zone. Input that
// does not parse is returned as is.
func LocalRFC3339(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return Local(t)
}

// Duration renders d at second precision, dropping seconds once it spans
// days: "42s", "5m 3s", "2h 0m 9s", "3d 4h 5m".
func Duration(d time.Duration) string {
	d = d.Truncate(time.Second)
	days := int(d / (24 * time.Hour))
	h := int(d/time.Hour) % 24
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, h, m)
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
