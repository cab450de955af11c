package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                     "0s",
		42*time.Second + 300*time.Millisecond: "42s",
		5*time.Minute + 3*time.Second:         "5m 3s",
		2*time.Hour + 9*time.Second:           "2h 0m 9s",
		76*time.Hour + 5*time.Minute + time.Second: "3d 4h 5m",
	}
	for d, want := range cases {
		assert.Equal(t, want, Duration(d), d.String())
	}
}

func TestLocal(t *testing.T) {
	assert.Equal(t, "-", Local(time.Time{}))

	ts := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	assert.Equal(t, ts.Local().Format(LocalTimeFormat), Local(ts))
	assert.Equal(t, Local(ts), LocalRFC3339("2026-03-01T12:30:00Z"))
	assert.Equal(t, "yesterday", LocalRFC3339("yesterday"))
}
