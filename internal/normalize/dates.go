package normalize

import (
	"strings"
	"time"
)

// Timestamp layouts seen in device job-log exports, most common first.
var timeFormats = []string{
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006 15:04:05",
	"1/2/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"02.01.2006 15:04:05",
	"2006/01/02",
	"2006-01-02",
}

// ParseTimestamp attempts to parse a device timestamp in multiple formats.
// Values without a zone are read as UTC. Returns nil if the input is empty
// or unparseable.
func ParseTimestamp(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
