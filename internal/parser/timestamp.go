package parser

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted for the media date and time columns.
var (
	dateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006", "1/2/2006"}
	timeLayouts = []string{"15:04:05", "15:04", "3:04:05 PM", "3:04 PM"}
)

// eventLayouts are the combined layouts seen in event exports.
var eventLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 3:04 PM",
	"01/02/2006 03:04:05 PM",
	"01/02/2006 03:04 PM",
}

// parseDateTime combines separate date and time cells. A blank time means
// midnight.
func parseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := parseFirst(strings.TrimSpace(date), dateLayouts, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", date)
	}
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return d, nil
	}
	c, err := parseFirst(strings.ToUpper(clock), timeLayouts, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q", clock)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc), nil
}

// parseCombined parses a single date-time cell. A cell with its own offset
// is converted into loc so dates and clocks read the same for every row.
func parseCombined(s string, loc *time.Location) (time.Time, error) {
	t, err := parseFirst(strings.TrimSpace(s), eventLayouts, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q", s)
	}
	return t.In(loc), nil
}

func parseFirst(s string, layouts []string, loc *time.Location) (time.Time, error) {
	var lastErr error
	for _, l := range layouts {
		t, err := time.ParseInLocation(l, s, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
