package interaction

import (
	"fmt"
	"time"
)

// WallLayout is the wall-clock form shared by the document's range inputs
// and its per-record time keys. Both are read in the view's time zone, so
// lexical order on these strings is time order.
const WallLayout = "2006-01-02T15:04:05"

// datetime-local inputs drop the seconds when they are zero.
var wallLayouts = []string{WallLayout, "2006-01-02T15:04"}

// WallClock formats t as wall-clock time in loc.
func WallClock(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(WallLayout)
}

// ParseWall reads a wall-clock value in loc. An empty value is an open
// bound and yields nil.
func ParseWall(s string, loc *time.Location) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, l := range wallLayouts {
		if t, err := time.ParseInLocation(l, s, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("bad wall-clock time %q, want %s", s, WallLayout)
}

// WallRange builds the range the document applies for two range inputs.
func WallRange(start, end string, loc *time.Location) (TimeRange, error) {
	var (
		r   TimeRange
		err error
	)
	if r.Start, err = ParseWall(start, loc); err != nil {
		return TimeRange{}, err
	}
	if r.End, err = ParseWall(end, loc); err != nil {
		return TimeRange{}, err
	}
	if !r.Valid() {
		return TimeRange{}, fmt.Errorf("%w: %s > %s", ErrInvalidTimeRange, start, end)
	}
	return r, nil
}

// LoadZone resolves a view's zone name. An empty name is UTC.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}
