// Package timeline builds the chronological, date-banded index of all
// timestamped records.
package timeline

import (
	"fmt"
	"sort"

	"github.com/mapmedia/mapview/internal/model/core"
)

// EntryID formats the id of the n-th (0-based) timeline entry.
func EntryID(n int) string {
	return fmt.Sprintf("entry-%d", n+1)
}

// Index sorts timestamped records ascending. Ties keep normalized record
// order (Seq). Records without a timestamp are left out. An input without
// any timestamp yields an empty, non-nil timeline.
func Index(records []core.MarkerRecord) core.Timeline {
	eligible := make([]core.MarkerRecord, 0, len(records))
	for _, r := range records {
		if r.HasTimestamp() {
			eligible = append(eligible, r)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if !a.Timestamp.Equal(*b.Timestamp) {
			return a.Timestamp.Before(*b.Timestamp)
		}
		return a.Seq < b.Seq
	})

	tl := core.Timeline{
		Entries: make([]core.TimelineEntry, len(eligible)),
		Bands:   []core.DateBand{},
		Index:   make(map[string]string, len(eligible)),
	}
	for i, r := range eligible {
		ts := *r.Timestamp
		e := core.TimelineEntry{
			ID:        EntryID(i),
			RecordID:  r.ID,
			Timestamp: ts,
			Date:      ts.Format("2006-01-02"),
			Clock:     ts.Format("15:04:05"),
		}
		tl.Entries[i] = e
		tl.Index[e.ID] = r.ID
	}
	tl.Bands = bands(tl.Entries)
	return tl
}

// bands groups contiguous entries by date, and inside a date by clock time.
func bands(entries []core.TimelineEntry) []core.DateBand {
	out := []core.DateBand{}
	for i, e := range entries {
		if n := len(out); n == 0 || out[n-1].Date != e.Date {
			out = append(out, core.DateBand{Date: e.Date, Start: i})
		}
		b := &out[len(out)-1]
		b.End = i + 1
		if g := len(b.Groups); g == 0 || b.Groups[g-1].Clock != e.Clock {
			b.Groups = append(b.Groups, core.TimeGroup{Clock: e.Clock, Start: i})
		}
		b.Groups[len(b.Groups)-1].End = i + 1
	}
	return out
}
