package core

import "time"

// TimelineEntry points from a timestamp to a marker record.
type TimelineEntry struct {
	ID        string    `json:"id"`
	RecordID  string    `json:"recordId"`
	Timestamp time.Time `json:"timestamp"`
	Date      string    `json:"date"` // 2006-01-02
	Clock     string    `json:"time"` // 15:04:05
}

// TimeGroup is a run of entries inside a DateBand sharing the same clock time.
type TimeGroup struct {
	Clock string `json:"time"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// DateBand is a contiguous run of entries sharing a calendar date.
// Start is inclusive, End exclusive, both index Timeline.Entries.
type DateBand struct {
	Date   string      `json:"date"`
	Start  int         `json:"start"`
	End    int         `json:"end"`
	Groups []TimeGroup `json:"groups"`
}

// Timeline is the ordered, date-banded index of all timestamped records.
type Timeline struct {
	Entries []TimelineEntry   `json:"entries"`
	Bands   []DateBand        `json:"bands"`
	Index   map[string]string `json:"index"` // entry id -> record id
}

// RecordFor resolves a timeline entry id to its record id.
func (t Timeline) RecordFor(entryID string) (string, bool) {
	id, ok := t.Index[entryID]
	return id, ok
}
