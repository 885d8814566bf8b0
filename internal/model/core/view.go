package core

import "time"

// Stats summarises a build.
type Stats struct {
	Total           int          `json:"total"`
	ByKind          map[Kind]int `json:"byKind"`
	WithMedia       int          `json:"withMedia"`
	Rejected        int          `json:"rejected"`
	TimelineEntries int          `json:"timelineEntries"`
	Overlays        int          `json:"overlays"`
	Diagnostics     int          `json:"diagnostics"`
}

// View is everything the rendered document needs. It is immutable once built.
type View struct {
	BuildID      string            `json:"buildId"`
	GeneratedAt  time.Time         `json:"generatedAt"`
	Center       Position          `json:"center"`
	Records      []MarkerRecord    `json:"records"`
	Groups       []ClusterGroup    `json:"groups"`
	Timeline     Timeline          `json:"timeline"`
	Overlays     []AccuracyOverlay `json:"overlays"`
	Cluster      ClusterOptions    `json:"cluster"`
	MediaBaseURL string            `json:"mediaBaseUrl"`
	Timezone     string            `json:"timezone"` // zone of timestamps, dates and clocks
	Stats        Stats             `json:"stats"`

	index map[string]int
}

// Reindex rebuilds the id lookup. Call it after decoding a View from JSON.
func (v *View) Reindex() {
	v.index = make(map[string]int, len(v.Records))
	for i, r := range v.Records {
		v.index[r.ID] = i
	}
}

// Record returns the record with the given id. Without an index it falls
// back to a linear scan so a shared View is never mutated by lookups.
func (v *View) Record(id string) (MarkerRecord, bool) {
	if v.index == nil {
		for _, r := range v.Records {
			if r.ID == id {
				return r, true
			}
		}
		return MarkerRecord{}, false
	}
	i, ok := v.index[id]
	if !ok {
		return MarkerRecord{}, false
	}
	return v.Records[i], true
}
