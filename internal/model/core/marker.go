// internal/model/core/marker.go
package core

import "time"

// MarkerRecord is the unified record produced from either CSV schema.
// Downstream builders only ever see this type.
type MarkerRecord struct {
	ID     string `json:"id"`
	Seq    int    `json:"seq"` // normalized order, used as the timeline tie-breaker
	Source Source `json:"source"`
	Line   int    `json:"line"` // 1-based CSV line, header is line 1

	Position  Position   `json:"position"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Kind      Kind       `json:"kind"`

	Title       string `json:"title"`
	Description string `json:"description"`
	MediaRef    string `json:"mediaRef,omitempty"`

	// AccuracyMeters is the parsed accuracy cell. It is kept even when
	// negative so the overlay builder can report it.
	AccuracyMeters *float64 `json:"accuracyMeters,omitempty"`
	// AccuracyText holds the raw cell when it was present but not numeric.
	AccuracyText string `json:"-"`

	Color   string   `json:"color"`
	Icon    string   `json:"icon"`
	Details []Detail `json:"details,omitempty"`
}

// HasTimestamp reports whether the record is timeline-eligible.
func (r MarkerRecord) HasTimestamp() bool {
	return r.Timestamp != nil
}

// HasAccuracy reports whether the source row carried an accuracy cell at all.
func (r MarkerRecord) HasAccuracy() bool {
	return r.AccuracyMeters != nil || r.AccuracyText != ""
}
