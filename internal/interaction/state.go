// Package interaction is the viewer's run-time contract: a serializable
// state of filters, search and timeline selection, and pure functions that
// derive marker, group and timeline visibility from it.
package interaction

import (
	"errors"
	"time"

	"github.com/mapmedia/mapview/internal/model/core"
)

var (
	// ErrNavigationMiss is returned when a selected timeline entry does not
	// resolve to a record. The state is left unchanged.
	ErrNavigationMiss = errors.New("timeline entry does not resolve to a record")
	// ErrInvalidTimeRange is returned when a range starts after it ends.
	ErrInvalidTimeRange = errors.New("time range start is after end")
)

// TimeRange bounds record timestamps. Either end may be open. Both bounds
// are inclusive.
type TimeRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// Active reports whether at least one bound is set.
func (r TimeRange) Active() bool {
	return r.Start != nil || r.End != nil
}

// Valid reports whether the bounds are ordered.
func (r TimeRange) Valid() bool {
	return r.Start == nil || r.End == nil || !r.Start.After(*r.End)
}

// Contains reports whether t lies within the bounds.
func (r TimeRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// State is everything the viewer's visibility depends on. It is a plain
// value: Apply returns a new State and never modifies its input.
type State struct {
	// ActiveKinds is kept in core.AllKinds order without duplicates.
	ActiveKinds []core.Kind `json:"activeKinds"`
	TimeRange   TimeRange   `json:"timeRange"`
	SearchQuery string      `json:"searchQuery"`
	// Selection is the selected timeline entry id, if any.
	Selection string `json:"selection,omitempty"`
}

// DefaultState has every kind enabled, no range, no query and no selection.
func DefaultState() State {
	return State{ActiveKinds: append([]core.Kind(nil), core.AllKinds...)}
}

// KindActive reports whether k is enabled.
func (s State) KindActive(k core.Kind) bool {
	for _, a := range s.ActiveKinds {
		if a == k {
			return true
		}
	}
	return false
}

// withKind returns a copy of the kind list with k switched on or off.
func (s State) withKind(k core.Kind, on bool) []core.Kind {
	return normalizeKinds(s.ActiveKinds, k, on)
}

// normalizeKinds returns kinds (plus or minus extra) in AllKinds order.
// Unknown kinds are dropped.
func normalizeKinds(kinds []core.Kind, extra core.Kind, on bool) []core.Kind {
	set := make(map[core.Kind]bool, len(kinds)+1)
	for _, k := range kinds {
		set[k] = true
	}
	if extra != "" {
		set[extra] = on
	}
	out := make([]core.Kind, 0, len(set))
	for _, k := range core.AllKinds {
		if set[k] {
			out = append(out, k)
		}
	}
	return out
}

// Normalize returns s with its kind list canonicalized.
func (s State) Normalize() State {
	s.ActiveKinds = normalizeKinds(s.ActiveKinds, "", false)
	return s
}
