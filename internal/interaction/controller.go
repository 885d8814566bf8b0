package interaction

import (
	"fmt"
	"strings"

	"github.com/mapmedia/mapview/internal/model/core"
)

// Policy holds the decisions the visibility rule leaves open.
type Policy struct {
	// UndatedInRange keeps records without a timestamp visible while a time
	// range is active. With no active range undated records are always
	// inside it.
	UndatedInRange bool `json:"undatedInRange"`
}

// Navigation is the one-shot side effect of a timeline selection: center
// the map on the record and open its popup.
type Navigation struct {
	EntryID   string        `json:"entryId"`
	RecordID  string        `json:"recordId"`
	Position  core.Position `json:"position"`
	OpenPopup bool          `json:"openPopup"`
	// Hidden is set when the record is filtered out. Navigation still
	// happens; visibility is unaffected.
	Hidden bool `json:"hidden"`
}

// Controller evaluates states against one built view. It holds no state
// of its own besides precomputed lookups, so it is safe for concurrent use.
type Controller struct {
	view   *core.View
	policy Policy

	index map[string]int // record id -> index in view.Records
	text  []string       // lowercased title + "\n" + description
}

// NewController prepares a controller for view. The view must not be
// modified afterwards.
func NewController(view *core.View, policy Policy) *Controller {
	c := &Controller{
		view:   view,
		policy: policy,
		index:  make(map[string]int, len(view.Records)),
		text:   make([]string, len(view.Records)),
	}
	for i, r := range view.Records {
		c.index[r.ID] = i
		c.text[i] = strings.ToLower(r.Title) + "\n" + strings.ToLower(r.Description)
	}
	return c
}

// Policy returns the controller's policy.
func (c *Controller) Policy() Policy {
	return c.policy
}

// Total is the number of records in the view.
func (c *Controller) Total() int {
	return len(c.view.Records)
}

// visibleAt applies the visibility rule to the i-th record.
func (c *Controller) visibleAt(s State, kinds map[core.Kind]bool, query string, i int) bool {
	r := c.view.Records[i]
	if !kinds[r.Kind] {
		return false
	}
	if s.TimeRange.Active() {
		if r.Timestamp == nil {
			if !c.policy.UndatedInRange {
				return false
			}
		} else if !s.TimeRange.Contains(*r.Timestamp) {
			return false
		}
	}
	if query != "" && !strings.Contains(c.text[i], query) {
		return false
	}
	return true
}

// prepare extracts the lookup forms of the state's filters.
func prepare(s State) (map[core.Kind]bool, string) {
	kinds := make(map[core.Kind]bool, len(s.ActiveKinds))
	for _, k := range s.ActiveKinds {
		kinds[k] = true
	}
	return kinds, strings.ToLower(strings.TrimSpace(s.SearchQuery))
}

// Visible returns the ids of the records shown under s, in record order.
// A record is shown iff its kind is active, it is inside the time range
// (or the range is inactive), and it matches the search query. Selection
// plays no part.
func (c *Controller) Visible(s State) []string {
	kinds, query := prepare(s)
	out := []string{}
	for i, r := range c.view.Records {
		if c.visibleAt(s, kinds, query, i) {
			out = append(out, r.ID)
		}
	}
	return out
}

// IsVisible reports whether one record is shown under s.
func (c *Controller) IsVisible(s State, recordID string) bool {
	i, ok := c.index[recordID]
	if !ok {
		return false
	}
	kinds, query := prepare(s)
	return c.visibleAt(s, kinds, query, i)
}

// GroupView is a cluster group restricted to its visible members.
type GroupView struct {
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	Kind      core.Kind `json:"kind"`
	RecordIDs []string  `json:"recordIds"`
}

// TimeGroupView is a clock-time group restricted to visible entries.
type TimeGroupView struct {
	Clock    string   `json:"time"`
	EntryIDs []string `json:"entryIds"`
}

// BandView is a date band restricted to visible entries.
type BandView struct {
	Date   string          `json:"date"`
	Groups []TimeGroupView `json:"groups"`
}

// Result is the full derived view state for a State.
type Result struct {
	State        State       `json:"state"`
	Visible      []string    `json:"visible"`
	VisibleCount int         `json:"visibleCount"`
	Total        int         `json:"total"`
	Groups       []GroupView `json:"groups"`
	Timeline     []BandView  `json:"timeline"`
}

// Evaluate derives marker, group and timeline visibility for s. Groups,
// bands and time groups without a visible member are omitted.
func (c *Controller) Evaluate(s State) Result {
	visible := c.Visible(s)
	set := make(map[string]bool, len(visible))
	for _, id := range visible {
		set[id] = true
	}
	return Result{
		State:        s,
		Visible:      visible,
		VisibleCount: len(visible),
		Total:        c.Total(),
		Groups:       c.groups(set),
		Timeline:     c.bands(set),
	}
}

func (c *Controller) groups(set map[string]bool) []GroupView {
	out := []GroupView{}
	for _, g := range c.view.Groups {
		var ids []string
		for _, id := range g.RecordIDs {
			if set[id] {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		out = append(out, GroupView{Name: g.Name, Label: g.Label, Kind: g.Kind, RecordIDs: ids})
	}
	return out
}

func (c *Controller) bands(set map[string]bool) []BandView {
	entries := c.view.Timeline.Entries
	out := []BandView{}
	for _, b := range c.view.Timeline.Bands {
		var groups []TimeGroupView
		for _, g := range b.Groups {
			var ids []string
			for _, e := range entries[g.Start:g.End] {
				if set[e.RecordID] {
					ids = append(ids, e.ID)
				}
			}
			if len(ids) > 0 {
				groups = append(groups, TimeGroupView{Clock: g.Clock, EntryIDs: ids})
			}
		}
		if len(groups) > 0 {
			out = append(out, BandView{Date: b.Date, Groups: groups})
		}
	}
	return out
}

// Navigate resolves a timeline entry to its navigation target under s.
func (c *Controller) Navigate(s State, entryID string) (*Navigation, error) {
	recordID, ok := c.view.Timeline.RecordFor(entryID)
	if !ok {
		return nil, fmt.Errorf("entry %q: %w", entryID, ErrNavigationMiss)
	}
	i, ok := c.index[recordID]
	if !ok {
		return nil, fmt.Errorf("entry %q record %q: %w", entryID, recordID, ErrNavigationMiss)
	}
	return &Navigation{
		EntryID:   entryID,
		RecordID:  recordID,
		Position:  c.view.Records[i].Position,
		OpenPopup: true,
		Hidden:    !c.IsVisible(s, recordID),
	}, nil
}

// Apply performs one action on s and returns the resulting state. On error
// the returned state equals s. A selection returns its navigation.
func (c *Controller) Apply(s State, a Action) (State, *Navigation, error) {
	next := s
	next.ActiveKinds = append([]core.Kind(nil), s.ActiveKinds...)

	switch a.Type {
	case ActionSetKind:
		next.ActiveKinds = s.withKind(a.Kind, a.On)
	case ActionToggleKind:
		next.ActiveKinds = s.withKind(a.Kind, !s.KindActive(a.Kind))
	case ActionSetKinds:
		next.ActiveKinds = normalizeKinds(a.Kinds, "", false)
	case ActionSetTimeRange:
		if !a.Range.Valid() {
			return s, nil, fmt.Errorf("%w: %s > %s", ErrInvalidTimeRange, a.Range.Start, a.Range.End)
		}
		next.TimeRange = a.Range
	case ActionClearTimeRange:
		next.TimeRange = TimeRange{}
	case ActionSetSearch:
		next.SearchQuery = a.Query
	case ActionSelectEntry:
		nav, err := c.Navigate(s, a.EntryID)
		if err != nil {
			return s, nil, err
		}
		next.Selection = a.EntryID
		return next, nav, nil
	case ActionClearSelection:
		next.Selection = ""
	case ActionReset:
		next = DefaultState()
	default:
		return s, nil, fmt.Errorf("unknown action type: %q", a.Type)
	}
	return next, nil, nil
}
