package interaction

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapmedia/mapview/internal/cluster"
	"github.com/mapmedia/mapview/internal/model/core"
	"github.com/mapmedia/mapview/internal/timeline"
)

func ts(s string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func testView() *core.View {
	recs := []core.MarkerRecord{
		{ID: "img-1", Seq: 0, Kind: core.KindImage, Title: "Photo at Park", Timestamp: ts("2024-05-01 09:00"), Position: core.Position{Lat: 1, Lon: 1}},
		{ID: "img-2", Seq: 1, Kind: core.KindImage, Title: "Ankle Monitor Check", Timestamp: ts("2024-05-02 10:00"), Position: core.Position{Lat: 2, Lon: 2}},
		{ID: "vid-1", Seq: 2, Kind: core.KindVideo, Title: "Clip", Description: "no date on this one", Position: core.Position{Lat: 3, Lon: 3}},
		{ID: "ev-a", Seq: 3, Kind: core.KindEventA, Title: "ATT Location", Description: "Canal St", Timestamp: ts("2024-05-01 08:00"), Position: core.Position{Lat: 4, Lon: 4}},
		{ID: "ev-b", Seq: 4, Kind: core.KindEventB, Title: "Ankle Monitor", Timestamp: ts("2024-05-03 07:30"), Position: core.Position{Lat: 5, Lon: 5}},
	}
	v := &core.View{
		Records:  recs,
		Groups:   cluster.Assign(recs),
		Timeline: timeline.Index(recs),
	}
	v.Reindex()
	return v
}

func newTestController() *Controller {
	return NewController(testView(), Policy{UndatedInRange: true})
}

// entryFor finds the timeline entry of a record.
func entryFor(t *testing.T, c *Controller, recordID string) string {
	t.Helper()
	for _, e := range c.view.Timeline.Entries {
		if e.RecordID == recordID {
			return e.ID
		}
	}
	t.Fatalf("no entry for %s", recordID)
	return ""
}

func TestVisible_DefaultShowsAll(t *testing.T) {
	c := newTestController()
	assert.Equal(t, []string{"img-1", "img-2", "vid-1", "ev-a", "ev-b"}, c.Visible(DefaultState()))
}

func TestVisible_KindFilterMatchesGroup(t *testing.T) {
	c := newTestController()
	s := State{ActiveKinds: []core.Kind{core.KindImage}}

	var images []string
	for _, g := range c.view.Groups {
		if g.Name == cluster.GroupImages {
			images = g.RecordIDs
		}
	}
	assert.Equal(t, images, c.Visible(s))
}

func TestVisible_Search(t *testing.T) {
	c := newTestController()

	tests := []struct {
		name  string
		query string
		kinds []core.Kind
		want  []string
	}{
		{"case-insensitive title", "monitor", []core.Kind{core.KindImage}, []string{"img-2"}},
		{"across kinds", "MONITOR", core.AllKinds, []string{"img-2", "ev-b"}},
		{"description", "canal", core.AllKinds, []string{"ev-a"}},
		{"whitespace only is empty", "  ", core.AllKinds, []string{"img-1", "img-2", "vid-1", "ev-a", "ev-b"}},
		{"no match", "zebra", core.AllKinds, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{ActiveKinds: tt.kinds, SearchQuery: tt.query}
			assert.Equal(t, tt.want, c.Visible(s))
		})
	}
}

func TestVisible_TimeRange(t *testing.T) {
	view := testView()
	tests := []struct {
		name   string
		policy Policy
		rng    TimeRange
		want   []string
	}{
		{
			name:   "inclusive bounds keep undated by default",
			policy: Policy{UndatedInRange: true},
			rng:    TimeRange{Start: ts("2024-05-01 09:00"), End: ts("2024-05-02 10:00")},
			want:   []string{"img-1", "img-2", "vid-1"},
		},
		{
			name:   "undated excluded by policy",
			policy: Policy{UndatedInRange: false},
			rng:    TimeRange{Start: ts("2024-05-01 09:00"), End: ts("2024-05-02 10:00")},
			want:   []string{"img-1", "img-2"},
		},
		{
			name:   "open end",
			policy: Policy{UndatedInRange: false},
			rng:    TimeRange{Start: ts("2024-05-02 00:00")},
			want:   []string{"img-2", "ev-b"},
		},
		{
			name:   "open start",
			policy: Policy{UndatedInRange: false},
			rng:    TimeRange{End: ts("2024-05-01 08:00")},
			want:   []string{"ev-a"},
		},
		{
			name:   "inactive range ignores policy",
			policy: Policy{UndatedInRange: false},
			want:   []string{"img-1", "img-2", "vid-1", "ev-a", "ev-b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(view, tt.policy)
			s := DefaultState()
			s.TimeRange = tt.rng
			assert.Equal(t, tt.want, c.Visible(s))
		})
	}
}

func TestVisible_PureAndSelectionIndependent(t *testing.T) {
	c := newTestController()
	s := State{ActiveKinds: []core.Kind{core.KindImage, core.KindEventB}, SearchQuery: "ankle"}

	first := c.Visible(s)
	assert.Equal(t, first, c.Visible(s))

	s.Selection = entryFor(t, c, "ev-a")
	assert.Equal(t, first, c.Visible(s))
}

func TestIsVisible(t *testing.T) {
	c := newTestController()
	s := State{ActiveKinds: []core.Kind{core.KindVideo}}

	assert.True(t, c.IsVisible(s, "vid-1"))
	assert.False(t, c.IsVisible(s, "img-1"))
	assert.False(t, c.IsVisible(s, "missing"))
}

func TestEvaluate_OmitsEmptyGroups(t *testing.T) {
	c := newTestController()
	s := DefaultState()
	s.SearchQuery = "monitor"

	groups := c.Evaluate(s).Groups

	require.Len(t, groups, 2)
	assert.Equal(t, "images", groups[0].Name)
	assert.Equal(t, []string{"img-2"}, groups[0].RecordIDs)
	assert.Equal(t, "event-B", groups[1].Name)
	assert.Equal(t, []string{"ev-b"}, groups[1].RecordIDs)
}

func TestEvaluate(t *testing.T) {
	c := newTestController()
	s := State{ActiveKinds: []core.Kind{core.KindImage, core.KindEventA}}

	res := c.Evaluate(s)

	assert.Equal(t, 3, res.VisibleCount)
	assert.Equal(t, 5, res.Total)
	assert.Equal(t, []string{"img-1", "img-2", "ev-a"}, res.Visible)
	require.Len(t, res.Groups, 2)

	// 2024-05-03 holds only ev-b, which is filtered out
	require.Len(t, res.Timeline, 2)
	assert.Equal(t, "2024-05-01", res.Timeline[0].Date)
	require.Len(t, res.Timeline[0].Groups, 2)
	assert.Equal(t, "08:00:00", res.Timeline[0].Groups[0].Clock)
	assert.Equal(t, []string{entryFor(t, c, "ev-a")}, res.Timeline[0].Groups[0].EntryIDs)
	assert.Equal(t, "2024-05-02", res.Timeline[1].Date)
}

func TestApply_SelectHiddenRecordStillNavigates(t *testing.T) {
	c := newTestController()
	s := State{ActiveKinds: []core.Kind{core.KindImage}}
	before := c.Visible(s)
	entry := entryFor(t, c, "ev-a")

	next, nav, err := c.Apply(s, SelectEntry(entry))
	require.NoError(t, err)
	require.NotNil(t, nav)

	assert.Equal(t, "ev-a", nav.RecordID)
	assert.Equal(t, core.Position{Lat: 4, Lon: 4}, nav.Position)
	assert.True(t, nav.OpenPopup)
	assert.True(t, nav.Hidden)
	assert.Equal(t, entry, next.Selection)
	assert.Equal(t, before, c.Visible(next))
	assert.NotContains(t, c.Visible(next), "ev-a")
}

func TestApply_NavigationMiss(t *testing.T) {
	c := newTestController()
	s := DefaultState()
	s.Selection = entryFor(t, c, "img-1")

	next, nav, err := c.Apply(s, SelectEntry("entry-404"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNavigationMiss))
	assert.Nil(t, nav)
	assert.Equal(t, s, next)
}

func TestApply_NavigationMissForRemovedRecord(t *testing.T) {
	view := testView()
	view.Timeline.Index["entry-x"] = "gone"
	c := NewController(view, Policy{})

	_, _, err := c.Apply(DefaultState(), SelectEntry("entry-x"))
	assert.True(t, errors.Is(err, ErrNavigationMiss))
}

func TestApply_Actions(t *testing.T) {
	c := newTestController()

	tests := []struct {
		name   string
		from    State
		action  Action
		check   func(t *testing.T, s State)
		wantErr error
	}{
		{
			name:   "set kind off",
			from:   DefaultState(),
			action: SetKind(core.KindVideo, false),
			check: func(t *testing.T, s State) {
				assert.Equal(t, []core.Kind{core.KindImage, core.KindEventA, core.KindEventB, core.KindOther}, s.ActiveKinds)
			},
		},
		{
			name:   "toggle kind back on keeps canonical order",
			from:   State{ActiveKinds: []core.Kind{core.KindOther}},
			action: ToggleKind(core.KindImage),
			check: func(t *testing.T, s State) {
				assert.Equal(t, []core.Kind{core.KindImage, core.KindOther}, s.ActiveKinds)
			},
		},
		{
			name:   "set kinds drops unknown and duplicates",
			from:   DefaultState(),
			action: SetKinds(core.KindEventB, "bogus", core.KindEventB, core.KindImage),
			check: func(t *testing.T, s State) {
				assert.Equal(t, []core.Kind{core.KindImage, core.KindEventB}, s.ActiveKinds)
			},
		},
		{
			name:    "inverted range is rejected",
			from:    DefaultState(),
			action:  SetTimeRange(TimeRange{Start: ts("2024-05-02 00:00"), End: ts("2024-05-01 00:00")}),
			wantErr: ErrInvalidTimeRange,
		},
		{
			name:   "clear range",
			from:   State{TimeRange: TimeRange{Start: ts("2024-05-02 00:00")}},
			action: ClearTimeRange(),
			check: func(t *testing.T, s State) {
				assert.False(t, s.TimeRange.Active())
			},
		},
		{
			name:   "clear selection",
			from:   State{Selection: "entry-1"},
			action: ClearSelection(),
			check: func(t *testing.T, s State) {
				assert.Empty(t, s.Selection)
			},
		},
		{
			name:   "reset",
			from:   State{SearchQuery: "x", Selection: "entry-1"},
			action: Reset(),
			check: func(t *testing.T, s State) {
				assert.Equal(t, DefaultState(), s)
			},
		},
		{
			name:    "unknown action",
			from:    DefaultState(),
			action:  Action{Type: "dance"},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, err := c.Apply(tt.from, tt.action)
			if tt.check == nil {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.True(t, errors.Is(err, tt.wantErr))
				}
				assert.Equal(t, tt.from, next)
				return
			}
			require.NoError(t, err)
			tt.check(t, next)
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	c := newTestController()
	s := DefaultState()
	kinds := append([]core.Kind(nil), s.ActiveKinds...)

	_, _, err := c.Apply(s, SetKind(core.KindImage, false))
	require.NoError(t, err)

	assert.Equal(t, kinds, s.ActiveKinds)
}
