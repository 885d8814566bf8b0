package interaction

import "github.com/mapmedia/mapview/internal/model/core"

// ActionType names a user action.
type ActionType string

const (
	ActionSetKind        ActionType = "setKind"
	ActionToggleKind     ActionType = "toggleKind"
	ActionSetKinds       ActionType = "setKinds"
	ActionSetTimeRange   ActionType = "setTimeRange"
	ActionClearTimeRange ActionType = "clearTimeRange"
	ActionSetSearch      ActionType = "setSearch"
	ActionSelectEntry    ActionType = "selectEntry"
	ActionClearSelection ActionType = "clearSelection"
	ActionReset          ActionType = "reset"
)

// Action is one discrete user input. Only the fields relevant to Type are
// read.
type Action struct {
	Type    ActionType  `json:"type"`
	Kind    core.Kind   `json:"kind,omitempty"`
	On      bool        `json:"on,omitempty"`
	Kinds   []core.Kind `json:"kinds,omitempty"`
	Range   TimeRange   `json:"range"`
	Query   string      `json:"query,omitempty"`
	EntryID string      `json:"entryId,omitempty"`
}

// SetKind enables or disables one kind.
func SetKind(k core.Kind, on bool) Action {
	return Action{Type: ActionSetKind, Kind: k, On: on}
}

// ToggleKind flips one kind.
func ToggleKind(k core.Kind) Action {
	return Action{Type: ActionToggleKind, Kind: k}
}

// SetKinds replaces the enabled kinds.
func SetKinds(kinds ...core.Kind) Action {
	return Action{Type: ActionSetKinds, Kinds: kinds}
}

// SetTimeRange replaces the time range.
func SetTimeRange(r TimeRange) Action {
	return Action{Type: ActionSetTimeRange, Range: r}
}

// ClearTimeRange deactivates the time range.
func ClearTimeRange() Action {
	return Action{Type: ActionClearTimeRange}
}

// SetSearch replaces the search query.
func SetSearch(q string) Action {
	return Action{Type: ActionSetSearch, Query: q}
}

// SelectEntry is a timeline click.
func SelectEntry(entryID string) Action {
	return Action{Type: ActionSelectEntry, EntryID: entryID}
}

// ClearSelection drops the timeline selection.
func ClearSelection() Action {
	return Action{Type: ActionClearSelection}
}

// Reset restores DefaultState.
func Reset() Action {
	return Action{Type: ActionReset}
}
