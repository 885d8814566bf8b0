// Package cluster partitions records into the fixed, named marker groups
// that the map clusters and toggles independently.
package cluster

import "github.com/mapmedia/mapview/internal/model/core"

// Group names. They are stable across builds so the viewer can address a
// group by name.
const (
	GroupImages = "images"
	GroupVideos = "videos"
	GroupEventA = "event-A"
	GroupEventB = "event-B"
	GroupOther  = "other"
)

type groupDef struct {
	name  string
	label string
	kind  core.Kind
}

// groups is the fixed group table in display order.
var groups = []groupDef{
	{GroupImages, "Images", core.KindImage},
	{GroupVideos, "Videos", core.KindVideo},
	{GroupEventA, "Primary events", core.KindEventA},
	{GroupEventB, "Other events", core.KindEventB},
	{GroupOther, "Other", core.KindOther},
}

// GroupFor returns the group name for a kind. Unknown kinds go to "other".
func GroupFor(k core.Kind) string {
	for _, g := range groups {
		if g.kind == k {
			return g.name
		}
	}
	return GroupOther
}

// Assign partitions records by kind. Every group is returned, in fixed
// order, even when empty; member ids keep record order.
func Assign(records []core.MarkerRecord) []core.ClusterGroup {
	out := make([]core.ClusterGroup, len(groups))
	pos := make(map[string]int, len(groups))
	for i, g := range groups {
		out[i] = core.ClusterGroup{Name: g.name, Label: g.label, Kind: g.kind, RecordIDs: []string{}}
		pos[g.name] = i
	}
	for _, r := range records {
		i := pos[GroupFor(r.Kind)]
		out[i].RecordIDs = append(out[i].RecordIDs, r.ID)
	}
	return out
}

// Options converts clustering settings into renderer options. The three
// flags are always on.
func Options(maxRadius, disableAtZoom int, spiderfyMultiplier float64) core.ClusterOptions {
	return core.ClusterOptions{
		MaxClusterRadius:           maxRadius,
		DisableClusteringAtZoom:    disableAtZoom,
		SpiderfyDistanceMultiplier: spiderfyMultiplier,
		SpiderfyOnMaxZoom:          true,
		ShowCoverageOnHover:        true,
		ZoomToBoundsOnClick:        true,
	}
}
