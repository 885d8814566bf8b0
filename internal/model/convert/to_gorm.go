// Package convert maps built views onto the GORM models.
package convert

import (
	"encoding/json"

	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/geo"
	"github.com/mapmedia/mapview/internal/model"
	"github.com/mapmedia/mapview/internal/model/core"
	"gorm.io/datatypes"
)

// DefaultCircleSegments is the ring resolution used for stored overlay areas.
const DefaultCircleSegments = 48

// Snapshot is a view flattened into table rows. Child rows carry BuildID 0
// until the Build row has been created.
type Snapshot struct {
	Build       model.Build
	Markers     []model.Marker
	Groups      []model.ClusterGroup
	Entries     []model.TimelineEntry
	Overlays    []model.AccuracyOverlay
	Diagnostics []model.Diagnostic
}

// SetBuildID stamps the build's primary key on every child row.
func (s *Snapshot) SetBuildID(id uint) {
	for i := range s.Markers {
		s.Markers[i].BuildID = id
	}
	for i := range s.Groups {
		s.Groups[i].BuildID = id
	}
	for i := range s.Entries {
		s.Entries[i].BuildID = id
	}
	for i := range s.Overlays {
		s.Overlays[i].BuildID = id
	}
	for i := range s.Diagnostics {
		s.Diagnostics[i].BuildID = id
	}
}

// toJSON converts a value to datatypes.JSON for DB storage.
func toJSON(v any, empty string) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return datatypes.JSON(empty)
	}
	return datatypes.JSON(data)
}

// CoreToBuild converts the view header to a GORM model.Build.
func CoreToBuild(v *core.View) model.Build {
	return model.Build{
		BuildID:      v.BuildID,
		GeneratedAt:  v.GeneratedAt,
		Center:       geo.Point(v.Center),
		MediaBaseURL: v.MediaBaseURL,
		Timezone:     v.Timezone,
		Cluster:      toJSON(v.Cluster, "{}"),
		Stats:        toJSON(v.Stats, "{}"),
		Total:        v.Stats.Total,
		Rejected:     v.Stats.Rejected,
	}
}

// CoreToMarker converts a core.MarkerRecord to a GORM model.Marker.
func CoreToMarker(r core.MarkerRecord) model.Marker {
	return model.Marker{
		RecordID:       r.ID,
		Seq:            r.Seq,
		Source:         string(r.Source),
		Line:           r.Line,
		Position:       geo.Point(r.Position),
		Timestamp:      r.Timestamp,
		Kind:           string(r.Kind),
		Title:          r.Title,
		Description:    r.Description,
		MediaRef:       r.MediaRef,
		AccuracyMeters: r.AccuracyMeters,
		Color:          r.Color,
		Icon:           r.Icon,
		Details:        toJSON(r.Details, "[]"),
	}
}

// CoreToClusterGroup converts a core.ClusterGroup; position is its display order.
func CoreToClusterGroup(g core.ClusterGroup, position int) model.ClusterGroup {
	return model.ClusterGroup{
		Name:      g.Name,
		Label:     g.Label,
		Kind:      string(g.Kind),
		Position:  position,
		RecordIDs: toJSON(g.RecordIDs, "[]"),
	}
}

// CoreToTimelineEntry converts a core.TimelineEntry; position is its index
// in the timeline.
func CoreToTimelineEntry(e core.TimelineEntry, position int) model.TimelineEntry {
	return model.TimelineEntry{
		EntryID:   e.ID,
		RecordID:  e.RecordID,
		Position:  position,
		Timestamp: e.Timestamp,
		Date:      e.Date,
		Clock:     e.Clock,
	}
}

// CoreToAccuracyOverlay converts a core.AccuracyOverlay. The stored area is
// empty for a zero radius.
func CoreToAccuracyOverlay(o core.AccuracyOverlay, segments int) model.AccuracyOverlay {
	return model.AccuracyOverlay{
		RecordID:      o.RecordID,
		Kind:          string(o.Kind),
		Center:        geo.Point(o.Center),
		Area:          geo.CirclePolygon(o.Center, o.RadiusMeters, segments),
		RadiusMeters:  o.RadiusMeters,
		FillColor:     o.FillColor,
		StrokeColor:   o.StrokeColor,
		FillOpacity:   o.FillOpacity,
		StrokeOpacity: o.StrokeOpacity,
		Weight:        o.Weight,
	}
}

// CoreToDiagnostic converts a report entry.
func CoreToDiagnostic(d diag.Diagnostic) model.Diagnostic {
	return model.Diagnostic{
		Code:     string(d.Code),
		Source:   string(d.Source),
		Line:     d.Line,
		RecordID: d.RecordID,
		Message:  d.Message,
	}
}

// ViewToSnapshot flattens a view and its build report. report may be nil.
func ViewToSnapshot(v *core.View, report *diag.Report, segments int) Snapshot {
	if segments < 3 {
		segments = DefaultCircleSegments
	}
	s := Snapshot{
		Build:       CoreToBuild(v),
		Markers:     make([]model.Marker, 0, len(v.Records)),
		Groups:      make([]model.ClusterGroup, 0, len(v.Groups)),
		Entries:     make([]model.TimelineEntry, 0, len(v.Timeline.Entries)),
		Overlays:    make([]model.AccuracyOverlay, 0, len(v.Overlays)),
		Diagnostics: []model.Diagnostic{},
	}
	for _, r := range v.Records {
		s.Markers = append(s.Markers, CoreToMarker(r))
	}
	for i, g := range v.Groups {
		s.Groups = append(s.Groups, CoreToClusterGroup(g, i))
	}
	for i, e := range v.Timeline.Entries {
		s.Entries = append(s.Entries, CoreToTimelineEntry(e, i))
	}
	for _, o := range v.Overlays {
		s.Overlays = append(s.Overlays, CoreToAccuracyOverlay(o, segments))
	}
	if report != nil {
		for _, d := range report.Items() {
			s.Diagnostics = append(s.Diagnostics, CoreToDiagnostic(d))
		}
	}
	return s
}
