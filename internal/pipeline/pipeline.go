// Package pipeline runs a build: read both exports, normalize, then derive
// cluster groups, the timeline and accuracy overlays concurrently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/errgroup"

	"github.com/mapmedia/mapview/internal/cluster"
	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/geo"
	"github.com/mapmedia/mapview/internal/logging"
	"github.com/mapmedia/mapview/internal/model/core"
	"github.com/mapmedia/mapview/internal/overlay"
	"github.com/mapmedia/mapview/internal/parser"
	"github.com/mapmedia/mapview/internal/source"
	"github.com/mapmedia/mapview/internal/timeline"
)

// Inputs names the files of one build.
type Inputs struct {
	BuildID    string
	MediaPath  string
	EventsPath string
	// EventsOptional skips a missing events file instead of failing.
	EventsOptional bool
}

// Dependencies holds all dependencies for the build manager
type Dependencies struct {
	Logger       *slog.Logger
	Parser       *parser.Parser
	Overlays     *overlay.Builder
	Cluster      core.ClusterOptions
	MediaBaseURL string
	Meter        metric.Meter
	Now          func() time.Time
}

// Manager runs builds.
type Manager struct {
	deps Dependencies

	records  metric.Int64Counter
	rejected metric.Int64Counter
	overlays metric.Int64Counter
	duration metric.Float64Histogram
}

// NewManager creates a new build manager
func NewManager(deps Dependencies) (*Manager, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Meter == nil {
		deps.Meter = noop.Meter{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Parser == nil || deps.Overlays == nil {
		return nil, errors.New("pipeline: parser and overlay builder are required")
	}

	m := &Manager{deps: deps}
	var err error
	if m.records, err = deps.Meter.Int64Counter("mapview.build.records",
		metric.WithDescription("Normalized marker records")); err != nil {
		return nil, fmt.Errorf("error creating records counter: %w", err)
	}
	if m.rejected, err = deps.Meter.Int64Counter("mapview.build.rejected_rows",
		metric.WithDescription("Rows skipped during normalization")); err != nil {
		return nil, fmt.Errorf("error creating rejected counter: %w", err)
	}
	if m.overlays, err = deps.Meter.Int64Counter("mapview.build.overlays",
		metric.WithDescription("Accuracy overlays built")); err != nil {
		return nil, fmt.Errorf("error creating overlays counter: %w", err)
	}
	if m.duration, err = deps.Meter.Float64Histogram("mapview.build.duration",
		metric.WithUnit("s"), metric.WithDescription("Build wall time")); err != nil {
		return nil, fmt.Errorf("error creating duration histogram: %w", err)
	}
	return m, nil
}

// Read loads the input tables. It completes before any derivation starts.
func (m *Manager) Read(ctx context.Context, in Inputs) ([]*source.Table, error) {
	media, err := source.ReadFile(in.MediaPath, core.SourceMedia)
	if err != nil {
		return nil, err
	}
	tables := []*source.Table{media}

	if in.EventsPath == "" {
		return tables, nil
	}
	if in.EventsOptional {
		if _, err := os.Stat(in.EventsPath); errors.Is(err, fs.ErrNotExist) {
			m.deps.Logger.WarnContext(ctx, "Events file not found, building from media only", "path", in.EventsPath)
			return tables, nil
		}
	}
	events, err := source.ReadFile(in.EventsPath, core.SourceEvents)
	if err != nil {
		return nil, err
	}
	return append(tables, events), nil
}

// Build runs a full build. Fatal errors (schema, empty input, unreadable
// file) abort it; everything else lands in the returned report.
func (m *Manager) Build(ctx context.Context, in Inputs) (*core.View, *diag.Report, error) {
	report := diag.NewReport()
	ctx = logging.WithAttrs(ctx, slog.String("media", in.MediaPath), slog.String("events", in.EventsPath))

	tables, err := m.Read(ctx, in)
	if err != nil {
		return nil, report, err
	}
	view, err := m.BuildTables(ctx, in.BuildID, tables, report)
	return view, report, err
}

// BuildTables derives a view from tables that were already read.
// Diagnostics are added to report.
func (m *Manager) BuildTables(ctx context.Context, buildID string, tables []*source.Table, report *diag.Report) (*core.View, error) {
	start := m.deps.Now()

	records, err := m.deps.Parser.Normalize(tables, report)
	if err != nil {
		return nil, err
	}

	var (
		groups   []core.ClusterGroup
		tl       core.Timeline
		overlays []core.AccuracyOverlay
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		groups = cluster.Assign(records)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		tl = timeline.Index(records)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		overlays = m.deps.Overlays.Build(records, report)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error deriving view: %w", err)
	}

	if buildID == "" {
		buildID = uuid.NewString()
	}
	view := &core.View{
		BuildID:      buildID,
		GeneratedAt:  m.deps.Now().UTC(),
		Center:       center(records),
		Records:      records,
		Groups:       groups,
		Timeline:     tl,
		Overlays:     overlays,
		Cluster:      m.deps.Cluster,
		MediaBaseURL: m.deps.MediaBaseURL,
		Timezone:     m.deps.Parser.Location().String(),
	}
	view.Stats = stats(view, report)
	view.Reindex()

	m.records.Add(ctx, int64(view.Stats.Total))
	m.rejected.Add(ctx, int64(view.Stats.Rejected))
	m.overlays.Add(ctx, int64(view.Stats.Overlays))
	m.duration.Record(ctx, m.deps.Now().Sub(start).Seconds())

	m.deps.Logger.InfoContext(ctx, "Build complete",
		"build", view.BuildID,
		"records", view.Stats.Total,
		"withMedia", view.Stats.WithMedia,
		"timelineEntries", view.Stats.TimelineEntries,
		"overlays", view.Stats.Overlays,
		"rejected", view.Stats.Rejected)
	return view, nil
}

func center(records []core.MarkerRecord) core.Position {
	ps := make([]core.Position, len(records))
	for i, r := range records {
		ps[i] = r.Position
	}
	return geo.Center(ps)
}

func stats(v *core.View, report *diag.Report) core.Stats {
	s := core.Stats{
		Total:           len(v.Records),
		ByKind:          make(map[core.Kind]int, len(core.AllKinds)),
		Rejected:        report.Count(diag.CodeRowParse),
		TimelineEntries: len(v.Timeline.Entries),
		Overlays:        len(v.Overlays),
		Diagnostics:     report.Len(),
	}
	for _, k := range core.AllKinds {
		s.ByKind[k] = 0
	}
	for _, r := range v.Records {
		s.ByKind[r.Kind]++
		if r.MediaRef != "" {
			s.WithMedia++
		}
	}
	return s
}
