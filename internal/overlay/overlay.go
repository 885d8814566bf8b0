// Package overlay derives accuracy circles from records that carry an
// accuracy radius.
package overlay

import (
	"log/slog"
	"strconv"

	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/model/core"
)

// FallbackColor is used for kinds missing from the style table.
const FallbackColor = "#808080"

// Style is the fill and stroke color of a kind's circles.
type Style struct {
	Fill   string
	Stroke string
}

// DefaultStyles maps kinds to circle colors. Kinds absent here are drawn in
// FallbackColor and reported.
var DefaultStyles = map[core.Kind]Style{
	core.KindEventA: {Fill: "#90EE90", Stroke: "#90EE90"},
	core.KindEventB: {Fill: "#FFA500", Stroke: "#FFA500"},
}

// Options configure a Builder.
type Options struct {
	Enabled       bool
	FillOpacity   float64
	StrokeOpacity float64
	Weight        int
	// Styles overrides DefaultStyles when non-nil.
	Styles map[core.Kind]Style
}

// Builder turns records into overlays.
type Builder struct {
	logger *slog.Logger
	opts   Options
}

// NewBuilder creates a Builder.
func NewBuilder(logger *slog.Logger, opts Options) *Builder {
	if opts.Styles == nil {
		opts.Styles = DefaultStyles
	}
	return &Builder{logger: logger, opts: opts}
}

// Build returns one overlay per record with a non-negative accuracy, in
// record order. Negative or non-numeric accuracies produce no overlay and
// an OverlayDataError in report. A kind without a style gets the fallback
// color and a style diagnostic. A disabled builder returns no overlays.
func (b *Builder) Build(records []core.MarkerRecord, report *diag.Report) []core.AccuracyOverlay {
	out := []core.AccuracyOverlay{}
	if !b.opts.Enabled {
		return out
	}

	for _, r := range records {
		if !r.HasAccuracy() {
			continue
		}
		if err := check(r); err != nil {
			b.logger.Warn("Skipping accuracy overlay", "record", r.ID, "line", r.Line, "error", err)
			report.AddError(err)
			continue
		}

		style, ok := b.opts.Styles[r.Kind]
		if !ok {
			style = Style{Fill: FallbackColor, Stroke: FallbackColor}
			b.logger.Warn("No overlay style for kind", "kind", r.Kind, "record", r.ID)
			report.Add(diag.Diagnostic{
				Code:     diag.CodeStyleFallback,
				Source:   r.Source,
				Line:     r.Line,
				RecordID: r.ID,
				Message:  "no overlay style for kind " + string(r.Kind) + ", using " + FallbackColor,
			})
		}

		out = append(out, core.AccuracyOverlay{
			RecordID:      r.ID,
			Kind:          r.Kind,
			Center:        r.Position,
			RadiusMeters:  *r.AccuracyMeters,
			FillColor:     style.Fill,
			StrokeColor:   style.Stroke,
			FillOpacity:   b.opts.FillOpacity,
			StrokeOpacity: b.opts.StrokeOpacity,
			Weight:        b.opts.Weight,
		})
	}

	return out
}

// check validates the accuracy of a record that has one.
func check(r core.MarkerRecord) error {
	if r.AccuracyMeters == nil {
		return &diag.OverlayDataError{RecordID: r.ID, Value: r.AccuracyText, Reason: "not a number"}
	}
	if *r.AccuracyMeters < 0 {
		return &diag.OverlayDataError{
			RecordID: r.ID,
			Value:    strconv.FormatFloat(*r.AccuracyMeters, 'f', -1, 64),
			Reason:   "negative radius",
		}
	}
	return nil
}
