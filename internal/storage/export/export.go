// Package export writes the view as a JSON file, optionally gzipped.
// Markers and accuracy areas are also emitted as a GeoJSON feature
// collection so GIS tools can load the output directly.
package export

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/geo"
	"github.com/mapmedia/mapview/internal/model/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// FormatVersion identifies the export layout.
const FormatVersion = "mapview/1"

// Config holds configuration for the JSON sink.
type Config struct {
	OutputDir      string
	OutputName     string
	CompressOutput bool
	Segments       int // ring resolution for accuracy areas
	Version        string
}

// Export is the root JSON structure.
type Export struct {
	Format          string                        `json:"format"`
	ExporterVersion string                        `json:"exporterVersion,omitempty"`
	View            *core.View                    `json:"view"`
	Features        geom.GeoJSONFeatureCollection `json:"features"`
	Diagnostics     []diag.Diagnostic             `json:"diagnostics"`
}

// Sink writes <OutputDir>/<OutputName>.json[.gz].
type Sink struct {
	cfg  Config
	log  *slog.Logger
	path string
}

// New creates a JSON sink.
func New(cfg Config, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Segments < 3 {
		cfg.Segments = 48
	}
	return &Sink{cfg: cfg, log: logger}
}

// Init validates the output name.
func (s *Sink) Init() error {
	if s.cfg.OutputName == "" {
		return fmt.Errorf("export: output name not set")
	}
	return nil
}

// Close is a no-op.
func (s *Sink) Close() error {
	return nil
}

// ExportedPath returns the path of the last written file.
func (s *Sink) ExportedPath() string {
	return s.path
}

// Write builds the export document and writes it.
func (s *Sink) Write(ctx context.Context, view *core.View, report *diag.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := s.buildExport(view, report)

	filename := s.cfg.OutputName + ".json"
	if s.cfg.CompressOutput {
		filename += ".gz"
	}
	outputPath := filepath.Join(s.cfg.OutputDir, filename)

	// Ensure output directory exists
	if err := os.MkdirAll(s.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeFile(outputPath, doc, s.cfg.CompressOutput); err != nil {
		return err
	}

	s.path = outputPath
	s.log.Info("View exported", "path", outputPath, "features", len(doc.Features))
	return nil
}

func (s *Sink) buildExport(view *core.View, report *diag.Report) Export {
	doc := Export{
		Format:          FormatVersion,
		ExporterVersion: s.cfg.Version,
		View:            view,
		Features:        make(geom.GeoJSONFeatureCollection, 0, len(view.Records)+len(view.Overlays)),
		Diagnostics:     []diag.Diagnostic{},
	}
	if report != nil {
		doc.Diagnostics = append(doc.Diagnostics, report.Items()...)
	}

	for _, r := range view.Records {
		props := map[string]interface{}{
			"layer":  "marker",
			"kind":   string(r.Kind),
			"title":  r.Title,
			"source": string(r.Source),
			"line":   r.Line,
		}
		if r.Timestamp != nil {
			props["timestamp"] = r.Timestamp
		}
		if r.MediaRef != "" {
			props["mediaRef"] = r.MediaRef
		}
		doc.Features = append(doc.Features, geom.GeoJSONFeature{
			Geometry:   geo.Point(r.Position).AsGeometry(),
			ID:         r.ID,
			Properties: props,
		})
	}

	for _, o := range view.Overlays {
		g := geo.CirclePolygon(o.Center, o.RadiusMeters, s.cfg.Segments).AsGeometry()
		if g.IsEmpty() {
			// zero radius: the area degenerates to its center
			g = geo.Point(o.Center).AsGeometry()
		}
		doc.Features = append(doc.Features, geom.GeoJSONFeature{
			Geometry: g,
			ID:       o.RecordID + "/accuracy",
			Properties: map[string]interface{}{
				"layer":    "accuracy",
				"recordId": o.RecordID,
				"kind":     string(o.Kind),
				"radius":   o.RadiusMeters,
				"fill":     o.FillColor,
				"stroke":   o.StrokeColor,
			},
		})
	}
	return doc
}

func writeFile(path string, data Export, compress bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var w io.Writer = f
	if compress {
		gzWriter := gzip.NewWriter(f)
		defer func() {
			if cerr := gzWriter.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = gzWriter
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}
