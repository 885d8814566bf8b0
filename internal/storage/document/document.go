// Package document writes the view as the self-contained HTML map.
package document

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/model/core"
	"github.com/mapmedia/mapview/internal/render"
)

// Config holds configuration for the HTML sink.
type Config struct {
	OutputDir  string
	OutputName string
	Render     render.Options
}

// Sink renders the map document to <OutputDir>/<OutputName>.html.
type Sink struct {
	cfg  Config
	log  *slog.Logger
	path string
}

// New creates an HTML sink.
func New(cfg Config, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{cfg: cfg, log: logger}
}

// Init validates the output name.
func (s *Sink) Init() error {
	if s.cfg.OutputName == "" {
		return fmt.Errorf("document: output name not set")
	}
	return nil
}

// Close is a no-op.
func (s *Sink) Close() error {
	return nil
}

// Write renders view. The report is summarised in the view stats already.
func (s *Sink) Write(ctx context.Context, view *core.View, _ *diag.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.cfg.OutputDir, s.cfg.OutputName+".html")
	if err := render.WriteFile(path, view, s.cfg.Render); err != nil {
		return err
	}
	s.path = path
	s.log.Info("Map document written", "path", path, "records", len(view.Records))
	return nil
}

// ExportedPath returns the path of the last written document.
func (s *Sink) ExportedPath() string {
	return s.path
}
