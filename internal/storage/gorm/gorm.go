// Package gormstorage writes a view snapshot through GORM. The sqlite and
// postgres sinks embed it and only differ in how the connection is made.
package gormstorage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/model/convert"
	"github.com/mapmedia/mapview/internal/model/core"
	"gorm.io/gorm"
)

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB        *gorm.DB
	Logger    *slog.Logger
	Segments  int // ring resolution for stored accuracy areas
	BatchSize int
}

// Backend writes snapshots into an already migrated database.
type Backend struct {
	deps Dependencies
}

// New creates a new GORM backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.BatchSize <= 0 {
		deps.BatchSize = 500
	}
	return &Backend{deps: deps}
}

// Init checks the connection is present.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm: database not connected")
	}
	return nil
}

// Close is a no-op; the connection belongs to the caller.
func (b *Backend) Close() error {
	return nil
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Write stores the view and report in one transaction. A failure leaves no
// partial snapshot behind.
func (b *Backend) Write(ctx context.Context, view *core.View, report *diag.Report) error {
	if err := b.Init(); err != nil {
		return err
	}
	start := time.Now()
	snap := convert.ViewToSnapshot(view, report, b.deps.Segments)

	err := b.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&snap.Build).Error; err != nil {
			return fmt.Errorf("error creating build: %w", err)
		}
		snap.SetBuildID(snap.Build.ID)

		if err := createAll(tx, "markers", snap.Markers, b.deps.BatchSize); err != nil {
			return err
		}
		if err := createAll(tx, "cluster groups", snap.Groups, b.deps.BatchSize); err != nil {
			return err
		}
		if err := createAll(tx, "timeline entries", snap.Entries, b.deps.BatchSize); err != nil {
			return err
		}
		if err := createAll(tx, "accuracy overlays", snap.Overlays, b.deps.BatchSize); err != nil {
			return err
		}
		return createAll(tx, "diagnostics", snap.Diagnostics, b.deps.BatchSize)
	})
	if err != nil {
		return err
	}

	b.deps.Logger.Info("View snapshot stored",
		"buildId", view.BuildID,
		"markers", len(snap.Markers),
		"overlays", len(snap.Overlays),
		"duration", time.Since(start))
	return nil
}

// createAll inserts rows in batches. Empty slices are skipped.
func createAll[T any](tx *gorm.DB, name string, rows []T, batch int) error {
	if len(rows) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(&rows, batch).Error; err != nil {
		return fmt.Errorf("error creating %s: %w", name, err)
	}
	return nil
}
