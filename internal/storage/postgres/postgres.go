// Package postgres stores the view snapshot in a PostGIS-enabled
// PostgreSQL database.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mapmedia/mapview/internal/database"
	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/model/core"
	gormstorage "github.com/mapmedia/mapview/internal/storage/gorm"
)

// Config holds configuration for the Postgres storage backend.
type Config struct {
	DSN      string
	Segments int
}

// Backend wraps the GORM backend with a Postgres connection.
type Backend struct {
	*gormstorage.Backend
	db  *database.Manager
	cfg Config
	log *slog.Logger
}

// New creates a new Postgres storage backend over db.
func New(cfg Config, db *database.Manager, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{db: db, cfg: cfg, log: logger}
}

// Init connects, ensures PostGIS and migrates the schema.
func (b *Backend) Init() error {
	if err := b.db.ConnectPostgres(b.cfg.DSN); err != nil {
		return err
	}
	if err := b.db.Setup(); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:       b.db.DB,
		Logger:   b.log,
		Segments: b.cfg.Segments,
	})
	return b.Backend.Init()
}

// Write stores the snapshot.
func (b *Backend) Write(ctx context.Context, view *core.View, report *diag.Report) error {
	if b.Backend == nil {
		return fmt.Errorf("postgres: not initialized")
	}
	return b.Backend.Write(ctx, view, report)
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	return b.db.Close()
}
