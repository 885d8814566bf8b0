// Package sqlitestorage stores the view snapshot in an in-memory SQLite
// database and writes it to disk with VACUUM INTO on Close.
package sqlitestorage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/mapmedia/mapview/internal/database"
	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/model/core"
	gormstorage "github.com/mapmedia/mapview/internal/storage/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	OutputDir  string
	OutputName string
	Segments   int
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db      *database.Manager
	cfg     Config
	log     *slog.Logger
	written bool
	path    string
}

// New creates a new SQLite storage backend over db. The manager must not
// be connected yet.
func New(cfg Config, db *database.Manager, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{db: db, cfg: cfg, log: logger}
}

// Init creates and migrates the in-memory database.
func (b *Backend) Init() error {
	if b.cfg.OutputName == "" {
		return fmt.Errorf("sqlite: output name not set")
	}
	if err := b.db.ConnectSqlite(""); err != nil {
		return fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}
	if err := b.db.Setup(); err != nil {
		return err
	}
	b.Backend = gormstorage.New(gormstorage.Dependencies{
		DB:       b.db.DB,
		Logger:   b.log,
		Segments: b.cfg.Segments,
	})
	return b.Backend.Init()
}

// Write stores the snapshot in memory.
func (b *Backend) Write(ctx context.Context, view *core.View, report *diag.Report) error {
	if b.Backend == nil {
		return fmt.Errorf("sqlite: not initialized")
	}
	if err := b.Backend.Write(ctx, view, report); err != nil {
		return err
	}
	b.written = true
	return nil
}

// Close dumps a written snapshot to <OutputDir>/<OutputName>.db and closes
// the database.
func (b *Backend) Close() error {
	var dumpErr error
	if b.written {
		path := filepath.Join(b.cfg.OutputDir, b.cfg.OutputName+".db")
		if dumpErr = b.db.DumpToDisk(path); dumpErr == nil {
			b.path = path
			b.log.Info("SQLite snapshot written", "path", path)
		}
	}
	if err := b.db.Close(); err != nil && dumpErr == nil {
		return err
	}
	return dumpErr
}

// ExportedPath returns the dumped database file, empty before Close.
func (b *Backend) ExportedPath() string {
	return b.path
}
