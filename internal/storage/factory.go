// internal/storage/factory.go
package storage

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mapmedia/mapview/internal/config"
	"github.com/mapmedia/mapview/internal/database"
	"github.com/mapmedia/mapview/internal/logging"
	"github.com/mapmedia/mapview/internal/render"
	"github.com/mapmedia/mapview/internal/storage/document"
	"github.com/mapmedia/mapview/internal/storage/export"
	"github.com/mapmedia/mapview/internal/storage/postgres"
	sqlitestorage "github.com/mapmedia/mapview/internal/storage/sqlite"
)

// Sink type names accepted in storage.type.
const (
	TypeHTML     = "html"
	TypeJSON     = "json"
	TypeSqlite   = "sqlite"
	TypePostgres = "postgres"
)

// Dependencies are shared by every sink.
type Dependencies struct {
	Logger      *slog.Logger
	DBLogOutput io.Writer // database manager log lines, nil discards
	LogLevel    string
	Render      render.Options
	Segments    int
	Version     string
}

// NewSink creates a sink based on configuration.
func NewSink(cfg config.StorageConfig, deps Dependencies) (Sink, error) {
	switch cfg.Type {
	case TypeHTML, "":
		return document.New(document.Config{
			OutputDir:  cfg.OutputDir,
			OutputName: cfg.OutputName,
			Render:     deps.Render,
		}, deps.Logger), nil
	case TypeJSON:
		return export.New(export.Config{
			OutputDir:      cfg.OutputDir,
			OutputName:     cfg.OutputName,
			CompressOutput: cfg.CompressOutput,
			Segments:       deps.Segments,
			Version:        deps.Version,
		}, deps.Logger), nil
	case TypeSqlite:
		return sqlitestorage.New(sqlitestorage.Config{
			OutputDir:  cfg.OutputDir,
			OutputName: cfg.OutputName,
			Segments:   deps.Segments,
		}, database.NewManager(logging.NewZerolog(deps.DBLogOutput, deps.LogLevel)), deps.Logger), nil
	case TypePostgres:
		return postgres.New(postgres.Config{
			DSN:      cfg.Postgres.DSN,
			Segments: deps.Segments,
		}, database.NewManager(logging.NewZerolog(deps.DBLogOutput, deps.LogLevel)), deps.Logger), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
