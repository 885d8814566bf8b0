// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/model/core"
)

// Sink is the interface all output implementations must satisfy. A sink
// receives the finished view once; it never sees partial builds.
type Sink interface {
	// Lifecycle
	Init() error
	Close() error

	// Write persists the view and its build report. report may be nil.
	Write(ctx context.Context, view *core.View, report *diag.Report) error
}

// Exported is an optional interface for sinks that produce a file.
type Exported interface {
	ExportedPath() string
}
