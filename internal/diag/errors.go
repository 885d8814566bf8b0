// Package diag holds the build error taxonomy and the end-of-build report.
package diag

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mapmedia/mapview/internal/model/core"
)

// Fatal build errors. Each maps to its own exit code in the CLI.
var (
	ErrMissingColumn  = errors.New("missing required column")
	ErrEmptyInput     = errors.New("empty input")
	ErrUnreadableFile = errors.New("unreadable file")
)

// SchemaError is returned when a CSV header lacks required columns.
// It aborts the build.
type SchemaError struct {
	Source  core.Source
	File    string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s schema (%s): %s: %s",
		e.Source, e.File, ErrMissingColumn, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrMissingColumn }

// RowParseError describes a single rejected row. The row is skipped and
// the build continues.
type RowParseError struct {
	Source core.Source
	Line   int
	Field  string
	Err    error
}

func (e *RowParseError) Error() string {
	return fmt.Sprintf("%s line %d: error parsing %s: %v", e.Source, e.Line, e.Field, e.Err)
}

func (e *RowParseError) Unwrap() error { return e.Err }

// OverlayDataError is reported when a record's accuracy cannot become an
// overlay. Only the overlay is skipped, the marker stays.
type OverlayDataError struct {
	RecordID string
	Value    string
	Reason   string
}

func (e *OverlayDataError) Error() string {
	return fmt.Sprintf("record %s: bad accuracy %q: %s", e.RecordID, e.Value, e.Reason)
}

// ExitCode maps a fatal build error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrMissingColumn):
		return 2
	case errors.Is(err, ErrEmptyInput):
		return 3
	case errors.Is(err, ErrUnreadableFile):
		return 4
	default:
		return 1
	}
}
