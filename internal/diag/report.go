package diag

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/mapmedia/mapview/internal/model/core"
)

// Code classifies a diagnostic.
type Code string

const (
	CodeRowParse        Code = "RowParseError"
	CodeTimestamp       Code = "TimestampWarning"
	CodeDisplayFallback Code = "DisplayFallback"
	CodeOverlayData     Code = "OverlayDataError"
	CodeStyleFallback   Code = "OverlayStyleFallback"
)

// Diagnostic is one collected anomaly.
type Diagnostic struct {
	Code     Code        `json:"code"`
	Source   core.Source `json:"source,omitempty"`
	Line     int         `json:"line,omitempty"`
	RecordID string      `json:"recordId,omitempty"`
	Message  string      `json:"message"`
}

// Report collects every non-fatal anomaly of a build so nothing is dropped
// silently.
type Report struct {
	mu    sync.Mutex
	items []Diagnostic
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends diagnostics.
func (r *Report) Add(d ...Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, d...)
}

// AddError records a typed build error. Unknown errors are recorded as row
// parse errors without location.
func (r *Report) AddError(err error) {
	if err == nil {
		return
	}
	var (
		rowErr     *RowParseError
		overlayErr *OverlayDataError
	)
	switch {
	case errors.As(err, &rowErr):
		r.Add(Diagnostic{Code: CodeRowParse, Source: rowErr.Source, Line: rowErr.Line, Message: err.Error()})
	case errors.As(err, &overlayErr):
		r.Add(Diagnostic{Code: CodeOverlayData, RecordID: overlayErr.RecordID, Message: err.Error()})
	default:
		r.Add(Diagnostic{Code: CodeRowParse, Message: err.Error()})
	}
}

// Items returns a copy of the collected diagnostics in insertion order.
func (r *Report) Items() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Diagnostic, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of diagnostics.
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// Count returns how many diagnostics carry the given code.
func (r *Report) Count(code Code) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.items {
		if d.Code == code {
			n++
		}
	}
	return n
}

// Log writes a one-line summary at INFO and every diagnostic at DEBUG.
func (r *Report) Log(logger *slog.Logger) {
	items := r.Items()
	counts := map[Code]int{}
	for _, d := range items {
		counts[d.Code]++
		logger.Debug("Build diagnostic",
			"code", d.Code,
			"source", d.Source,
			"line", d.Line,
			"recordId", d.RecordID,
			"message", d.Message)
	}
	logger.Info("Build report",
		"diagnostics", len(items),
		"rejectedRows", counts[CodeRowParse],
		"timestampWarnings", counts[CodeTimestamp],
		"displayFallbacks", counts[CodeDisplayFallback],
		"overlayErrors", counts[CodeOverlayData],
		"styleFallbacks", counts[CodeStyleFallback])
}
