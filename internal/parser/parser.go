// Package parser turns raw CSV tables from either export into the unified
// marker record sequence.
package parser

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/model/core"
	"github.com/mapmedia/mapview/internal/source"
)

// Config holds the static normalization settings.
type Config struct {
	// Location is applied to timestamps without a zone, and every parsed
	// timestamp is converted into it. Nil means UTC.
	Location *time.Location
	// PrimaryMatch selects event-A: an event label containing it
	// (case-insensitive) is event-A, every other event is event-B.
	PrimaryMatch string
	// MediaRoot is the directory media references are made relative to.
	MediaRoot string
	// NewID generates record ids. Nil means random UUIDs.
	NewID func() string
}

// Parser provides pure row -> core.MarkerRecord conversion.
// It has no dependencies beyond a logger.
type Parser struct {
	logger *slog.Logger
	cfg    Config
}

// NewParser creates a new parser.
func NewParser(logger *slog.Logger, cfg Config) *Parser {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &Parser{logger: logger, cfg: cfg}
}

// Location is the zone record timestamps are expressed in.
func (p *Parser) Location() *time.Location {
	return p.cfg.Location
}

// schemaFor picks the layout for a table source.
func schemaFor(src core.Source) (*Schema, error) {
	switch src {
	case core.SourceMedia:
		return &MediaSchema, nil
	case core.SourceEvents:
		return &EventSchema, nil
	default:
		return nil, fmt.Errorf("unknown source: %s", src)
	}
}

// Normalize converts every table into records. Header problems are fatal
// and checked for all tables before any row is parsed. Row problems are
// added to report and the row is skipped. Records are numbered in input
// order (tables in the given order, rows in file order).
func (p *Parser) Normalize(tables []*source.Table, report *diag.Report) ([]core.MarkerRecord, error) {
	headers := make([]*Header, len(tables))
	total := 0
	for i, t := range tables {
		s, err := schemaFor(t.Source)
		if err != nil {
			return nil, err
		}
		h, err := s.Resolve(t.File, t.Header)
		if err != nil {
			return nil, err
		}
		headers[i] = h
		total += len(t.Rows) + len(t.Errors)
	}
	if total == 0 {
		names := make([]string, len(tables))
		for i, t := range tables {
			names[i] = t.File
		}
		return nil, fmt.Errorf("%s: %w: no data rows", strings.Join(names, ", "), diag.ErrEmptyInput)
	}

	var records []core.MarkerRecord
	for i, t := range tables {
		for _, e := range t.Errors {
			report.AddError(e)
		}
		for _, row := range t.Rows {
			var (
				rec   core.MarkerRecord
				notes []diag.Diagnostic
				err   error
			)
			if t.Source == core.SourceMedia {
				rec, notes, err = p.ParseMediaRow(headers[i], row)
			} else {
				rec, notes, err = p.ParseEventRow(headers[i], row)
			}
			report.Add(notes...)
			if err != nil {
				p.logger.Warn("Skipping row", "source", t.Source, "line", row.Line, "error", err)
				report.AddError(err)
				continue
			}
			rec.Seq = len(records)
			records = append(records, rec)
		}
	}

	p.logger.Debug("Normalized records", "records", len(records), "rows", total)
	return records, nil
}

// base fills the fields shared by both schemas. Coordinates are required.
func (p *Parser) base(h *Header, row source.Row) (core.MarkerRecord, error) {
	rec := core.MarkerRecord{
		Source:  h.Schema.Source,
		Line:    row.Line,
		Details: h.Details(row.Cells),
	}
	pos, err := parsePosition(h.Cell(row.Cells, colLatitude), h.Cell(row.Cells, colLongitude))
	if err != nil {
		return rec, &diag.RowParseError{Source: rec.Source, Line: row.Line, Field: "coordinates", Err: err}
	}
	rec.Position = pos
	rec.ID = p.cfg.NewID()
	return rec, nil
}

// warn records a non-fatal row anomaly both in the log and the report.
func (p *Parser) warn(rec core.MarkerRecord, code diag.Code, msg string) diag.Diagnostic {
	p.logger.Warn(msg, "source", rec.Source, "line", rec.Line, "record", rec.ID)
	return diag.Diagnostic{
		Code:     code,
		Source:   rec.Source,
		Line:     rec.Line,
		RecordID: rec.ID,
		Message:  msg,
	}
}
