package parser

import (
	"fmt"

	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/model/core"
	"github.com/mapmedia/mapview/internal/source"
	"github.com/mapmedia/mapview/internal/util"
)

// ParseMediaRow converts one media-marker row. Bad coordinates or a bad
// media path reject the row with a *diag.RowParseError. A bad date or time,
// or an unknown icon or color, is reported and replaced by a default.
func (p *Parser) ParseMediaRow(h *Header, row source.Row) (core.MarkerRecord, []diag.Diagnostic, error) {
	var notes []diag.Diagnostic

	rec, err := p.base(h, row)
	if err != nil {
		return rec, nil, err
	}

	// media path
	ref, err := NormalizeMediaRef(p.cfg.MediaRoot, h.Cell(row.Cells, colMediaPath))
	if err != nil {
		return rec, nil, &diag.RowParseError{Source: rec.Source, Line: row.Line, Field: colMediaPath, Err: err}
	}
	rec.MediaRef = ref
	rec.Kind = MediaKind(ref)

	rec.Title = h.Cell(row.Cells, colTitle)
	rec.Description = util.CleanDescription(h.Cell(row.Cells, colDescription))

	// timestamp
	date, clock := h.Cell(row.Cells, colDate), h.Cell(row.Cells, colTime)
	if date != "" {
		ts, err := parseDateTime(date, clock, p.cfg.Location)
		if err != nil {
			notes = append(notes, p.warn(rec, diag.CodeTimestamp, fmt.Sprintf("timestamp left unset: %v", err)))
		} else {
			rec.Timestamp = &ts
		}
	}

	// icon and color
	defIcon, defColor := DefaultStyle(rec.Kind)
	rec.Icon, rec.Color = defIcon, defColor
	if raw := h.Cell(row.Cells, colIcon); raw != "" {
		if icon, ok := resolveIcon(raw); ok {
			rec.Icon = icon
		} else {
			notes = append(notes, p.warn(rec, diag.CodeDisplayFallback, fmt.Sprintf("unknown icon %q, using %q", raw, defIcon)))
		}
	}
	if raw := h.Cell(row.Cells, colColor); raw != "" {
		if color, ok := resolveColor(raw); ok {
			rec.Color = color
		} else {
			notes = append(notes, p.warn(rec, diag.CodeDisplayFallback, fmt.Sprintf("unknown color %q, using %q", raw, defColor)))
		}
	}

	return rec, notes, nil
}
