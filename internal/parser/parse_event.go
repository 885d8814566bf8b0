package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/geo"
	"github.com/mapmedia/mapview/internal/model/core"
	"github.com/mapmedia/mapview/internal/source"
	"github.com/mapmedia/mapview/internal/util"
)

// ParseEventRow converts one master-event row. Bad coordinates reject the
// row. The accuracy cell is carried as-is, including negative values; the
// overlay builder decides what is drawable.
func (p *Parser) ParseEventRow(h *Header, row source.Row) (core.MarkerRecord, []diag.Diagnostic, error) {
	var notes []diag.Diagnostic

	rec, err := p.base(h, row)
	if err != nil {
		return rec, nil, err
	}

	label := h.Cell(row.Cells, colEvent)
	if label == "" {
		label = h.Cell(row.Cells, colIcon)
	}
	rec.Kind = p.EventKind(label)
	rec.Title = label
	rec.Description = util.CleanDescription(h.Cell(row.Cells, colAddress))
	rec.Icon, rec.Color = DefaultStyle(rec.Kind)

	// accuracy
	if raw := h.Cell(row.Cells, colAccuracy); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			rec.AccuracyText = raw
		} else {
			rec.AccuracyMeters = &v
		}
	}

	// timestamp
	if raw := h.Cell(row.Cells, colDateTime); raw != "" {
		ts, err := parseCombined(raw, p.cfg.Location)
		if err != nil {
			notes = append(notes, p.warn(rec, diag.CodeTimestamp, fmt.Sprintf("timestamp left unset: %v", err)))
		} else {
			rec.Timestamp = &ts
		}
	}

	return rec, notes, nil
}

// EventKind classifies an event label against the primary match.
func (p *Parser) EventKind(label string) core.Kind {
	m := strings.TrimSpace(p.cfg.PrimaryMatch)
	if m != "" && strings.Contains(strings.ToLower(label), strings.ToLower(m)) {
		return core.KindEventA
	}
	return core.KindEventB
}

// parsePosition wraps geo.ParseLatLon with a field-specific message.
func parsePosition(lat, lon string) (core.Position, error) {
	pos, err := geo.ParseLatLon(lat, lon)
	if err != nil {
		return pos, fmt.Errorf("%w: lat=%q lon=%q", err, lat, lon)
	}
	return pos, nil
}
