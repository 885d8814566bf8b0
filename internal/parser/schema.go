package parser

import (
	"strings"

	"github.com/mapmedia/mapview/internal/diag"
	"github.com/mapmedia/mapview/internal/model/core"
	"github.com/mapmedia/mapview/internal/util"
)

// Column names used as canonical keys.
const (
	colAddress     = "Address"
	colLatitude    = "latitude"
	colLongitude   = "longitude"
	colTitle       = "title"
	colDescription = "description"
	colMediaPath   = "media_path"
	colIcon        = "icon"
	colColor       = "color"
	colDate        = "date"
	colTime        = "time"
	colAccuracy    = "Accuracy"
	colDateTime    = "Date/Time"
	colEvent       = "Event"
)

// column is a schema column and the header spellings that satisfy it.
type column struct {
	name    string
	aliases []string
}

// Schema describes one CSV layout.
type Schema struct {
	Source   core.Source
	required []column
	optional []column
}

// MediaSchema is the media-marker export.
var MediaSchema = Schema{
	Source: core.SourceMedia,
	required: []column{
		{name: colAddress},
		{name: colLatitude, aliases: []string{"lat"}},
		{name: colLongitude, aliases: []string{"lon", "lng"}},
		{name: colTitle},
		{name: colDescription},
		{name: colMediaPath},
		{name: colIcon},
		{name: colColor},
		{name: colDate},
		{name: colTime},
	},
}

// EventSchema is the master-event export. The aliases are the original
// export headers.
var EventSchema = Schema{
	Source: core.SourceEvents,
	required: []column{
		{name: colLatitude},
		{name: colLongitude},
		{name: colAccuracy, aliases: []string{"ACCURACY IN METERS", "accuracy_meters"}},
		{name: colDateTime, aliases: []string{"Date-Time CST", "datetime"}},
		{name: colIcon, aliases: []string{colEvent}},
	},
	optional: []column{
		{name: colEvent},
		{name: colAddress},
	},
}

// Header is a schema resolved against a concrete CSV header row.
type Header struct {
	Schema  *Schema
	names   []string
	index   map[string]int
	details []int
}

// Resolve matches header against the schema. Matching is case-insensitive,
// ignores surrounding whitespace and a leading BOM. Missing required
// columns yield a *diag.SchemaError.
func (s *Schema) Resolve(file string, header []string) (*Header, error) {
	norm := make(map[string]int, len(header))
	for i, h := range header {
		key := util.NormalizeHeader(h)
		if _, dup := norm[key]; !dup {
			norm[key] = i
		}
	}

	h := &Header{Schema: s, names: header, index: map[string]int{}}
	consumed := map[int]bool{}

	lookup := func(c column) (int, bool) {
		for _, n := range append([]string{c.name}, c.aliases...) {
			if i, ok := norm[util.NormalizeHeader(n)]; ok {
				return i, true
			}
		}
		return 0, false
	}

	var missing []string
	for _, c := range s.required {
		i, ok := lookup(c)
		if !ok {
			missing = append(missing, c.name)
			continue
		}
		h.index[c.name] = i
		consumed[i] = true
	}
	if len(missing) > 0 {
		return nil, &diag.SchemaError{Source: s.Source, File: file, Missing: missing}
	}
	for _, c := range s.optional {
		if i, ok := lookup(c); ok {
			h.index[c.name] = i
			consumed[i] = true
		}
	}

	// the media Address column is shown as a detail
	if s.Source == core.SourceMedia {
		delete(consumed, h.index[colAddress])
	}

	for i := range header {
		if !consumed[i] && util.NormalizeHeader(header[i]) != "" {
			h.details = append(h.details, i)
		}
	}
	return h, nil
}

// Cell returns the cleaned value of the named column in row, or "" when
// the column is absent, the row is short, or the value is a missing token.
func (h *Header) Cell(row []string, name string) string {
	i, ok := h.index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return util.Cell(row[i])
}

// Details returns the non-core columns of row in header order. Missing
// values are skipped.
func (h *Header) Details(row []string) []core.Detail {
	var out []core.Detail
	for _, i := range h.details {
		if i >= len(row) {
			continue
		}
		v := util.Cell(row[i])
		if v == "" {
			continue
		}
		out = append(out, core.Detail{Key: headerLabel(h.names[i]), Value: v})
	}
	return out
}

func headerLabel(s string) string {
	return strings.TrimSpace(util.TrimQuotes(strings.TrimPrefix(s, "\ufeff")))
}
