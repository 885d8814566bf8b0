// Package render writes the self-contained interactive map document.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mapmedia/mapview/internal/interaction"
	"github.com/mapmedia/mapview/internal/model/core"
	"github.com/mapmedia/mapview/internal/parser"
)

//go:embed templates/*
var content embed.FS

var tmpl = template.Must(template.New("map.html").ParseFS(content, "templates/map.html"))

// DefaultTitle is used when Options.Title is empty.
const DefaultTitle = "Media Map"

// Options control document generation.
type Options struct {
	Title   string
	Version string
	Policy  interaction.Policy
}

type kindToggle struct {
	Kind  core.Kind
	Label string
	Color string
	Count int
}

type page struct {
	Title      string
	Version    string
	View       *core.View
	Policy     interaction.Policy
	VideoTypes map[string]string
	KindOrder  []core.Kind
	Kinds      []kindToggle
	Zone       string
	Walls      map[string]string
}

// Render executes the map document for view into w. The whole document is
// produced in memory first so w never receives a partial page.
func Render(w io.Writer, view *core.View, opts Options) error {
	if view == nil {
		return fmt.Errorf("render: nil view")
	}
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	loc, err := interaction.LoadZone(view.Timezone)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	p := page{
		Title:      title,
		Version:    opts.Version,
		View:       view,
		Policy:     opts.Policy,
		VideoTypes: parser.VideoTypes(),
		KindOrder:  core.AllKinds,
		Kinds:      toggles(view),
		Zone:       loc.String(),
		Walls:      walls(view, loc),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return fmt.Errorf("render: execute template: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("render: write: %w", err)
	}
	return nil
}

// WriteFile renders the document to path, replacing any existing file.
func WriteFile(path string, view *core.View, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, view, opts); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("render: create output dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	return nil
}

// walls keys each timestamped record by its wall-clock time in loc. The
// document's range inputs are compared against these strings.
func walls(view *core.View, loc *time.Location) map[string]string {
	out := make(map[string]string, len(view.Records))
	for _, r := range view.Records {
		if r.HasTimestamp() {
			out[r.ID] = interaction.WallClock(*r.Timestamp, loc)
		}
	}
	return out
}

// toggles lists one layer switch per cluster group, in group order.
func toggles(view *core.View) []kindToggle {
	out := make([]kindToggle, 0, len(view.Groups))
	for _, g := range view.Groups {
		_, color := parser.DefaultStyle(g.Kind)
		out = append(out, kindToggle{
			Kind:  g.Kind,
			Label: g.Label,
			Color: color,
			Count: len(g.RecordIDs),
		})
	}
	return out
}
