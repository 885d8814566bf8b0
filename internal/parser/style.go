package parser

import (
	"strings"

	"github.com/mapmedia/mapview/internal/model/core"
)

// kindStyle is the icon and marker color a kind falls back to.
type kindStyle struct {
	Icon  string
	Color string
}

var kindDefaults = map[core.Kind]kindStyle{
	core.KindImage:  {Icon: "camera", Color: "blue"},
	core.KindVideo:  {Icon: "video-camera", Color: "purple"},
	core.KindEventA: {Icon: "circle", Color: "lightgreen"},
	core.KindEventB: {Icon: "circle", Color: "orange"},
	core.KindOther:  {Icon: "map-marker", Color: "gray"},
}

// DefaultStyle returns the icon and color used for kind when the source row
// carries none.
func DefaultStyle(k core.Kind) (icon, color string) {
	s, ok := kindDefaults[k]
	if !ok {
		s = kindDefaults[core.KindOther]
	}
	return s.Icon, s.Color
}

// iconNames maps source icon names to map icon glyphs.
var iconNames = map[string]string{
	"camera":   "camera",
	"video":    "video-camera",
	"photo":    "picture-o",
	"film":     "film",
	"play":     "play-circle",
	"location": "map-marker",
	"home":     "home",
	"car":      "car",
	"flag":     "flag",
	"info":     "info-circle",
	"star":     "star",
	"circle":   "circle",
}

// markerColors is the marker color palette.
var markerColors = map[string]struct{}{
	"red": {}, "blue": {}, "green": {}, "purple": {}, "orange": {},
	"darkred": {}, "lightred": {}, "beige": {}, "darkblue": {}, "darkgreen": {},
	"cadetblue": {}, "darkpurple": {}, "white": {}, "pink": {}, "lightblue": {},
	"lightgreen": {}, "gray": {}, "black": {}, "lightgray": {},
}

// resolveIcon maps a source icon name. Glyph names are accepted as-is.
func resolveIcon(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if g, ok := iconNames[s]; ok {
		return g, true
	}
	for _, g := range iconNames {
		if g == s {
			return g, true
		}
	}
	return "", false
}

// resolveColor validates a source color against the palette.
func resolveColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	_, ok := markerColors[s]
	return s, ok
}
