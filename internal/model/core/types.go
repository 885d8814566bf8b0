// internal/model/core/types.go
package core

import "strings"

// Position is a WGS84 latitude/longitude pair in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Kind discriminates marker records. It drives icon, color and cluster group.
type Kind string

const (
	KindImage  Kind = "image"
	KindVideo  Kind = "video"
	KindEventA Kind = "event-A"
	KindEventB Kind = "event-B"
	KindOther  Kind = "other"
)

// AllKinds lists every kind in display order.
var AllKinds = []Kind{KindImage, KindVideo, KindEventA, KindEventB, KindOther}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind resolves a kind name case-insensitively.
func ParseKind(s string) (Kind, bool) {
	s = strings.TrimSpace(s)
	for _, known := range AllKinds {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// Source identifies the CSV schema a record was read from.
type Source string

const (
	SourceMedia  Source = "media"
	SourceEvents Source = "events"
)

// Detail is an extra source column carried through for popup display.
type Detail struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
