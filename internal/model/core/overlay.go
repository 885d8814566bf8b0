package core

// AccuracyOverlay is the rendered uncertainty circle for one record.
// It is derived once at build time and never mutated afterwards.
type AccuracyOverlay struct {
	RecordID      string   `json:"recordId"`
	Kind          Kind     `json:"kind"`
	Center        Position `json:"center"`
	RadiusMeters  float64  `json:"radius"`
	FillColor     string   `json:"fillColor"`
	StrokeColor   string   `json:"strokeColor"`
	FillOpacity   float64  `json:"fillOpacity"`
	StrokeOpacity float64  `json:"opacity"`
	Weight        int      `json:"weight"`
}
