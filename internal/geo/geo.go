package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/mapmedia/mapview/internal/model/core"
)

// Source data is WGS84 (EPSG:4326) decimal degrees. Metric work such as
// accuracy circles is done in Web Mercator (EPSG:3857) and projected back.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// mercatorLatLimit is where EPSG:3857 is cut off.
const mercatorLatLimit = 85.05112878

// ParseLatLon parses decimal-degree latitude and longitude cells.
func ParseLatLon(lat, lon string) (core.Position, error) {
	la, err := parseDegrees(lat)
	if err != nil {
		return core.Position{}, err
	}
	lo, err := parseDegrees(lon)
	if err != nil {
		return core.Position{}, err
	}
	p := core.Position{Lat: la, Lon: lo}
	if !Valid(p) {
		return core.Position{}, ErrInvalidCoordinates
	}
	return p, nil
}

func parseDegrees(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidCoordinates
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidCoordinates
	}
	return v, nil
}

// Valid reports whether p lies within WGS84 bounds.
func Valid(p core.Position) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// ToWebMercator projects a WGS84 position to EPSG:3857 meters.
func ToWebMercator(p core.Position) (x, y float64) {
	f := wgs84.EPSG().Transform(4326, 3857)
	x, y, _ = f(p.Lon, clampLat(p.Lat), 0)
	return x, y
}

// FromWebMercator projects EPSG:3857 meters back to WGS84.
func FromWebMercator(x, y float64) core.Position {
	f := wgs84.EPSG().Transform(3857, 4326)
	lon, lat, _ := f(x, y, 0)
	return core.Position{Lat: lat, Lon: lon}
}

func clampLat(lat float64) float64 {
	return math.Max(-mercatorLatLimit, math.Min(mercatorLatLimit, lat))
}

// Point converts a position to a geometry point (X = longitude, Y = latitude).
func Point(p core.Position) geom.Point {
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: p.Lon, Y: p.Lat},
		Type: geom.DimXY,
	})
}

// Circle approximates a circle of radiusMeters around center with the given
// number of segments. The ring is closed (first == last). Mercator distances
// are stretched by 1/cos(lat), so the radius is scaled accordingly.
func Circle(center core.Position, radiusMeters float64, segments int) []core.Position {
	if radiusMeters <= 0 || segments < 3 {
		return nil
	}
	cx, cy := ToWebMercator(center)
	r := radiusMeters / math.Cos(clampLat(center.Lat)*math.Pi/180)

	ring := make([]core.Position, 0, segments+1)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, FromWebMercator(cx+r*math.Cos(theta), cy+r*math.Sin(theta)))
	}
	return append(ring, ring[0])
}

// CirclePolygon returns Circle as a polygon geometry. A non-positive radius
// yields an empty polygon.
func CirclePolygon(center core.Position, radiusMeters float64, segments int) geom.Polygon {
	ring := Circle(center, radiusMeters, segments)
	if len(ring) == 0 {
		return geom.Polygon{}
	}
	flat := make([]float64, 0, len(ring)*2)
	for _, p := range ring {
		flat = append(flat, p.Lon, p.Lat)
	}
	ls := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	return geom.NewPolygon([]geom.LineString{ls})
}

// Center returns the arithmetic mean of the positions, or the origin when
// there are none.
func Center(ps []core.Position) core.Position {
	if len(ps) == 0 {
		return core.Position{}
	}
	var lat, lon float64
	for _, p := range ps {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(ps))
	return core.Position{Lat: lat / n, Lon: lon / n}
}
