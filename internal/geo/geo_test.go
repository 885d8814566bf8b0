package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapmedia/mapview/internal/model/core"
)

func TestParseLatLon_Valid(t *testing.T) {
	p, err := ParseLatLon("29.951065", "-90.071533")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lat != 29.951065 {
		t.Errorf("expected Lat=29.951065, got %f", p.Lat)
	}
	if p.Lon != -90.071533 {
		t.Errorf("expected Lon=-90.071533, got %f", p.Lon)
	}
}

func TestParseLatLon_TrimsWhitespace(t *testing.T) {
	p, err := ParseLatLon(" 10.5 ", "\t20.25")

	require.NoError(t, err)
	assert.Equal(t, core.Position{Lat: 10.5, Lon: 20.25}, p)
}

func TestParseLatLon_Invalid(t *testing.T) {
	tests := []struct {
		name string
		lat  string
		lon  string
	}{
		{"empty latitude", "", "1"},
		{"empty longitude", "1", ""},
		{"not a number", "abc", "1"},
		{"NaN", "NaN", "1"},
		{"infinite", "+Inf", "1"},
		{"latitude out of range", "91", "0"},
		{"longitude out of range", "0", "-180.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLatLon(tt.lat, tt.lon)
			if !errors.Is(err, ErrInvalidCoordinates) {
				t.Errorf("expected ErrInvalidCoordinates, got %v", err)
			}
		})
	}
}

func TestWebMercatorRoundTrip(t *testing.T) {
	in := core.Position{Lat: 41.8781, Lon: -87.6298}

	x, y := ToWebMercator(in)
	out := FromWebMercator(x, y)

	assert.InDelta(t, in.Lat, out.Lat, 1e-6)
	assert.InDelta(t, in.Lon, out.Lon, 1e-6)
}

func TestToWebMercator_Origin(t *testing.T) {
	x, y := ToWebMercator(core.Position{})
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)
}

func TestCircle_RadiusIsHonoured(t *testing.T) {
	center := core.Position{Lat: 41.8781, Lon: -87.6298}
	ring := Circle(center, 250, 36)

	require.Len(t, ring, 37)
	assert.Equal(t, ring[0], ring[len(ring)-1], "ring must be closed")
	for _, p := range ring {
		assert.InDelta(t, 250, haversine(center, p), 2.5)
	}
}

func TestCircle_Degenerate(t *testing.T) {
	assert.Nil(t, Circle(core.Position{}, 0, 36))
	assert.Nil(t, Circle(core.Position{}, -5, 36))
	assert.Nil(t, Circle(core.Position{}, 10, 2))
}

func TestCirclePolygon(t *testing.T) {
	poly := CirclePolygon(core.Position{Lat: 10, Lon: 10}, 100, 16)
	assert.False(t, poly.IsEmpty())

	empty := CirclePolygon(core.Position{Lat: 10, Lon: 10}, 0, 16)
	assert.True(t, empty.IsEmpty())
}

func TestPoint(t *testing.T) {
	pt := Point(core.Position{Lat: 1.5, Lon: 2.5})

	coords, ok := pt.Coordinates()
	require.True(t, ok)
	assert.Equal(t, 2.5, coords.X)
	assert.Equal(t, 1.5, coords.Y)
}

func TestCenter(t *testing.T) {
	assert.Equal(t, core.Position{}, Center(nil))

	c := Center([]core.Position{{Lat: 10, Lon: 20}, {Lat: 20, Lon: 40}})
	assert.Equal(t, core.Position{Lat: 15, Lon: 30}, c)
}

// haversine returns the great-circle distance in meters.
func haversine(a, b core.Position) float64 {
	const earthRadius = 6371008.8
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(h))
}
