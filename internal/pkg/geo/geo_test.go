package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var kolkata = Point{Latitude: 22.5726, Longitude: 88.3639}

func TestDistance_Symmetric(t *testing.T) {
	pairs := []struct {
		a, b Point
	}{
		{kolkata, Point{Latitude: 22.5745, Longitude: 88.3629}},
		{Point{Latitude: -6.2088, Longitude: 106.8456}, Point{Latitude: 51.5074, Longitude: -0.1278}},
		{Point{Latitude: 0, Longitude: 179.9}, Point{Latitude: 0, Longitude: -179.9}},
		{Point{Latitude: 89.9, Longitude: 0}, Point{Latitude: -89.9, Longitude: 180}},
	}

	for _, p := range pairs {
		assert.Equal(t, Distance(p.a, p.b), Distance(p.b, p.a), "distance(%v,%v)", p.a, p.b)
	}
}

func TestDistance_ZeroForSamePoint(t *testing.T) {
	points := []Point{kolkata, {0, 0}, {-90, 0}, {45.5, -122.6}}
	for _, p := range points {
		assert.Zero(t, Distance(p, p), "distance(%v,%v)", p, p)
	}
}

func TestDistance_KnownValues(t *testing.T) {
	// One degree of latitude along a meridian.
	got := Distance(Point{0, 0}, Point{1, 0})
	assert.InDelta(t, 111194.9, got, 0.5)

	// Jakarta to London.
	got = Distance(Point{-6.2088, 106.8456}, Point{51.5074, -0.1278})
	assert.InDelta(t, 11_718_142.8, got, 1)
}

func TestOffset_RoundTripsThroughDistance(t *testing.T) {
	cases := []struct {
		name        string
		north, east float64
	}{
		{"north 80m", 80, 0},
		{"north 150m", 150, 0},
		{"east 100m", 0, 100},
		{"south-west", -60, -60},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			moved := Offset(kolkata, c.north, c.east)
			want := c.north*c.north + c.east*c.east
			got := Distance(kolkata, moved)
			assert.InDelta(t, want, got*got, want*0.001+0.01)
		})
	}
}

func TestPoint_Valid(t *testing.T) {
	assert.True(t, kolkata.Valid())
	assert.False(t, Point{Latitude: 91}.Valid())
	assert.False(t, Point{Longitude: -180.5}.Valid())
}
