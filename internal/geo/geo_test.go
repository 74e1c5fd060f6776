package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/FACorreiaa/go-itinerary-builder/internal/types"
)

var (
	pyramids = types.Coordinate{Latitude: 29.9792, Longitude: 31.1342}
	museum   = types.Coordinate{Latitude: 30.0478, Longitude: 31.2336}
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b types.Coordinate
		want float64
	}{
		{name: "same point", a: pyramids, b: pyramids, want: 0},
		{name: "one degree on the equator", a: types.Coordinate{}, b: types.Coordinate{Longitude: 1}, want: 111.1949},
		{name: "pyramids to museum", a: pyramids, b: museum, want: 12.2386},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Distance(tt.a, tt.b), 0.001)
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	assert.Equal(t, Distance(pyramids, museum), Distance(museum, pyramids))
}

func TestDistanceGrowsWithSeparation(t *testing.T) {
	origin := types.Coordinate{Latitude: 25, Longitude: 32}
	prev := 0.0
	for step := 1; step <= 10; step++ {
		d := Distance(origin, types.Coordinate{Latitude: 25, Longitude: 32 + float64(step)*0.5})
		assert.Greater(t, d, prev)
		prev = d
	}
}

func TestMidpoint(t *testing.T) {
	mid := Midpoint(pyramids, museum)

	assert.InDelta(t, 30.0135, mid.Latitude, 1e-9)
	assert.InDelta(t, 31.1839, mid.Longitude, 1e-9)
	assert.True(t, mid.Latitude >= pyramids.Latitude && mid.Latitude <= museum.Latitude)
	assert.True(t, mid.Longitude >= pyramids.Longitude && mid.Longitude <= museum.Longitude)
}
