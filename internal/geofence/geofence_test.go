package geofence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// adriaticZone mirrors the reference scenario: a rectangle spanning
// lon [10,11], lat [44,45].
var adriaticZone = Rect{
	TopLeft:     Waypoint{Lat: 45, Lon: 10},
	BottomRight: Waypoint{Lat: 44, Lon: 11},
}

func TestRouteClearsZone(t *testing.T) {
	t.Run("route entirely outside bounds clears", func(t *testing.T) {
		route := []Waypoint{
			{Lat: 43, Lon: 9},
			{Lat: 43.5, Lon: 9.5},
			{Lat: 43, Lon: 9},
		}
		assert.True(t, RouteClearsZone(route, adriaticZone))
	})

	t.Run("segment crossing an edge violates", func(t *testing.T) {
		route := []Waypoint{
			{Lat: 44.5, Lon: 10.5},
			{Lat: 44.5, Lon: 12},
			{Lat: 44.5, Lon: 10.5},
		}
		assert.False(t, RouteClearsZone(route, adriaticZone))
	})

	t.Run("segment crossing interior without vertices inside violates", func(t *testing.T) {
		// Both endpoints outside, the segment spans the full rectangle.
		route := []Waypoint{
			{Lat: 44.5, Lon: 9},
			{Lat: 44.5, Lon: 12},
			{Lat: 44.5, Lon: 9},
		}
		assert.False(t, RouteClearsZone(route, adriaticZone))
	})

	t.Run("vertex exactly on the boundary violates", func(t *testing.T) {
		route := []Waypoint{
			{Lat: 45, Lon: 10.5}, // on the top edge
			{Lat: 46, Lon: 10.5},
			{Lat: 45, Lon: 10.5},
		}
		assert.False(t, RouteClearsZone(route, adriaticZone))
	})

	t.Run("segment grazing a corner violates", func(t *testing.T) {
		route := []Waypoint{
			{Lat: 44, Lon: 10},
			{Lat: 44, Lon: 9},
			{Lat: 44, Lon: 10},
		}
		assert.False(t, RouteClearsZone(route, adriaticZone))
	})

	t.Run("segment lying along an edge violates", func(t *testing.T) {
		route := []Waypoint{
			{Lat: 45, Lon: 10.2},
			{Lat: 45, Lon: 10.8},
			{Lat: 45, Lon: 10.2},
		}
		assert.False(t, RouteClearsZone(route, adriaticZone))
	})

	t.Run("zero-length route degrades to point test", func(t *testing.T) {
		inside := []Waypoint{{Lat: 44.5, Lon: 10.5}, {Lat: 44.5, Lon: 10.5}}
		outside := []Waypoint{{Lat: 43, Lon: 9}, {Lat: 43, Lon: 9}}
		assert.False(t, RouteClearsZone(inside, adriaticZone))
		assert.True(t, RouteClearsZone(outside, adriaticZone))
	})

	t.Run("vertex inside violates even if segments clip out", func(t *testing.T) {
		route := []Waypoint{
			{Lat: 44.5, Lon: 10.5},
			{Lat: 44.6, Lon: 10.6},
			{Lat: 44.5, Lon: 10.5},
		}
		assert.False(t, RouteClearsZone(route, adriaticZone))
	})
}

func TestRouteClearsZones(t *testing.T) {
	clear := []Waypoint{
		{Lat: 43, Lon: 9},
		{Lat: 43.5, Lon: 9.5},
		{Lat: 43, Lon: 9},
	}
	farZone := Rect{
		TopLeft:     Waypoint{Lat: 60, Lon: -10},
		BottomRight: Waypoint{Lat: 59, Lon: -9},
	}

	t.Run("clears when every zone is clear", func(t *testing.T) {
		assert.True(t, RouteClearsZones(clear, []Rect{adriaticZone, farZone}))
	})

	t.Run("single violation fails the whole set", func(t *testing.T) {
		crossing := []Waypoint{
			{Lat: 44.5, Lon: 9},
			{Lat: 44.5, Lon: 12},
			{Lat: 44.5, Lon: 9},
		}
		assert.False(t, RouteClearsZones(crossing, []Rect{farZone, adriaticZone}))
	})

	t.Run("empty zone set always clears", func(t *testing.T) {
		assert.True(t, RouteClearsZones(clear, nil))
	})
}

func TestWaypointValid(t *testing.T) {
	cases := []struct {
		name string
		w    Waypoint
		want bool
	}{
		{"origin", Waypoint{0, 0}, true},
		{"extreme corners", Waypoint{90, 180}, true},
		{"negative extremes", Waypoint{-90, -180}, true},
		{"latitude too high", Waypoint{90.01, 0}, false},
		{"latitude too low", Waypoint{-90.01, 0}, false},
		{"longitude too high", Waypoint{0, 180.5}, false},
		{"longitude too low", Waypoint{0, -181}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.w.Valid())
		})
	}
}
