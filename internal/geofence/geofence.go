// Package geofence decides whether a closed route polyline stays clear of
// rectangular exclusion zones.
//
// The check is deliberately fail-closed: a vertex sitting exactly on a zone
// boundary, or a segment grazing a zone corner, counts as a violation. All
// comparisons are therefore inclusive.
package geofence

// Waypoint is a geographic coordinate.
type Waypoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the coordinate lies within geographic bounds.
func (w Waypoint) Valid() bool {
	return w.Lat >= -90 && w.Lat <= 90 && w.Lon >= -180 && w.Lon <= 180
}

// Rect is an axis-aligned rectangle in geographic coordinates. Callers
// guarantee TopLeft.Lat > BottomRight.Lat and TopLeft.Lon < BottomRight.Lon;
// the zone registry enforces that invariant at construction.
type Rect struct {
	TopLeft     Waypoint
	BottomRight Waypoint
}

// Contains reports whether w lies inside the rectangle or on its boundary.
func (r Rect) Contains(w Waypoint) bool {
	return w.Lat <= r.TopLeft.Lat && w.Lat >= r.BottomRight.Lat &&
		w.Lon >= r.TopLeft.Lon && w.Lon <= r.BottomRight.Lon
}

// segmentIntersects reports whether the segment a→b touches or crosses the
// rectangle, using Liang–Barsky parametric clipping against the four edges.
// A zero-length segment degrades to a point-in-rect test.
func segmentIntersects(a, b Waypoint, r Rect) bool {
	dx := b.Lon - a.Lon
	dy := b.Lat - a.Lat
	if dx == 0 && dy == 0 {
		return r.Contains(a)
	}

	minLon, maxLon := r.TopLeft.Lon, r.BottomRight.Lon
	minLat, maxLat := r.BottomRight.Lat, r.TopLeft.Lat

	t0, t1 := 0.0, 1.0
	clip := func(p, q float64) bool {
		if p == 0 {
			// Segment parallel to this edge: inside the slab iff q >= 0.
			// q == 0 means lying on the boundary line, which counts.
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	if !clip(-dx, a.Lon-minLon) {
		return false
	}
	if !clip(dx, maxLon-a.Lon) {
		return false
	}
	if !clip(-dy, a.Lat-minLat) {
		return false
	}
	if !clip(dy, maxLat-a.Lat) {
		return false
	}
	return t0 <= t1
}

// RouteClearsZone reports whether the polyline defined by route stays
// entirely clear of the zone rectangle. A route violates the zone if any
// vertex lies inside or on the rectangle, or any segment touches or crosses
// one of its edges.
func RouteClearsZone(route []Waypoint, zone Rect) bool {
	for _, w := range route {
		if zone.Contains(w) {
			return false
		}
	}
	for i := 0; i+1 < len(route); i++ {
		if segmentIntersects(route[i], route[i+1], zone) {
			return false
		}
	}
	return true
}

// RouteClearsZones reports whether the route clears every zone. The first
// violation short-circuits; callers only learn that some zone was violated,
// not which one. Cost is O(segments × zones).
func RouteClearsZones(route []Waypoint, zones []Rect) bool {
	for _, z := range zones {
		if !RouteClearsZone(route, z) {
			return false
		}
	}
	return true
}
