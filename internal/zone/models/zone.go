package models

import (
	"time"

	"seaplan/internal/geofence"
	id "seaplan/pkg/domain"
	dErrors "seaplan/pkg/domain-errors"
)

// Zone is a rectangular restricted area routes must avoid.
//
// Invariants:
//   - both corners are valid geographic coordinates
//   - TopLeft.Lat > BottomRight.Lat and TopLeft.Lon < BottomRight.Lon, so the
//     rectangle is non-degenerate and axis-aligned
//
// Uniqueness of the (TopLeft, BottomRight) pair is a store concern; the store
// enforces it atomically with the create or update it guards.
type Zone struct {
	ID          id.ZoneID         `json:"id"`
	TopLeft     geofence.Waypoint `json:"top_left"`
	BottomRight geofence.Waypoint `json:"bottom_right"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// NewZone constructs a Zone, validating the rectangle invariants.
func NewZone(zoneID id.ZoneID, topLeft, bottomRight geofence.Waypoint, now time.Time) (*Zone, error) {
	if !topLeft.Valid() || !bottomRight.Valid() {
		return nil, dErrors.New(dErrors.CodeValidation, "zone corners must be valid geographic coordinates")
	}
	if topLeft.Lat <= bottomRight.Lat {
		return nil, dErrors.New(dErrors.CodeValidation, "top-left latitude must be greater than bottom-right latitude")
	}
	if topLeft.Lon >= bottomRight.Lon {
		return nil, dErrors.New(dErrors.CodeValidation, "top-left longitude must be less than bottom-right longitude")
	}
	return &Zone{
		ID:          zoneID,
		TopLeft:     topLeft,
		BottomRight: bottomRight,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Rect returns the zone's rectangle in the form the geofence package takes.
func (z *Zone) Rect() geofence.Rect {
	return geofence.Rect{TopLeft: z.TopLeft, BottomRight: z.BottomRight}
}

// SameCoords reports whether other occupies the identical rectangle.
func (z *Zone) SameCoords(other *Zone) bool {
	return z.TopLeft == other.TopLeft && z.BottomRight == other.BottomRight
}
