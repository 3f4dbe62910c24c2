package handler

import (
	"seaplan/internal/geofence"
	dErrors "seaplan/pkg/domain-errors"
)

// ZoneRequest is the HTTP request body for zone create and update.
type ZoneRequest struct {
	TopLeft     CoordinateRequest `json:"top_left"`
	BottomRight CoordinateRequest `json:"bottom_right"`
}

// CoordinateRequest is a geographic point in a request body.
type CoordinateRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks the corners individually; the rectangle invariant itself
// belongs to the zone model and is reported as validation_error by the
// service.
func (r *ZoneRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if !r.TopLeft.waypoint().Valid() {
		return dErrors.New(dErrors.CodeValidation, "top_left must be a valid geographic coordinate")
	}
	if !r.BottomRight.waypoint().Valid() {
		return dErrors.New(dErrors.CodeValidation, "bottom_right must be a valid geographic coordinate")
	}
	return nil
}

func (c CoordinateRequest) waypoint() geofence.Waypoint {
	return geofence.Waypoint{Lat: c.Lat, Lon: c.Lon}
}
