package handler

import (
	"net/url"
	"strings"
	"time"

	"seaplan/internal/geofence"
	"seaplan/internal/plan/service"
	id "seaplan/pkg/domain"
	dErrors "seaplan/pkg/domain-errors"
)

// SubmitRequest is the HTTP request body for POST /navigation-plans.
type SubmitRequest struct {
	VesselID    string              `json:"vessel_id"`
	Route       []CoordinateRequest `json:"route"`
	WindowStart time.Time           `json:"window_start"`
	WindowEnd   time.Time           `json:"window_end"`
}

// CoordinateRequest is a geographic point in a request body.
type CoordinateRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks field presence. The plan model enforces the deeper
// submission invariants (vessel id length, closed loop, lead time).
func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.VesselID = strings.TrimSpace(r.VesselID)
	if r.VesselID == "" {
		return dErrors.New(dErrors.CodeValidation, "vessel_id is required")
	}
	if len(r.Route) == 0 {
		return dErrors.New(dErrors.CodeValidation, "route is required")
	}
	if r.WindowStart.IsZero() || r.WindowEnd.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "window_start and window_end are required")
	}
	return nil
}

// Input converts the request into the service submission input.
func (r *SubmitRequest) Input() service.SubmitInput {
	route := make([]geofence.Waypoint, 0, len(r.Route))
	for _, c := range r.Route {
		route = append(route, geofence.Waypoint{Lat: c.Lat, Lon: c.Lon})
	}
	return service.SubmitInput{
		VesselID:    r.VesselID,
		Route:       route,
		WindowStart: r.WindowStart,
		WindowEnd:   r.WindowEnd,
	}
}

// RejectRequest is the HTTP request body for PATCH /navigation-plans/{id}/rejected.
// The reason is free text, stored verbatim; empty is allowed.
type RejectRequest struct {
	Reason string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// parseListQuery builds the service query from URL parameters. Role
// restrictions on the individual filters belong to the service; this only
// parses syntax.
func parseListQuery(values url.Values) (service.ListQuery, error) {
	var query service.ListQuery

	if raw := values.Get("status"); raw != "" {
		status, err := id.ParsePlanStatus(raw)
		if err != nil {
			return query, err
		}
		query.Status = &status
	}
	if raw := values.Get("date_from"); raw != "" {
		from, err := parseQueryTime(raw, "date_from")
		if err != nil {
			return query, err
		}
		query.DateFrom = &from
	}
	if raw := values.Get("date_to"); raw != "" {
		to, err := parseQueryTime(raw, "date_to")
		if err != nil {
			return query, err
		}
		query.DateTo = &to
	}
	if raw := values.Get("export_format"); raw != "" {
		format, err := id.ParseExportFormat(raw)
		if err != nil {
			return query, err
		}
		query.Format = &format
	}
	return query, nil
}

func parseQueryTime(raw, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, field+" must be an RFC 3339 timestamp")
	}
	return t, nil
}
