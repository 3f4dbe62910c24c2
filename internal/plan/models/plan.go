package models

import (
	"time"

	"seaplan/internal/geofence"
	id "seaplan/pkg/domain"
	dErrors "seaplan/pkg/domain-errors"
)

// VesselIDLength is the fixed length of a vessel identifier.
const VesselIDLength = 10

// Plan is the aggregate root for a navigation route request.
//
// Invariants:
//   - VesselID is exactly 10 characters
//   - Route has at least 2 waypoints, all within geographic bounds, and its
//     first and last waypoints are coordinate-equal (closed loop)
//   - WindowStart <= WindowEnd, and WindowStart is at least the configured
//     lead time after submission
//   - RejectionReason is set only when Status is rejected
//   - Plans are never physically deleted; cancellation is a status change
type Plan struct {
	ID              id.PlanID           `json:"id"`
	OwnerID         id.IdentityID       `json:"owner_id"`
	VesselID        string              `json:"vessel_id"`
	Route           []geofence.Waypoint `json:"route"`
	WindowStart     time.Time           `json:"window_start"`
	WindowEnd       time.Time           `json:"window_end"`
	Status          id.PlanStatus       `json:"status"`
	RejectionReason *string             `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// NewPlan constructs a pending Plan, validating every submission invariant.
// minLead is the minimum interval between submission time and WindowStart.
func NewPlan(planID id.PlanID, ownerID id.IdentityID, vesselID string, route []geofence.Waypoint, windowStart, windowEnd time.Time, now time.Time, minLead time.Duration) (*Plan, error) {
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "plan owner is required")
	}
	if len(vesselID) != VesselIDLength {
		return nil, dErrors.New(dErrors.CodeValidation, "vessel id must be exactly 10 characters")
	}
	if len(route) < 2 {
		return nil, dErrors.New(dErrors.CodeValidation, "route must contain at least 2 waypoints")
	}
	for _, w := range route {
		if !w.Valid() {
			return nil, dErrors.New(dErrors.CodeValidation, "route waypoints must be valid geographic coordinates")
		}
	}
	if route[0] != route[len(route)-1] {
		return nil, dErrors.New(dErrors.CodeValidation, "route must end where it starts")
	}
	if windowStart.After(windowEnd) {
		return nil, dErrors.New(dErrors.CodeValidation, "window start must not be after window end")
	}
	if windowStart.Before(now.Add(minLead)) {
		return nil, dErrors.New(dErrors.CodeValidation, "window start must allow the minimum lead time after submission")
	}
	return &Plan{
		ID:          planID,
		OwnerID:     ownerID,
		VesselID:    vesselID,
		Route:       route,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Status:      id.PlanStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CanCancel checks whether caller may cancel this plan. Only the owning
// identity may cancel, and only while the plan is pending.
func (p *Plan) CanCancel(caller id.IdentityID) error {
	if p.OwnerID != caller {
		return dErrors.New(dErrors.CodeForbidden, "only the owner may cancel a plan")
	}
	if !p.Status.CanTransitionTo(id.PlanStatusCancelled) {
		return dErrors.New(dErrors.CodeInvalidTransition, "plan is no longer pending")
	}
	return nil
}

// ApplyCancellation transitions the plan to cancelled. Call CanCancel first.
func (p *Plan) ApplyCancellation(now time.Time) {
	p.Status = id.PlanStatusCancelled
	p.UpdatedAt = now
}

// CanDecide checks whether a review decision may be recorded. Decisions are
// valid only while the plan is pending.
func (p *Plan) CanDecide() error {
	if p.Status.IsTerminal() {
		return dErrors.New(dErrors.CodeInvalidTransition, "plan is no longer pending")
	}
	return nil
}

// ApplyApproval transitions the plan to accepted. The rejection reason is
// never touched. Call CanDecide first.
func (p *Plan) ApplyApproval(now time.Time) {
	p.Status = id.PlanStatusAccepted
	p.UpdatedAt = now
}

// ApplyRejection transitions the plan to rejected and stores the reason
// verbatim. An empty reason is allowed. Call CanDecide first.
func (p *Plan) ApplyRejection(reason string, now time.Time) {
	p.Status = id.PlanStatusRejected
	p.RejectionReason = &reason
	p.UpdatedAt = now
}
