package domain

import dErrors "seaplan/pkg/domain-errors"

// PlanStatus is the lifecycle state of a navigation plan request.
//
// Pending is the sole initial state. Accepted, Rejected, and Cancelled are
// terminal: no transition leaves them.
type PlanStatus string

const (
	PlanStatusPending   PlanStatus = "pending"
	PlanStatusAccepted  PlanStatus = "accepted"
	PlanStatusRejected  PlanStatus = "rejected"
	PlanStatusCancelled PlanStatus = "cancelled"
)

// ParsePlanStatus validates s against the closed status set.
func ParsePlanStatus(s string) (PlanStatus, error) {
	switch PlanStatus(s) {
	case PlanStatusPending, PlanStatusAccepted, PlanStatusRejected, PlanStatusCancelled:
		return PlanStatus(s), nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown plan status")
}

func (s PlanStatus) String() string { return string(s) }

// IsValid reports whether s is one of the known statuses.
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusPending, PlanStatusAccepted, PlanStatusRejected, PlanStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func (s PlanStatus) IsTerminal() bool { return s != PlanStatusPending }

// CanTransitionTo reports whether the state machine permits moving from s to
// next. Only Pending has outgoing edges.
func (s PlanStatus) CanTransitionTo(next PlanStatus) bool {
	if s != PlanStatusPending {
		return false
	}
	switch next {
	case PlanStatusAccepted, PlanStatusRejected, PlanStatusCancelled:
		return true
	}
	return false
}
