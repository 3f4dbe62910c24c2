package models

import (
	"time"

	id "seaplan/pkg/domain"
)

// Filter selects plans for retrieval. Nil fields impose no constraint; set
// fields combine with logical AND. DateFrom and DateTo bound WindowStart
// inclusively at both ends.
type Filter struct {
	OwnerID  *id.IdentityID
	Status   *id.PlanStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// Matches reports whether p satisfies every set constraint.
func (f Filter) Matches(p *Plan) bool {
	if f.OwnerID != nil && p.OwnerID != *f.OwnerID {
		return false
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.DateFrom != nil && p.WindowStart.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && p.WindowStart.After(*f.DateTo) {
		return false
	}
	return true
}
