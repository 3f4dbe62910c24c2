package service

import (
	"context"
	"time"

	"seaplan/internal/plan/models"
	id "seaplan/pkg/domain"
	dErrors "seaplan/pkg/domain-errors"
)

// ListQuery is the caller-supplied filter specification. Nil fields impose no
// constraint. Format is carried here only so the role allow-list can veto it;
// rendering itself happens at the transport layer.
type ListQuery struct {
	Status   *id.PlanStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Format   *id.ExportFormat
}

// allowedFilters is the pure role -> allowed-filter-set mapping. Retrieval
// checks the query against it explicitly instead of selecting a validation
// schema at request time.
type allowedFilters struct {
	status     bool
	dateWindow bool
	format     bool
}

func filtersForRole(role id.Role) (allowedFilters, bool) {
	switch role {
	case id.RoleRequester:
		return allowedFilters{status: true, dateWindow: true, format: true}, true
	case id.RoleReviewer:
		return allowedFilters{status: true}, true
	}
	return allowedFilters{}, false
}

// List returns plans visible to the caller under the role-scoped filter
// rules. Requesters only ever see their own plans and may filter by status,
// an inclusive date window on the travel window start, and an export format.
// Reviewers see all owners but may filter by status only; a date window or
// export format from a reviewer is a forbidden usage error. An empty result
// set is CodeNotFound.
func (s *Service) List(ctx context.Context, callerID id.IdentityID, role id.Role, query ListQuery) ([]models.Plan, error) {
	allowed, ok := filtersForRole(role)
	if !ok {
		return nil, dErrors.New(dErrors.CodeForbidden, "role may not list navigation plans")
	}
	if (query.DateFrom != nil || query.DateTo != nil) && !allowed.dateWindow {
		return nil, dErrors.New(dErrors.CodeForbidden, "role may not filter by date window")
	}
	if query.Format != nil && !allowed.format {
		return nil, dErrors.New(dErrors.CodeForbidden, "role may not request an export format")
	}
	if query.Status != nil && !allowed.status {
		return nil, dErrors.New(dErrors.CodeForbidden, "role may not filter by status")
	}
	if query.DateFrom != nil && query.DateTo != nil && query.DateFrom.After(*query.DateTo) {
		return nil, dErrors.New(dErrors.CodeValidation, "date_from must not be after date_to")
	}

	filter := models.Filter{
		Status:   query.Status,
		DateFrom: query.DateFrom,
		DateTo:   query.DateTo,
	}
	if role == id.RoleRequester {
		owner := callerID
		filter.OwnerID = &owner
	}

	plans, err := s.store.FindMatching(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query plans")
	}
	if len(plans) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no navigation plans match the filter")
	}
	return plans, nil
}
