package store

import (
	"context"
	"sort"
	"sync"

	"seaplan/internal/plan/models"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/sentinel"
)

// InMemory keeps plans in a mutex-guarded map. Execute holds the lock across
// validation and mutation so racing status transitions serialize and the
// loser observes the winner's state.
type InMemory struct {
	mu   sync.RWMutex
	byID map[id.PlanID]models.Plan
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.PlanID]models.Plan)}
}

func (s *InMemory) Create(_ context.Context, plan *models.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[plan.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.byID[plan.ID] = clone(plan)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, planID id.PlanID) (*models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.byID[planID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := clone(&plan)
	return &out, nil
}

// Execute runs validate then mutate on the stored plan under one lock.
// A validation error aborts without mutation and is returned unchanged.
// Returns a copy of the plan as mutated.
func (s *InMemory) Execute(_ context.Context, planID id.PlanID, validate func(*models.Plan) error, mutate func(*models.Plan)) (*models.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.byID[planID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(&plan); err != nil {
		return nil, err
	}
	mutate(&plan)
	s.byID[planID] = clone(&plan)
	out := clone(&plan)
	return &out, nil
}

// FindMatching returns every plan satisfying the filter, ordered by creation
// time. A linear scan is fine at this scale.
func (s *InMemory) FindMatching(_ context.Context, filter models.Filter) ([]models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := make([]models.Plan, 0)
	for _, plan := range s.byID {
		if filter.Matches(&plan) {
			plans = append(plans, clone(&plan))
		}
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.Before(plans[j].CreatedAt)
	})
	return plans, nil
}

// clone copies the plan including its route slice so callers never share
// backing arrays with the store.
func clone(p *models.Plan) models.Plan {
	out := *p
	out.Route = append(out.Route[:0:0], p.Route...)
	if p.RejectionReason != nil {
		reason := *p.RejectionReason
		out.RejectionReason = &reason
	}
	return out
}
