package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"seaplan/internal/geofence"
	"seaplan/internal/plan/models"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/sentinel"
)

type PlanStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *PlanStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestPlanStoreSuite(t *testing.T) {
	suite.Run(t, new(PlanStoreSuite))
}

func (s *PlanStoreSuite) newPlan(owner id.IdentityID) *models.Plan {
	now := time.Now()
	start := now.Add(72 * time.Hour)
	plan, err := models.NewPlan(id.NewPlanID(), owner, "VESSEL0001",
		[]geofence.Waypoint{{Lat: 43, Lon: 9}, {Lat: 43.5, Lon: 9.5}, {Lat: 43, Lon: 9}},
		start, start.Add(24*time.Hour), now, 48*time.Hour)
	s.Require().NoError(err)
	return plan
}

func (s *PlanStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds plan by ID", func() {
		plan := s.newPlan(id.NewIdentityID())
		s.Require().NoError(s.store.Create(s.ctx, plan))

		found, err := s.store.FindByID(s.ctx, plan.ID)
		s.Require().NoError(err)
		s.Equal(plan.VesselID, found.VesselID)
		s.Equal(id.PlanStatusPending, found.Status)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.NewPlanID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("rejects duplicate IDs", func() {
		plan := s.newPlan(id.NewIdentityID())
		s.Require().NoError(s.store.Create(s.ctx, plan))
		s.Require().ErrorIs(s.store.Create(s.ctx, plan), sentinel.ErrAlreadyUsed)
	})

	s.Run("lookups return copies", func() {
		plan := s.newPlan(id.NewIdentityID())
		s.Require().NoError(s.store.Create(s.ctx, plan))

		found, err := s.store.FindByID(s.ctx, plan.ID)
		s.Require().NoError(err)
		found.Route[0].Lat = -90
		found.Status = id.PlanStatusCancelled

		again, err := s.store.FindByID(s.ctx, plan.ID)
		s.Require().NoError(err)
		s.Equal(43.0, again.Route[0].Lat)
		s.Equal(id.PlanStatusPending, again.Status)
	})
}

func (s *PlanStoreSuite) TestExecute() {
	s.Run("applies the mutation when validation passes", func() {
		plan := s.newPlan(id.NewIdentityID())
		s.Require().NoError(s.store.Create(s.ctx, plan))

		updated, err := s.store.Execute(s.ctx, plan.ID,
			func(p *models.Plan) error { return p.CanDecide() },
			func(p *models.Plan) { p.ApplyApproval(time.Now()) },
		)
		s.Require().NoError(err)
		s.Equal(id.PlanStatusAccepted, updated.Status)
	})

	s.Run("validation failure aborts without mutation", func() {
		plan := s.newPlan(id.NewIdentityID())
		s.Require().NoError(s.store.Create(s.ctx, plan))

		sentinelErr := errors.New("nope")
		_, err := s.store.Execute(s.ctx, plan.ID,
			func(*models.Plan) error { return sentinelErr },
			func(p *models.Plan) { p.ApplyApproval(time.Now()) },
		)
		s.Require().ErrorIs(err, sentinelErr)

		found, err := s.store.FindByID(s.ctx, plan.ID)
		s.Require().NoError(err)
		s.Equal(id.PlanStatusPending, found.Status)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.Execute(s.ctx, id.NewPlanID(),
			func(*models.Plan) error { return nil },
			func(*models.Plan) {},
		)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *PlanStoreSuite) TestFindMatching() {
	owner := id.NewIdentityID()
	other := id.NewIdentityID()

	mine := s.newPlan(owner)
	theirs := s.newPlan(other)
	s.Require().NoError(s.store.Create(s.ctx, mine))
	s.Require().NoError(s.store.Create(s.ctx, theirs))

	s.Run("empty filter matches everything", func() {
		plans, err := s.store.FindMatching(s.ctx, models.Filter{})
		s.Require().NoError(err)
		s.Len(plans, 2)
	})

	s.Run("owner filter", func() {
		plans, err := s.store.FindMatching(s.ctx, models.Filter{OwnerID: &owner})
		s.Require().NoError(err)
		s.Require().Len(plans, 1)
		s.Equal(mine.ID, plans[0].ID)
	})

	s.Run("status filter", func() {
		_, err := s.store.Execute(s.ctx, mine.ID,
			func(*models.Plan) error { return nil },
			func(p *models.Plan) { p.ApplyCancellation(time.Now()) },
		)
		s.Require().NoError(err)

		cancelled := id.PlanStatusCancelled
		plans, err := s.store.FindMatching(s.ctx, models.Filter{Status: &cancelled})
		s.Require().NoError(err)
		s.Require().Len(plans, 1)
		s.Equal(mine.ID, plans[0].ID)
	})

	s.Run("date window bounds are inclusive", func() {
		from := mine.WindowStart
		to := mine.WindowStart
		plans, err := s.store.FindMatching(s.ctx, models.Filter{OwnerID: &owner, DateFrom: &from, DateTo: &to})
		s.Require().NoError(err)
		s.Len(plans, 1)

		past := mine.WindowStart.Add(-time.Minute)
		plans, err = s.store.FindMatching(s.ctx, models.Filter{OwnerID: &owner, DateTo: &past})
		s.Require().NoError(err)
		s.Empty(plans)
	})
}
