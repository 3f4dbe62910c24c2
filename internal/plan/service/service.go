package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"seaplan/internal/audit"
	"seaplan/internal/geofence"
	"seaplan/internal/plan/models"
	"seaplan/internal/platform/metrics"
	id "seaplan/pkg/domain"
	dErrors "seaplan/pkg/domain-errors"
	"seaplan/pkg/platform/sentinel"
	"seaplan/pkg/requestcontext"
)

// Store is the consumer-side persistence contract for plans. Execute holds
// the store's lock (mutex or FOR UPDATE) across validation and mutation so
// concurrent transitions on one plan serialize.
type Store interface {
	Create(ctx context.Context, plan *models.Plan) error
	FindByID(ctx context.Context, planID id.PlanID) (*models.Plan, error)
	Execute(ctx context.Context, planID id.PlanID, validate func(*models.Plan) error, mutate func(*models.Plan)) (*models.Plan, error)
	FindMatching(ctx context.Context, filter models.Filter) ([]models.Plan, error)
}

// Ledger gates admission on the submitter's credit balance. TryDebit resolves
// the identity itself, so submission needs no separate identity lookup.
type Ledger interface {
	TryDebit(ctx context.Context, identityID id.IdentityID, amount int) (int, error)
	Credit(ctx context.Context, identityID id.IdentityID, amount int) (int, error)
}

// ZoneSource supplies the full restricted-zone set for the clearance check.
type ZoneSource interface {
	Rects(ctx context.Context) ([]geofence.Rect, error)
}

// Service orchestrates the navigation-plan lifecycle: admission, review
// decisions, cancellation, and role-scoped retrieval.
type Service struct {
	store          Store
	ledger         Ledger
	zones          ZoneSource
	admissionCost  int
	minLead        time.Duration
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher *audit.Publisher
	tracer         trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) { s.auditPublisher = p }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

func New(store Store, ledger Ledger, zones ZoneSource, admissionCost int, minLead time.Duration, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("plan service: store is required")
	}
	if ledger == nil {
		return nil, errors.New("plan service: ledger is required")
	}
	if zones == nil {
		return nil, errors.New("plan service: zone source is required")
	}
	if admissionCost <= 0 {
		return nil, errors.New("plan service: admission cost must be positive")
	}
	s := &Service{
		store:         store,
		ledger:        ledger,
		zones:         zones,
		admissionCost: admissionCost,
		minLead:       minLead,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// SubmitInput carries the submission fields after transport-level parsing.
type SubmitInput struct {
	VesselID    string
	Route       []geofence.Waypoint
	WindowStart time.Time
	WindowEnd   time.Time
}

// Submit admits a navigation plan. The debit commits before persistence is
// attempted, so any failure after it refunds the admission cost before the
// error surfaces:
//
//	validate input -> debit credits -> clearance check -> persist pending
func (s *Service) Submit(ctx context.Context, ownerID id.IdentityID, input SubmitInput) (*models.Plan, error) {
	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "plan.submit",
			trace.WithAttributes(attribute.String("owner_id", ownerID.String())))
		defer span.End()
	}

	now := requestcontext.Now(ctx)
	plan, err := models.NewPlan(id.NewPlanID(), ownerID, input.VesselID, input.Route, input.WindowStart, input.WindowEnd, now, s.minLead)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.TryDebit(ctx, ownerID, s.admissionCost); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInsufficientCredits) {
			s.count(func(m *metrics.Metrics) { m.DebitsDenied.Inc() })
		}
		return nil, err
	}

	rects, err := s.zones.Rects(ctx)
	if err != nil {
		s.refund(ctx, ownerID)
		return nil, err
	}
	if !geofence.RouteClearsZones(plan.Route, rects) {
		s.refund(ctx, ownerID)
		s.count(func(m *metrics.Metrics) { m.RoutesRestricted.Inc() })
		return nil, dErrors.New(dErrors.CodeRouteRestricted, "route crosses a restricted zone")
	}

	if err := s.store.Create(ctx, plan); err != nil {
		s.refund(ctx, ownerID)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist plan")
	}

	s.count(func(m *metrics.Metrics) { m.PlansSubmitted.Inc() })
	s.audit(ctx, ownerID, "plan_submitted", plan.ID.String(), "")
	s.log(ctx, "plan_submitted", "plan_id", plan.ID, "owner_id", ownerID, "vessel_id", plan.VesselID)
	return plan, nil
}

// refund compensates a committed debit after a later submission step fails.
// A failed refund is logged at error level; the original failure still
// surfaces to the caller.
func (s *Service) refund(ctx context.Context, ownerID id.IdentityID) {
	if _, err := s.ledger.Credit(ctx, ownerID, s.admissionCost); err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "admission refund failed",
				"request_id", requestcontext.RequestID(ctx),
				"owner_id", ownerID,
				"amount", s.admissionCost,
				"error", err,
			)
		}
		return
	}
	s.count(func(m *metrics.Metrics) { m.SubmitCompensated.Inc() })
	s.log(ctx, "admission_refunded", "owner_id", ownerID, "amount", s.admissionCost)
}

// Cancel transitions the caller's pending plan to cancelled.
func (s *Service) Cancel(ctx context.Context, planID id.PlanID, caller id.IdentityID) (*models.Plan, error) {
	if err := requirePlanID(planID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	plan, err := s.store.Execute(ctx, planID,
		func(p *models.Plan) error { return p.CanCancel(caller) },
		func(p *models.Plan) { p.ApplyCancellation(now) },
	)
	if err != nil {
		return nil, wrapPlanErr(err)
	}

	s.count(func(m *metrics.Metrics) { m.PlansCancelled.Inc() })
	s.audit(ctx, caller, "plan_cancelled", plan.ID.String(), "")
	s.log(ctx, "plan_cancelled", "plan_id", plan.ID, "owner_id", plan.OwnerID)
	return plan, nil
}

// Approve records an accepting review decision on a pending plan. The
// rejection reason is never touched.
func (s *Service) Approve(ctx context.Context, planID id.PlanID) (*models.Plan, error) {
	if err := requirePlanID(planID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	plan, err := s.store.Execute(ctx, planID,
		func(p *models.Plan) error { return p.CanDecide() },
		func(p *models.Plan) { p.ApplyApproval(now) },
	)
	if err != nil {
		return nil, wrapPlanErr(err)
	}

	s.count(func(m *metrics.Metrics) { m.PlansApproved.Inc() })
	s.audit(ctx, requestcontext.IdentityID(ctx), "plan_approved", plan.ID.String(), "")
	s.log(ctx, "plan_approved", "plan_id", plan.ID, "owner_id", plan.OwnerID)
	return plan, nil
}

// Reject records a rejecting review decision with a free-text reason, stored
// verbatim. An empty reason is allowed.
func (s *Service) Reject(ctx context.Context, planID id.PlanID, reason string) (*models.Plan, error) {
	if err := requirePlanID(planID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	plan, err := s.store.Execute(ctx, planID,
		func(p *models.Plan) error { return p.CanDecide() },
		func(p *models.Plan) { p.ApplyRejection(reason, now) },
	)
	if err != nil {
		return nil, wrapPlanErr(err)
	}

	s.count(func(m *metrics.Metrics) { m.PlansRejected.Inc() })
	s.audit(ctx, requestcontext.IdentityID(ctx), "plan_rejected", plan.ID.String(), reason)
	s.log(ctx, "plan_rejected", "plan_id", plan.ID, "owner_id", plan.OwnerID)
	return plan, nil
}

func requirePlanID(planID id.PlanID) error {
	if planID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "plan id is required")
	}
	return nil
}

func wrapPlanErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "plan not found")
	}
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "plan store failure")
}

func (s *Service) count(inc func(*metrics.Metrics)) {
	if s.metrics != nil {
		inc(s.metrics)
	}
}

func (s *Service) audit(ctx context.Context, actorID id.IdentityID, action, subject, detail string) {
	if s.auditPublisher == nil {
		return
	}
	event := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		ActorID:   actorID.String(),
		Action:    action,
		Subject:   subject,
		Detail:    detail,
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"request_id", requestcontext.RequestID(ctx),
			"action", action,
			"error", err,
		)
	}
}

func (s *Service) log(ctx context.Context, event string, attrs ...any) {
	if s.logger == nil {
		return
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attrs = append(attrs, "request_id", requestID)
	}
	attrs = append(attrs, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, attrs...)
}
