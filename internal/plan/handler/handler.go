package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"seaplan/internal/export"
	"seaplan/internal/plan/models"
	"seaplan/internal/plan/service"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/httputil"
	"seaplan/pkg/requestcontext"
)

// Service defines the interface for plan lifecycle operations.
type Service interface {
	Submit(ctx context.Context, ownerID id.IdentityID, input service.SubmitInput) (*models.Plan, error)
	Cancel(ctx context.Context, planID id.PlanID, caller id.IdentityID) (*models.Plan, error)
	Approve(ctx context.Context, planID id.PlanID) (*models.Plan, error)
	Reject(ctx context.Context, planID id.PlanID, reason string) (*models.Plan, error)
	List(ctx context.Context, callerID id.IdentityID, role id.Role, query service.ListQuery) ([]models.Plan, error)
}

// Handler wires navigation-plan endpoints to the plan service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRequester mounts the owner-side endpoints. The caller wraps the
// router group with authentication and the requester role gate.
func (h *Handler) RegisterRequester(r chi.Router) {
	r.Post("/navigation-plans", h.HandleSubmit)
	r.Delete("/navigation-plans/{id}", h.HandleCancel)
}

// RegisterShared mounts retrieval for requesters and reviewers.
func (h *Handler) RegisterShared(r chi.Router) {
	r.Get("/navigation-plans", h.HandleList)
}

// RegisterReviewer mounts the review-decision endpoints.
func (h *Handler) RegisterReviewer(r chi.Router) {
	r.Patch("/navigation-plans/{id}/accepted", h.HandleApprove)
	r.Patch("/navigation-plans/{id}/rejected", h.HandleReject)
}

// HandleSubmit handles POST /navigation-plans.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	ownerID := requestcontext.IdentityID(ctx)

	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	plan, err := h.service.Submit(ctx, ownerID, req.Input())
	if err != nil {
		h.logger.ErrorContext(ctx, "plan submission failed",
			"request_id", requestID,
			"owner_id", ownerID,
			"vessel_id", req.VesselID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, plan)
}

// HandleCancel handles DELETE /navigation-plans/{id}. Cancellation is a
// status change; the record stays.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	planID, ok := planIDFromPath(w, r)
	if !ok {
		return
	}
	plan, err := h.service.Cancel(ctx, planID, requestcontext.IdentityID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "plan cancellation failed",
			"request_id", requestcontext.RequestID(ctx),
			"plan_id", planID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, plan)
}

// HandleApprove handles PATCH /navigation-plans/{id}/accepted.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	planID, ok := planIDFromPath(w, r)
	if !ok {
		return
	}
	plan, err := h.service.Approve(ctx, planID)
	if err != nil {
		h.logger.ErrorContext(ctx, "plan approval failed",
			"request_id", requestcontext.RequestID(ctx),
			"plan_id", planID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, plan)
}

// HandleReject handles PATCH /navigation-plans/{id}/rejected. The body is
// optional; a missing body rejects with an empty reason.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	planID, ok := planIDFromPath(w, r)
	if !ok {
		return
	}

	reason := ""
	if r.ContentLength != 0 {
		req, ok := httputil.DecodeAndPrepare[RejectRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		reason = req.Reason
	}

	plan, err := h.service.Reject(ctx, planID, reason)
	if err != nil {
		h.logger.ErrorContext(ctx, "plan rejection failed",
			"request_id", requestID,
			"plan_id", planID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, plan)
}

// HandleList handles GET /navigation-plans. When the caller requests an
// export format the filtered collection is rendered once and returned as a
// byte stream.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query, err := parseListQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	plans, err := h.service.List(ctx, requestcontext.IdentityID(ctx), requestcontext.Role(ctx), query)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if query.Format == nil {
		httputil.WriteJSON(w, http.StatusOK, plans)
		return
	}

	renderer, err := export.ForFormat(*query.Format)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := renderer.Render(plans)
	if err != nil {
		h.logger.ErrorContext(ctx, "plan export failed",
			"request_id", requestcontext.RequestID(ctx),
			"format", *query.Format,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func planIDFromPath(w http.ResponseWriter, r *http.Request) (id.PlanID, bool) {
	planID, err := id.ParsePlanID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.PlanID{}, false
	}
	return planID, true
}
