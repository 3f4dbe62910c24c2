package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"seaplan/internal/identity/models"
	"seaplan/internal/identity/service"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/httputil"
	"seaplan/pkg/requestcontext"
)

// Service defines the interface for identity operations.
type Service interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	Recharge(ctx context.Context, targetID id.IdentityID, amount int) (int, error)
	Get(ctx context.Context, identityID id.IdentityID) (*models.Identity, error)
}

// Handler wires authentication and account endpoints to the identity service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public authentication endpoint.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

// RegisterAuthenticated mounts the self-service account endpoint.
func (h *Handler) RegisterAuthenticated(r chi.Router) {
	r.Get("/users/me", h.HandleMe)
}

// RegisterAdmin mounts the administrator-only recharge endpoint.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/users/{id}/credits", h.HandleRecharge)
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleMe handles GET /users/me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, err := h.service.Get(ctx, requestcontext.IdentityID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, identity)
}

// HandleRecharge handles PUT /users/{id}/credits.
func (h *Handler) HandleRecharge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	targetID, err := id.ParseIdentityID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RechargeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	balance, err := h.service.Recharge(ctx, targetID, req.Amount)
	if err != nil {
		h.logger.ErrorContext(ctx, "credit recharge failed",
			"request_id", requestID,
			"target_id", targetID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]int{"credit_balance": balance})
}
