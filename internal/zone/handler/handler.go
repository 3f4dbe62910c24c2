package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"seaplan/internal/geofence"
	"seaplan/internal/zone/models"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/httputil"
	"seaplan/pkg/requestcontext"
)

// Service defines the interface for zone registry operations.
type Service interface {
	Create(ctx context.Context, topLeft, bottomRight geofence.Waypoint) (*models.Zone, error)
	Update(ctx context.Context, zoneID id.ZoneID, topLeft, bottomRight geofence.Waypoint) (*models.Zone, error)
	Delete(ctx context.Context, zoneID id.ZoneID) error
	Get(ctx context.Context, zoneID id.ZoneID) (*models.Zone, error)
	List(ctx context.Context) ([]models.Zone, error)
}

// Handler wires restricted-zone endpoints to the zone service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the public read endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/restricted-zones", h.HandleList)
	r.Get("/restricted-zones/{id}", h.HandleGet)
}

// RegisterProtected mounts the reviewer-only mutation endpoints. The caller
// wraps the router group with authentication and the reviewer role gate.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/restricted-zones", h.HandleCreate)
	r.Put("/restricted-zones/{id}", h.HandleUpdate)
	r.Delete("/restricted-zones/{id}", h.HandleDelete)
}

// HandleCreate handles POST /restricted-zones.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ZoneRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	zone, err := h.service.Create(ctx, req.TopLeft.waypoint(), req.BottomRight.waypoint())
	if err != nil {
		h.logger.ErrorContext(ctx, "zone creation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, zone)
}

// HandleUpdate handles PUT /restricted-zones/{id}. The body replaces the
// zone's rectangle in full.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	zoneID, ok := zoneIDFromPath(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ZoneRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	zone, err := h.service.Update(ctx, zoneID, req.TopLeft.waypoint(), req.BottomRight.waypoint())
	if err != nil {
		h.logger.ErrorContext(ctx, "zone update failed",
			"request_id", requestID,
			"zone_id", zoneID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, zone)
}

// HandleDelete handles DELETE /restricted-zones/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	zoneID, ok := zoneIDFromPath(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, zoneID); err != nil {
		h.logger.ErrorContext(ctx, "zone deletion failed",
			"request_id", requestcontext.RequestID(ctx),
			"zone_id", zoneID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleGet handles GET /restricted-zones/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	zoneID, ok := zoneIDFromPath(w, r)
	if !ok {
		return
	}
	zone, err := h.service.Get(ctx, zoneID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, zone)
}

// HandleList handles GET /restricted-zones.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	zones, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, zones)
}

func zoneIDFromPath(w http.ResponseWriter, r *http.Request) (id.ZoneID, bool) {
	zoneID, err := id.ParseZoneID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ZoneID{}, false
	}
	return zoneID, true
}
