package service

import (
	"context"
	"errors"
	"log/slog"

	"seaplan/internal/geofence"
	"seaplan/internal/zone/models"
	id "seaplan/pkg/domain"
	dErrors "seaplan/pkg/domain-errors"
	"seaplan/pkg/platform/sentinel"
	"seaplan/pkg/requestcontext"
)

// Store is the consumer-side persistence contract for zones. The coordinate
// uniqueness check is atomic with the create or update it guards.
type Store interface {
	CreateIfCoordsAvailable(ctx context.Context, zone *models.Zone) error
	UpdateIfCoordsAvailable(ctx context.Context, zone *models.Zone) error
	Delete(ctx context.Context, zoneID id.ZoneID) error
	FindByID(ctx context.Context, zoneID id.ZoneID) (*models.Zone, error)
	ListAll(ctx context.Context) ([]models.Zone, error)
}

// Service manages the restricted-zone registry.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("zone service: store is required")
	}
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create registers a new restricted zone. Fails with CodeConflict when an
// existing zone occupies the identical rectangle.
func (s *Service) Create(ctx context.Context, topLeft, bottomRight geofence.Waypoint) (*models.Zone, error) {
	zone, err := models.NewZone(id.NewZoneID(), topLeft, bottomRight, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateIfCoordsAvailable(ctx, zone); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a zone with these coordinates already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create zone")
	}

	s.log(ctx, "zone_created", "zone_id", zone.ID)
	return zone, nil
}

// Update replaces the zone's rectangle in full. Fails with CodeNotFound when
// the id is unknown and CodeConflict when the new rectangle collides with a
// different zone.
func (s *Service) Update(ctx context.Context, zoneID id.ZoneID, topLeft, bottomRight geofence.Waypoint) (*models.Zone, error) {
	current, err := s.Get(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	replacement, err := models.NewZone(zoneID, topLeft, bottomRight, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	replacement.CreatedAt = current.CreatedAt

	if err := s.store.UpdateIfCoordsAvailable(ctx, replacement); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "zone not found")
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.New(dErrors.CodeConflict, "a zone with these coordinates already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update zone")
	}

	s.log(ctx, "zone_updated", "zone_id", zoneID)
	return replacement, nil
}

// Delete removes the zone. Fails with CodeNotFound when the id is unknown.
func (s *Service) Delete(ctx context.Context, zoneID id.ZoneID) error {
	if zoneID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "zone id is required")
	}
	if err := s.store.Delete(ctx, zoneID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "zone not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete zone")
	}

	s.log(ctx, "zone_deleted", "zone_id", zoneID)
	return nil
}

func (s *Service) Get(ctx context.Context, zoneID id.ZoneID) (*models.Zone, error) {
	if zoneID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "zone id is required")
	}
	zone, err := s.store.FindByID(ctx, zoneID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "zone not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load zone")
	}
	return zone, nil
}

// List returns every registered zone. Fails with CodeNotFound when the
// registry is empty.
func (s *Service) List(ctx context.Context) ([]models.Zone, error) {
	zones, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list zones")
	}
	if len(zones) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "no restricted zones registered")
	}
	return zones, nil
}

// Rects returns the full zone set as rectangles for the clearance check. An
// empty registry yields an empty slice, not an error: submission against zero
// zones is legitimate.
func (s *Service) Rects(ctx context.Context) ([]geofence.Rect, error) {
	zones, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list zones")
	}
	rects := make([]geofence.Rect, 0, len(zones))
	for i := range zones {
		rects = append(rects, zones[i].Rect())
	}
	return rects, nil
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
