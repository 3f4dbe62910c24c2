package store

import (
	"context"
	"sync"

	"seaplan/internal/geofence"
	"seaplan/internal/zone/models"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/sentinel"
)

type coordKey struct {
	topLeft     geofence.Waypoint
	bottomRight geofence.Waypoint
}

func keyFor(z *models.Zone) coordKey {
	return coordKey{topLeft: z.TopLeft, bottomRight: z.BottomRight}
}

// InMemory keeps zones in a mutex-guarded map. The coordinate-pair index
// makes the uniqueness check and the write a single critical section.
type InMemory struct {
	mu         sync.RWMutex
	byID       map[id.ZoneID]models.Zone
	idsByCoord map[coordKey]id.ZoneID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:       make(map[id.ZoneID]models.Zone),
		idsByCoord: make(map[coordKey]id.ZoneID),
	}
}

// CreateIfCoordsAvailable persists a new zone, failing with
// sentinel.ErrAlreadyUsed when another zone occupies the same rectangle.
func (s *InMemory) CreateIfCoordsAvailable(_ context.Context, zone *models.Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := keyFor(zone)
	if _, exists := s.idsByCoord[key]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.byID[zone.ID] = *zone
	s.idsByCoord[key] = zone.ID
	return nil
}

// UpdateIfCoordsAvailable replaces the stored zone, failing with
// sentinel.ErrNotFound when the id is unknown and sentinel.ErrAlreadyUsed
// when the new rectangle collides with a different zone.
func (s *InMemory) UpdateIfCoordsAvailable(_ context.Context, zone *models.Zone) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[zone.ID]
	if !ok {
		return sentinel.ErrNotFound
	}

	key := keyFor(zone)
	if ownerID, taken := s.idsByCoord[key]; taken && ownerID != zone.ID {
		return sentinel.ErrAlreadyUsed
	}

	delete(s.idsByCoord, keyFor(&current))
	s.byID[zone.ID] = *zone
	s.idsByCoord[key] = zone.ID
	return nil
}

func (s *InMemory) Delete(_ context.Context, zoneID id.ZoneID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	zone, ok := s.byID[zoneID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byID, zoneID)
	delete(s.idsByCoord, keyFor(&zone))
	return nil
}

func (s *InMemory) FindByID(_ context.Context, zoneID id.ZoneID) (*models.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	zone, ok := s.byID[zoneID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &zone, nil
}

// ListAll returns every zone. The clearance check runs against the full set,
// so there is no pagination or spatial index here.
func (s *InMemory) ListAll(_ context.Context) ([]models.Zone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	zones := make([]models.Zone, 0, len(s.byID))
	for _, zone := range s.byID {
		zones = append(zones, zone)
	}
	return zones, nil
}
