package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"seaplan/internal/geofence"
	"seaplan/internal/zone/models"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/sentinel"
)

type ZoneStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ZoneStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *ZoneStoreSuite) SetupSubTest() {
	s.SetupTest()
}

func TestZoneStoreSuite(t *testing.T) {
	suite.Run(t, new(ZoneStoreSuite))
}

func (s *ZoneStoreSuite) newZone(topLeft, bottomRight geofence.Waypoint) *models.Zone {
	zone, err := models.NewZone(id.NewZoneID(), topLeft, bottomRight, time.Now())
	s.Require().NoError(err)
	return zone
}

func (s *ZoneStoreSuite) adriatic() *models.Zone {
	return s.newZone(geofence.Waypoint{Lat: 45, Lon: 10}, geofence.Waypoint{Lat: 44, Lon: 11})
}

func (s *ZoneStoreSuite) TestCreationAndLookups() {
	s.Run("creates and finds zone by ID", func() {
		zone := s.adriatic()
		s.Require().NoError(s.store.CreateIfCoordsAvailable(s.ctx, zone))

		found, err := s.store.FindByID(s.ctx, zone.ID)
		s.Require().NoError(err)
		s.Equal(zone.TopLeft, found.TopLeft)
		s.Equal(zone.BottomRight, found.BottomRight)
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		_, err := s.store.FindByID(s.ctx, id.NewZoneID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ZoneStoreSuite) TestCoordinateUniqueness() {
	s.Run("rejects duplicate rectangle", func() {
		s.Require().NoError(s.store.CreateIfCoordsAvailable(s.ctx, s.adriatic()))

		err := s.store.CreateIfCoordsAvailable(s.ctx, s.adriatic())
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("update collision with a different zone", func() {
		first := s.adriatic()
		s.Require().NoError(s.store.CreateIfCoordsAvailable(s.ctx, first))

		second := s.newZone(geofence.Waypoint{Lat: 46, Lon: 12}, geofence.Waypoint{Lat: 45, Lon: 13})
		s.Require().NoError(s.store.CreateIfCoordsAvailable(s.ctx, second))

		second.TopLeft = first.TopLeft
		second.BottomRight = first.BottomRight
		err := s.store.UpdateIfCoordsAvailable(s.ctx, second)
		s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)
	})

	s.Run("update keeping its own rectangle succeeds", func() {
		zone := s.adriatic()
		s.Require().NoError(s.store.CreateIfCoordsAvailable(s.ctx, zone))
		s.Require().NoError(s.store.UpdateIfCoordsAvailable(s.ctx, zone))
	})

	s.Run("update frees the previous rectangle", func() {
		zone := s.adriatic()
		s.Require().NoError(s.store.CreateIfCoordsAvailable(s.ctx, zone))

		zone.TopLeft = geofence.Waypoint{Lat: 46, Lon: 12}
		zone.BottomRight = geofence.Waypoint{Lat: 45, Lon: 13}
		s.Require().NoError(s.store.UpdateIfCoordsAvailable(s.ctx, zone))

		// The original rectangle is available again.
		s.Require().NoError(s.store.CreateIfCoordsAvailable(s.ctx, s.adriatic()))
	})
}

func (s *ZoneStoreSuite) TestDelete() {
	s.Run("removes zone and frees its rectangle", func() {
		zone := s.adriatic()
		s.Require().NoError(s.store.CreateIfCoordsAvailable(s.ctx, zone))
		s.Require().NoError(s.store.Delete(s.ctx, zone.ID))

		_, err := s.store.FindByID(s.ctx, zone.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)

		s.Require().NoError(s.store.CreateIfCoordsAvailable(s.ctx, s.adriatic()))
	})

	s.Run("returns ErrNotFound for unknown ID", func() {
		s.Require().ErrorIs(s.store.Delete(s.ctx, id.NewZoneID()), sentinel.ErrNotFound)
	})
}

func (s *ZoneStoreSuite) TestListAll() {
	s.Run("empty store lists nothing", func() {
		zones, err := s.store.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Empty(zones)
	})

	s.Run("lists every zone", func() {
		s.Require().NoError(s.store.CreateIfCoordsAvailable(s.ctx, s.adriatic()))
		s.Require().NoError(s.store.CreateIfCoordsAvailable(s.ctx,
			s.newZone(geofence.Waypoint{Lat: 46, Lon: 12}, geofence.Waypoint{Lat: 45, Lon: 13})))

		zones, err := s.store.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Len(zones, 2)
	})
}
