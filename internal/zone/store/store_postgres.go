package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"seaplan/internal/zone/models"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/sentinel"
)

// Postgres persists zones in PostgreSQL. A unique index over the four corner
// coordinates makes the rectangle uniqueness check atomic with the write.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const zoneColumns = `id, top_left_lat, top_left_lon, bottom_right_lat, bottom_right_lon, created_at, updated_at`

func (s *Postgres) CreateIfCoordsAvailable(ctx context.Context, zone *models.Zone) error {
	query := `
		INSERT INTO restricted_zones (id, top_left_lat, top_left_lon, bottom_right_lat, bottom_right_lon, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		zone.ID.String(),
		zone.TopLeft.Lat,
		zone.TopLeft.Lon,
		zone.BottomRight.Lat,
		zone.BottomRight.Lon,
		zone.CreatedAt,
		zone.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create zone: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateIfCoordsAvailable(ctx context.Context, zone *models.Zone) error {
	query := `
		UPDATE restricted_zones
		SET top_left_lat = $2, top_left_lon = $3, bottom_right_lat = $4, bottom_right_lon = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		zone.ID.String(),
		zone.TopLeft.Lat,
		zone.TopLeft.Lon,
		zone.BottomRight.Lat,
		zone.BottomRight.Lon,
		zone.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("update zone: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update zone: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, zoneID id.ZoneID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM restricted_zones WHERE id = $1`, zoneID.String())
	if err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, zoneID id.ZoneID) (*models.Zone, error) {
	query := `SELECT ` + zoneColumns + ` FROM restricted_zones WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, zoneID.String())
	zone, err := scanZone(row.Scan)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find zone: %w", err)
	}
	return zone, nil
}

func (s *Postgres) ListAll(ctx context.Context) ([]models.Zone, error) {
	query := `SELECT ` + zoneColumns + ` FROM restricted_zones ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()

	zones := make([]models.Zone, 0)
	for rows.Next() {
		zone, err := scanZone(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list zones: %w", err)
		}
		zones = append(zones, *zone)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	return zones, nil
}

func scanZone(scan func(...any) error) (*models.Zone, error) {
	var (
		zone  models.Zone
		rawID string
	)
	err := scan(&rawID, &zone.TopLeft.Lat, &zone.TopLeft.Lon, &zone.BottomRight.Lat, &zone.BottomRight.Lon, &zone.CreatedAt, &zone.UpdatedAt)
	if err != nil {
		return nil, err
	}
	zoneID, err := id.ParseZoneID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored zone id invalid: %w", err)
	}
	zone.ID = zoneID
	return &zone, nil
}
