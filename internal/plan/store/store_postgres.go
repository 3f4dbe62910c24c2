package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"seaplan/internal/geofence"
	"seaplan/internal/plan/models"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/sentinel"
)

// Postgres persists plans in PostgreSQL. Execute wraps the validate-then-
// mutate sequence in a transaction with SELECT ... FOR UPDATE, giving status
// transitions the same linearizability the in-memory store gets from its
// mutex.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const planColumns = `id, owner_id, vessel_id, route, window_start, window_end, status, rejection_reason, created_at, updated_at`

func (s *Postgres) Create(ctx context.Context, plan *models.Plan) error {
	route, err := json.Marshal(plan.Route)
	if err != nil {
		return fmt.Errorf("marshal route: %w", err)
	}
	query := `
		INSERT INTO navigation_plans (id, owner_id, vessel_id, route, window_start, window_end, status, rejection_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		plan.ID.String(),
		plan.OwnerID.String(),
		plan.VesselID,
		route,
		plan.WindowStart,
		plan.WindowEnd,
		plan.Status.String(),
		plan.RejectionReason,
		plan.CreatedAt,
		plan.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, planID id.PlanID) (*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM navigation_plans WHERE id = $1`
	plan, err := scanPlan(s.db.QueryRowContext(ctx, query, planID.String()).Scan)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return plan, nil
}

// Execute locks the row, runs validate, applies mutate, and writes the
// mutable columns back, all in one transaction. A validation error rolls
// back and is returned unchanged.
func (s *Postgres) Execute(ctx context.Context, planID id.PlanID, validate func(*models.Plan) error, mutate func(*models.Plan)) (*models.Plan, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + planColumns + ` FROM navigation_plans WHERE id = $1 FOR UPDATE`
	plan, err := scanPlan(tx.QueryRowContext(ctx, query, planID.String()).Scan)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock plan: %w", err)
	}

	if err := validate(plan); err != nil {
		return nil, err
	}
	mutate(plan)

	update := `
		UPDATE navigation_plans
		SET status = $2, rejection_reason = $3, updated_at = $4
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update, plan.ID.String(), plan.Status.String(), plan.RejectionReason, plan.UpdatedAt); err != nil {
		return nil, fmt.Errorf("update plan: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit plan update: %w", err)
	}
	return plan, nil
}

// FindMatching builds the WHERE clause from the set filter fields. All
// constraints AND together; the date bounds are inclusive on window_start.
func (s *Postgres) FindMatching(ctx context.Context, filter models.Filter) ([]models.Plan, error) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)

	appendCond := func(expr string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(expr, len(args)))
	}
	if filter.OwnerID != nil {
		appendCond("owner_id = $%d", filter.OwnerID.String())
	}
	if filter.Status != nil {
		appendCond("status = $%d", filter.Status.String())
	}
	if filter.DateFrom != nil {
		appendCond("window_start >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		appendCond("window_start <= $%d", *filter.DateTo)
	}

	query := `SELECT ` + planColumns + ` FROM navigation_plans`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find matching plans: %w", err)
	}
	defer rows.Close()

	plans := make([]models.Plan, 0)
	for rows.Next() {
		plan, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("find matching plans: %w", err)
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find matching plans: %w", err)
	}
	return plans, nil
}

func scanPlan(scan func(...any) error) (*models.Plan, error) {
	var (
		plan     models.Plan
		rawID    string
		rawOwner string
		rawRoute []byte
		status   string
		reason   sql.NullString
	)
	err := scan(&rawID, &rawOwner, &plan.VesselID, &rawRoute, &plan.WindowStart, &plan.WindowEnd, &status, &reason, &plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return nil, err
	}

	planID, err := id.ParsePlanID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored plan id invalid: %w", err)
	}
	ownerID, err := id.ParseIdentityID(rawOwner)
	if err != nil {
		return nil, fmt.Errorf("stored owner id invalid: %w", err)
	}
	planStatus, err := id.ParsePlanStatus(status)
	if err != nil {
		return nil, fmt.Errorf("stored status invalid: %w", err)
	}
	var route []geofence.Waypoint
	if err := json.Unmarshal(rawRoute, &route); err != nil {
		return nil, fmt.Errorf("stored route invalid: %w", err)
	}

	plan.ID = planID
	plan.OwnerID = ownerID
	plan.Status = planStatus
	plan.Route = route
	if reason.Valid {
		plan.RejectionReason = &reason.String
	}
	return &plan, nil
}
