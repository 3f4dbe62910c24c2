package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"seaplan/internal/identity/models"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/sentinel"
)

// Postgres persists identities in PostgreSQL. The store is pure I/O; role
// and balance rules belong to the services.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const identityColumns = `id, email, password_hash, role, credit_balance, created_at, updated_at`

func (s *Postgres) CreateIfEmailAvailable(ctx context.Context, identity *models.Identity) error {
	query := `
		INSERT INTO identities (id, email, password_hash, role, credit_balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		identity.ID.String(),
		strings.ToLower(identity.Email),
		identity.PasswordHash,
		identity.Role.String(),
		identity.CreditBalance,
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, identityID id.IdentityID) (*models.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`
	return scanIdentity(s.db.QueryRowContext(ctx, query, identityID.String()))
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE email = $1`
	return scanIdentity(s.db.QueryRowContext(ctx, query, strings.ToLower(email)))
}

// DebitIfSufficient performs the check-then-decrement as one conditional
// UPDATE so concurrent debits for the same identity serialize in the
// database. Zero rows affected means the balance did not cover the amount
// (or the identity is absent; callers resolve the identity first).
func (s *Postgres) DebitIfSufficient(ctx context.Context, identityID id.IdentityID, amount int) (int, error) {
	query := `
		UPDATE identities
		SET credit_balance = credit_balance - $2, updated_at = NOW()
		WHERE id = $1 AND credit_balance >= $2
		RETURNING credit_balance
	`
	var balance int
	err := s.db.QueryRowContext(ctx, query, identityID.String(), amount).Scan(&balance)
	if err == sql.ErrNoRows {
		// Distinguish missing identity from insufficient balance.
		if _, ferr := s.FindByID(ctx, identityID); ferr != nil {
			return 0, ferr
		}
		return 0, sentinel.ErrInsufficient
	}
	if err != nil {
		return 0, fmt.Errorf("debit if sufficient: %w", err)
	}
	return balance, nil
}

func (s *Postgres) Credit(ctx context.Context, identityID id.IdentityID, amount int) (int, error) {
	query := `
		UPDATE identities
		SET credit_balance = credit_balance + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING credit_balance
	`
	var balance int
	err := s.db.QueryRowContext(ctx, query, identityID.String(), amount).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	return balance, nil
}

func (s *Postgres) Balance(ctx context.Context, identityID id.IdentityID) (int, error) {
	var balance int
	err := s.db.QueryRowContext(ctx, `SELECT credit_balance FROM identities WHERE id = $1`, identityID.String()).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return balance, nil
}

func scanIdentity(row *sql.Row) (*models.Identity, error) {
	var (
		identity models.Identity
		rawID    string
		rawRole  string
	)
	err := row.Scan(&rawID, &identity.Email, &identity.PasswordHash, &rawRole, &identity.CreditBalance, &identity.CreatedAt, &identity.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan identity: %w", err)
	}

	identityID, err := id.ParseIdentityID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored identity id invalid: %w", err)
	}
	role, err := id.ParseRole(rawRole)
	if err != nil {
		return nil, fmt.Errorf("stored role invalid: %w", err)
	}
	identity.ID = identityID
	identity.Role = role
	return &identity, nil
}
