package models

import (
	"strings"
	"time"

	id "seaplan/pkg/domain"
	dErrors "seaplan/pkg/domain-errors"
)

// Identity is the aggregate root for a user account.
//
// Invariants:
//   - Email is non-empty and stored lowercased
//   - Role is one of the closed role set
//   - CreditBalance is meaningful only for requesters; any other role holds
//     a zero balance, enforced here at construction rather than by a
//     persistence-layer hook
type Identity struct {
	ID            id.IdentityID `json:"id"`
	Email         string        `json:"email"`
	PasswordHash  string        `json:"-"`
	Role          id.Role       `json:"role"`
	CreditBalance int           `json:"credit_balance,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// NewIdentity constructs an Identity, validating invariants. Non-requester
// roles always start with a zero credit balance regardless of the argument.
func NewIdentity(identityID id.IdentityID, email, passwordHash string, role id.Role, creditBalance int, now time.Time) (*Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown role")
	}
	if creditBalance < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "credit balance cannot be negative")
	}
	if !role.HoldsBalance() {
		creditBalance = 0
	}
	return &Identity{
		ID:            identityID,
		Email:         email,
		PasswordHash:  passwordHash,
		Role:          role,
		CreditBalance: creditBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// HoldsBalance reports whether this identity's role carries a credit balance.
func (i *Identity) HoldsBalance() bool { return i.Role.HoldsBalance() }
