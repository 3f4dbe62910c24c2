// Package service implements the credit ledger: it gates plan admission on a
// per-requester balance and accounts for every adjustment.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"seaplan/internal/identity/models"
	id "seaplan/pkg/domain"
	dErrors "seaplan/pkg/domain-errors"
	"seaplan/pkg/platform/sentinel"
	"seaplan/pkg/requestcontext"
)

// Store provides the atomic balance primitives. Implementations must make
// DebitIfSufficient a single serialized check-then-decrement per identity: a
// mutex in memory, a conditional UPDATE in postgres, a Lua script in redis.
type Store interface {
	DebitIfSufficient(ctx context.Context, identityID id.IdentityID, amount int) (newBalance int, err error)
	Credit(ctx context.Context, identityID id.IdentityID, amount int) (newBalance int, err error)
	Balance(ctx context.Context, identityID id.IdentityID) (int, error)
}

// IdentityLookup resolves identities for role eligibility checks.
type IdentityLookup interface {
	FindByID(ctx context.Context, identityID id.IdentityID) (*models.Identity, error)
}

type Service struct {
	store      Store
	identities IdentityLookup
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, identities IdentityLookup, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("ledger store is required")
	}
	if identities == nil {
		return nil, fmt.Errorf("identity lookup is required")
	}
	s := &Service{store: store, identities: identities}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TryDebit withdraws amount from the identity's balance if it is covered,
// returning the new balance. Only requesters carry a balance; any other role
// is a usage error. A denied debit performs no mutation.
func (s *Service) TryDebit(ctx context.Context, identityID id.IdentityID, amount int) (int, error) {
	if amount <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "debit amount must be positive")
	}

	identity, err := s.lookupBalanceHolder(ctx, identityID)
	if err != nil {
		return 0, err
	}

	balance, err := s.store.DebitIfSufficient(ctx, identity.ID, amount)
	if errors.Is(err, sentinel.ErrInsufficient) {
		return 0, dErrors.New(dErrors.CodeInsufficientCredits, "credit balance does not cover the admission cost")
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return 0, dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to debit credits")
	}

	s.log(ctx, "credits_debited", "identity_id", identity.ID, "amount", amount, "balance", balance)
	return balance, nil
}

// Credit adds amount to the identity's balance, returning the new balance.
// Used for administrator recharges and for submit compensation refunds.
func (s *Service) Credit(ctx context.Context, identityID id.IdentityID, amount int) (int, error) {
	if amount <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "credit amount must be positive")
	}

	identity, err := s.lookupBalanceHolder(ctx, identityID)
	if err != nil {
		return 0, err
	}

	balance, err := s.store.Credit(ctx, identity.ID, amount)
	if errors.Is(err, sentinel.ErrNotFound) {
		return 0, dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to credit balance")
	}

	s.log(ctx, "credits_granted", "identity_id", identity.ID, "amount", amount, "balance", balance)
	return balance, nil
}

// Balance returns the identity's current balance.
func (s *Service) Balance(ctx context.Context, identityID id.IdentityID) (int, error) {
	identity, err := s.lookupBalanceHolder(ctx, identityID)
	if err != nil {
		return 0, err
	}
	balance, err := s.store.Balance(ctx, identity.ID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return 0, dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read balance")
	}
	return balance, nil
}

func (s *Service) lookupBalanceHolder(ctx context.Context, identityID id.IdentityID) (*models.Identity, error) {
	if identityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "identity id is required")
	}
	identity, err := s.identities.FindByID(ctx, identityID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load identity")
	}
	if !identity.HoldsBalance() {
		return nil, dErrors.New(dErrors.CodeRoleNotEligible, "only requester accounts carry a credit balance")
	}
	return identity, nil
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
