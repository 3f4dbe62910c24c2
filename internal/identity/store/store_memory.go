package store

import (
	"context"
	"strings"
	"sync"

	"seaplan/internal/identity/models"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/sentinel"
)

// InMemory keeps identities in a mutex-guarded map. It also implements the
// ledger store primitives: the credit balance lives on the identity record,
// and the mutex makes check-then-decrement atomic per process.
type InMemory struct {
	mu         sync.RWMutex
	byID       map[id.IdentityID]models.Identity
	idsByEmail map[string]id.IdentityID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:       make(map[id.IdentityID]models.Identity),
		idsByEmail: make(map[string]id.IdentityID),
	}
}

// CreateIfEmailAvailable persists a new identity, failing with
// sentinel.ErrAlreadyUsed when the email is taken. The uniqueness check and
// the insert happen under one lock.
func (s *InMemory) CreateIfEmailAvailable(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(identity.Email)
	if _, exists := s.idsByEmail[email]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.byID[identity.ID] = *identity
	s.idsByEmail[email] = identity.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, identityID id.IdentityID) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.byID[identityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &identity, nil
}

func (s *InMemory) FindByEmail(_ context.Context, email string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identityID, ok := s.idsByEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	identity := s.byID[identityID]
	return &identity, nil
}

// DebitIfSufficient decrements the balance only when it covers amount,
// returning the new balance. Returns sentinel.ErrInsufficient without
// mutating when it does not. The read and the write share one critical
// section so concurrent debits serialize.
func (s *InMemory) DebitIfSufficient(_ context.Context, identityID id.IdentityID, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.byID[identityID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	if identity.CreditBalance < amount {
		return 0, sentinel.ErrInsufficient
	}
	identity.CreditBalance -= amount
	s.byID[identityID] = identity
	return identity.CreditBalance, nil
}

// Credit adds amount to the balance and returns the new balance.
func (s *InMemory) Credit(_ context.Context, identityID id.IdentityID, amount int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity, ok := s.byID[identityID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	identity.CreditBalance += amount
	s.byID[identityID] = identity
	return identity.CreditBalance, nil
}

// Balance returns the current credit balance.
func (s *InMemory) Balance(_ context.Context, identityID id.IdentityID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.byID[identityID]
	if !ok {
		return 0, sentinel.ErrNotFound
	}
	return identity.CreditBalance, nil
}
