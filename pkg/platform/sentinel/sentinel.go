package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about stored resources, not validation
// failures:
// - ErrNotFound: entity does not exist in the store
// - ErrAlreadyUsed: a uniqueness-guarded value is already taken
// - ErrInvalidState: entity not in the state the conditional update expects
// - ErrInsufficient: balance below the amount a conditional debit requires
// - ErrUnavailable: backing store temporarily unreachable
//
// For validation errors (bad input, broken invariants), use
// pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrInsufficient = errors.New("insufficient")
	ErrUnavailable  = errors.New("unavailable")
)
