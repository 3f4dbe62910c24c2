package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"seaplan/internal/identity/models"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/sentinel"
)

// SeedStore is the subset of the identity store needed to load fixtures.
type SeedStore interface {
	CreateIfEmailAvailable(ctx context.Context, identity *models.Identity) error
}

// SeedIdentity is one development fixture account.
type SeedIdentity struct {
	Email    string
	Password string
	Role     id.Role
	Credits  int
}

// DefaultSeed returns one account per role for local development.
func DefaultSeed() []SeedIdentity {
	return []SeedIdentity{
		{Email: "skipper@example.com", Password: "password1", Role: id.RoleRequester, Credits: 50},
		{Email: "deckhand@example.com", Password: "password2", Role: id.RoleRequester, Credits: 4},
		{Email: "harbormaster@example.com", Password: "password3", Role: id.RoleReviewer},
		{Email: "admin@example.com", Password: "password4", Role: id.RoleAdministrator},
	}
}

// Seed inserts fixture identities, skipping any email already present so it
// is safe to run on every startup of a development instance.
func Seed(ctx context.Context, store SeedStore, seeds []SeedIdentity) error {
	now := time.Now()
	for _, s := range seeds {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash seed password for %s: %w", s.Email, err)
		}
		identity, err := models.NewIdentity(id.NewIdentityID(), s.Email, string(hash), s.Role, s.Credits, now)
		if err != nil {
			return fmt.Errorf("build seed identity %s: %w", s.Email, err)
		}
		err = store.CreateIfEmailAvailable(ctx, identity)
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			// Already present from a previous run.
			continue
		}
		if err != nil {
			return fmt.Errorf("seed identity %s: %w", s.Email, err)
		}
	}
	return nil
}
