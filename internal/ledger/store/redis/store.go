// Package redis implements the ledger store on Redis for deployments that
// want ledger contention off the primary database. Balances live in a hash;
// the conditional debit runs as a Lua script so check-then-decrement is a
// single serialized operation on the server.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/sentinel"
)

const balanceKey = "seaplan:credit_balance"

// debitScript decrements the identity's balance only when it covers the
// amount. Returns {-1} when the field is absent, {-2} when insufficient,
// {newBalance} on success.
var debitScript = redis.NewScript(`
local balance = redis.call('HGET', KEYS[1], ARGV[1])
if balance == false then
	return -1
end
balance = tonumber(balance)
local amount = tonumber(ARGV[2])
if balance < amount then
	return -2
end
return redis.call('HINCRBY', KEYS[1], ARGV[1], -amount)
`)

type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// SetBalance writes an identity's balance unless the field already exists.
// The composition root uses it to mirror seeded identities into the ledger
// hash; the set-if-absent semantics keep restarts from clobbering balances
// that debits and recharges have since moved.
func (s *Store) SetBalance(ctx context.Context, identityID id.IdentityID, balance int) error {
	if err := s.client.HSetNX(ctx, balanceKey, identityID.String(), balance).Err(); err != nil {
		return fmt.Errorf("set balance: %w", err)
	}
	return nil
}

func (s *Store) DebitIfSufficient(ctx context.Context, identityID id.IdentityID, amount int) (int, error) {
	res, err := debitScript.Run(ctx, s.client, []string{balanceKey}, identityID.String(), amount).Int64()
	if err != nil {
		return 0, fmt.Errorf("debit script: %w", err)
	}
	switch res {
	case -1:
		return 0, sentinel.ErrNotFound
	case -2:
		return 0, sentinel.ErrInsufficient
	}
	return int(res), nil
}

func (s *Store) Credit(ctx context.Context, identityID id.IdentityID, amount int) (int, error) {
	exists, err := s.client.HExists(ctx, balanceKey, identityID.String()).Result()
	if err != nil {
		return 0, fmt.Errorf("credit exists check: %w", err)
	}
	if !exists {
		return 0, sentinel.ErrNotFound
	}
	balance, err := s.client.HIncrBy(ctx, balanceKey, identityID.String(), int64(amount)).Result()
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	return int(balance), nil
}

func (s *Store) Balance(ctx context.Context, identityID id.IdentityID) (int, error) {
	balance, err := s.client.HGet(ctx, balanceKey, identityID.String()).Int()
	if err == redis.Nil {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}
