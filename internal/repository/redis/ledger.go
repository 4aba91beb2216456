package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/errors"
)

const keyPrefix = "cart:ledger:"

// LedgerStore implements repository.LedgerStore on Redis string keys.
type LedgerStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewLedgerStore creates a Redis-backed ledger store. Every Put refreshes the
// key's TTL; a zero ttl keeps ledgers forever.
func NewLedgerStore(client redis.UniversalClient, ttl time.Duration) *LedgerStore {
	return &LedgerStore{client: client, ttl: ttl}
}

func key(profileID string) string {
	return keyPrefix + profileID
}

// Get returns the raw ledger payload for a profile.
func (s *LedgerStore) Get(ctx context.Context, profileID string) ([]byte, error) {
	data, err := s.client.Get(ctx, key(profileID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart ledger", profileID)
		}
		return nil, fmt.Errorf("redis get ledger: %w", err)
	}
	return data, nil
}

// Put overwrites the ledger payload for a profile.
func (s *LedgerStore) Put(ctx context.Context, profileID string, payload []byte) error {
	if err := s.client.Set(ctx, key(profileID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set ledger: %w", err)
	}
	return nil
}

// Delete removes the ledger payload for a profile.
func (s *LedgerStore) Delete(ctx context.Context, profileID string) error {
	if err := s.client.Del(ctx, key(profileID)).Err(); err != nil {
		return fmt.Errorf("redis del ledger: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *LedgerStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
