package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// inFlightTTL caps how long a claim survives a process that dies
	// before Complete or Release.
	inFlightTTL       = time.Minute
	idempotencyPrefix = "idempotency:transactions:"
)

// IdempotencyStore tracks Idempotency-Key headers of stock-moving requests.
// A key holds "" while its request is in flight and expires after
// inFlightTTL; once completed it holds the created resource ID for ttl.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Claim reserves key with SETNX. It reports false when the key already exists.
func (s *IdempotencyStore) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), "", s.claimTTL()).Result()
	if err != nil {
		return false, fmt.Errorf("idempotency claim: %w", err)
	}
	return ok, nil
}

func (s *IdempotencyStore) Result(ctx context.Context, key string) (string, error) {
	id, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("idempotency result: %w", err)
	}
	return id, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key, resourceID string) error {
	if err := s.client.Set(ctx, s.key(key), resourceID, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency complete: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("idempotency release: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) claimTTL() time.Duration {
	return min(inFlightTTL, s.ttl)
}

func (s *IdempotencyStore) key(k string) string {
	return idempotencyPrefix + k
}
