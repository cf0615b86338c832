package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/playdex/claim-core/internal/core/domain"
	"github.com/playdex/claim-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.AttemptStore = (*AttemptStore)(nil)

const attemptPrefix = "claim:attempt:"

// AttemptStore implements driven.AttemptStore using Redis.
// Attempts expire automatically via Redis TTL, and Consume relies on
// GETDEL so each state value can be redeemed at most once even when
// multiple callbacks race.
type AttemptStore struct {
	client *redis.Client
}

// NewAttemptStore creates a new Redis-backed AttemptStore.
func NewAttemptStore(client *redis.Client) *AttemptStore {
	return &AttemptStore{client: client}
}

// Save stores an attempt keyed by its state value, with a TTL derived
// from the attempt's expiry.
func (s *AttemptStore) Save(ctx context.Context, attempt *domain.AuthAttempt) error {
	ttl := time.Until(attempt.ExpiresAt)
	if ttl <= 0 {
		// Already expired, nothing to store.
		return nil
	}

	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}

	if err := s.client.Set(ctx, attemptPrefix+attempt.State, data, ttl).Err(); err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}
	return nil
}

// Consume atomically fetches and deletes the attempt for the given state.
// Returns nil without error when the state is unknown or has expired.
func (s *AttemptStore) Consume(ctx context.Context, state string) (*domain.AuthAttempt, error) {
	data, err := s.client.GetDel(ctx, attemptPrefix+state).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("consume attempt: %w", err)
	}

	var attempt domain.AuthAttempt
	if err := json.Unmarshal(data, &attempt); err != nil {
		return nil, fmt.Errorf("unmarshal attempt: %w", err)
	}
	if attempt.IsExpired() {
		return nil, nil
	}
	return &attempt, nil
}

// Cleanup is a no-op: Redis evicts expired attempts via key TTL.
func (s *AttemptStore) Cleanup(ctx context.Context) (int64, error) {
	return 0, nil
}
