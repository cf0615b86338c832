package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/playdex/claim-core/internal/core/domain"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client, func()) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return mr, client, func() {
		client.Close()
		mr.Close()
	}
}

func testAttempt(state string) *domain.AuthAttempt {
	now := time.Now()
	return &domain.AuthAttempt{
		State:         state,
		CodeVerifier:  "verifier-" + state,
		CodeChallenge: "challenge-" + state,
		GameID:        "g1",
		GameSlug:      "space-explorer",
		CreatedAt:     now,
		ExpiresAt:     now.Add(10 * time.Minute),
	}
}

func TestAttemptStore_SaveConsume(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewAttemptStore(client)
	ctx := context.Background()

	if err := store.Save(ctx, testAttempt("st-1")); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Consume(ctx, "st-1")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got == nil {
		t.Fatal("expected attempt, got nil")
	}
	if got.CodeVerifier != "verifier-st-1" {
		t.Errorf("expected verifier-st-1, got %s", got.CodeVerifier)
	}
	if got.GameSlug != "space-explorer" {
		t.Errorf("expected space-explorer, got %s", got.GameSlug)
	}
}

func TestAttemptStore_Consume_SingleUse(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewAttemptStore(client)
	ctx := context.Background()

	if err := store.Save(ctx, testAttempt("st-once")); err != nil {
		t.Fatalf("save: %v", err)
	}

	first, err := store.Consume(ctx, "st-once")
	if err != nil {
		t.Fatalf("first consume: %v", err)
	}
	if first == nil {
		t.Fatal("expected attempt on first consume")
	}

	second, err := store.Consume(ctx, "st-once")
	if err != nil {
		t.Fatalf("second consume: %v", err)
	}
	if second != nil {
		t.Error("expected nil on second consume of same state")
	}
}

func TestAttemptStore_Consume_Unknown(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewAttemptStore(client)

	got, err := store.Consume(context.Background(), "never-saved")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got != nil {
		t.Error("expected nil for unknown state")
	}
}

func TestAttemptStore_Consume_Expired(t *testing.T) {
	mr, client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewAttemptStore(client)
	ctx := context.Background()

	attempt := testAttempt("st-exp")
	attempt.ExpiresAt = time.Now().Add(time.Minute)
	if err := store.Save(ctx, attempt); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	got, err := store.Consume(ctx, "st-exp")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got != nil {
		t.Error("expected nil for expired attempt")
	}
}

func TestAttemptStore_Save_AlreadyExpired(t *testing.T) {
	_, client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewAttemptStore(client)
	ctx := context.Background()

	attempt := testAttempt("st-past")
	attempt.ExpiresAt = time.Now().Add(-time.Minute)
	if err := store.Save(ctx, attempt); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Consume(ctx, "st-past")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if got != nil {
		t.Error("expected expired attempt not to be stored")
	}
}
