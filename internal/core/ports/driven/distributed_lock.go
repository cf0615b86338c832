package driven

import (
	"context"
	"time"
)

// DistributedLock coordinates the attempt sweeper across instances so the
// periodic cleanup runs on one instance at a time.
type DistributedLock interface {
	// Acquire attempts to acquire a named lock with the given TTL.
	// Returns true if acquired, false if already held by another instance.
	// The lock auto-expires after TTL (implementation dependent).
	Acquire(ctx context.Context, name string, ttl time.Duration) (acquired bool, err error)

	// Release releases a named lock. Best-effort; safe to call even if
	// the lock is not held or has expired.
	Release(ctx context.Context, name string) error
}
