package postgres

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/playdex/claim-core/internal/core/ports/driven"
)

// Ensure AdvisoryLock implements the interface.
var _ driven.DistributedLock = (*AdvisoryLock)(nil)

// AdvisoryLock implements DistributedLock using PostgreSQL advisory locks.
//
// Advisory locks are connection-scoped, not TTL-based: the TTL parameter
// is ignored and the lock is released when explicitly released or when
// the connection drops. Good enough for the sweeper; multi-instance
// deployments with Redis available should prefer the Redis lock.
type AdvisoryLock struct {
	db *DB
}

// NewAdvisoryLock creates a new PostgreSQL advisory lock adapter.
func NewAdvisoryLock(db *DB) *AdvisoryLock {
	return &AdvisoryLock{db: db}
}

// hashLockName converts a lock name to the 64-bit key PostgreSQL advisory
// locks require. FNV-1a gives consistent, well-distributed values.
func hashLockName(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte("claimcore:lock:" + name))
	return int64(h.Sum64())
}

// Acquire attempts to acquire a named advisory lock without blocking.
func (l *AdvisoryLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	var acquired bool
	err := l.db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", hashLockName(name)).Scan(&acquired)
	if err != nil {
		return false, err
	}
	return acquired, nil
}

// Release releases a named advisory lock.
func (l *AdvisoryLock) Release(ctx context.Context, name string) error {
	_, err := l.db.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", hashLockName(name))
	return err
}
