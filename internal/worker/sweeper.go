package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/playdex/claim-core/internal/core/ports/driven"
)

const sweepLockName = "attempt-sweeper"

// Sweeper periodically removes expired auth attempts and sessions.
// A distributed lock ensures only one instance sweeps at a time when
// several replicas share a backend.
type Sweeper struct {
	attempts driven.AttemptStore
	sessions driven.SessionStore
	lock     driven.DistributedLock
	logger   *slog.Logger

	interval time.Duration

	// Internal state
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// SweeperConfig holds configuration for the sweeper.
type SweeperConfig struct {
	Attempts driven.AttemptStore
	Sessions driven.SessionStore
	Lock     driven.DistributedLock // optional, nil disables coordination
	Logger   *slog.Logger
	Interval time.Duration
}

// NewSweeper creates a new expiry sweeper.
func NewSweeper(cfg SweeperConfig) *Sweeper {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	return &Sweeper{
		attempts: cfg.Attempts,
		sessions: cfg.Sessions,
		lock:     cfg.Lock,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the sweep loop.
// It runs until Stop is called or the context is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("sweeper starting", "interval", s.interval)

	go s.loop(ctx)
	return nil
}

// Stop gracefully stops the sweeper.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.stopCh)
	s.mu.Unlock()

	<-s.doneCh

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info("sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper context cancelled")
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one pass under the distributed lock. Losing the lock race
// is normal: another instance is sweeping.
func (s *Sweeper) sweep(ctx context.Context) {
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, sweepLockName, s.interval)
		if err != nil {
			s.logger.Error("failed to acquire sweep lock", "error", err)
			return
		}
		if !acquired {
			return
		}
		defer func() {
			if err := s.lock.Release(ctx, sweepLockName); err != nil {
				s.logger.Warn("failed to release sweep lock", "error", err)
			}
		}()
	}

	if s.attempts != nil {
		removed, err := s.attempts.Cleanup(ctx)
		if err != nil {
			s.logger.Error("attempt cleanup failed", "error", err)
		} else if removed > 0 {
			s.logger.Info("removed expired attempts", "count", removed)
		}
	}

	if s.sessions != nil {
		removed, err := s.sessions.Cleanup(ctx)
		if err != nil {
			s.logger.Error("session cleanup failed", "error", err)
		} else if removed > 0 {
			s.logger.Info("removed expired sessions", "count", removed)
		}
	}
}
