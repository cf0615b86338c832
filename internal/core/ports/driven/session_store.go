package driven

import (
	"context"

	"github.com/playdex/claim-core/internal/core/domain"
)

// SessionStore handles session persistence (Redis or PostgreSQL).
type SessionStore interface {
	// Save stores a session with TTL derived from ExpiresAt.
	// Also used to re-persist a session after a token refresh.
	Save(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Delete deletes a session. Safe to call when already gone.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and reports how many were removed.
	// A no-op for TTL-based backends.
	Cleanup(ctx context.Context) (int64, error)
}
