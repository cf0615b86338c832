package driven

import (
	"context"

	"github.com/playdex/claim-core/internal/core/domain"
)

// AttemptStore manages pending authentication attempts for CSRF protection
// and PKCE verifier storage. Attempts are single-use and expire after a
// short period.
type AttemptStore interface {
	// Save stores a new attempt keyed by its state token.
	Save(ctx context.Context, attempt *domain.AuthAttempt) error

	// Consume atomically retrieves and deletes the attempt for the given
	// state. This guarantees single-use semantics: two near-simultaneous
	// consumptions of the same state cannot both succeed.
	// Returns nil, nil if the attempt doesn't exist or has expired.
	Consume(ctx context.Context, state string) (*domain.AuthAttempt, error)

	// Cleanup removes expired attempts and reports how many were removed.
	// Expiry is already enforced at consumption time; this is store
	// hygiene only.
	Cleanup(ctx context.Context) (int64, error)
}
