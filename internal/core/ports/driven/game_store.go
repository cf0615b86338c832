package driven

import (
	"context"

	"github.com/playdex/claim-core/internal/core/domain"
)

// GameStore exposes the catalog operations the claim flow needs. The rest
// of the catalog (browsing, search, admin CRUD) lives outside this service.
type GameStore interface {
	// GetByID retrieves a game by its ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetByID(ctx context.Context, id string) (*domain.Game, error)

	// GetBySlug retrieves a game by its URL slug.
	// Returns domain.ErrNotFound if it does not exist.
	GetBySlug(ctx context.Context, slug string) (*domain.Game, error)

	// ClaimIfUnclaimed performs a single atomic conditional write: it sets
	// the claim columns only if the game is currently unclaimed. Returns
	// false (and no error) when another claim already committed.
	ClaimIfUnclaimed(ctx context.Context, id, externalID, handle string) (bool, error)

	// RecordClaim writes the secondary claim-audit record. Best-effort:
	// callers log failures and never let them change the claim verdict.
	RecordClaim(ctx context.Context, audit *domain.ClaimAudit) error
}
