package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/playdex/claim-core/internal/core/domain"
	"github.com/playdex/claim-core/internal/core/ports/driven"
)

// ClaimCommitter performs the atomic unclaimed->claimed transition.
type ClaimCommitter struct {
	games  driven.GameStore
	logger *slog.Logger
}

// NewClaimCommitter creates a committer over the given game store.
func NewClaimCommitter(games driven.GameStore, logger *slog.Logger) *ClaimCommitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClaimCommitter{games: games, logger: logger}
}

// Claim commits the claim with a single conditional write. When the write
// affects nothing because another claim already committed, it returns
// domain.ErrAlreadyClaimed, not a failure. A secondary audit record is
// written afterward for redundancy; its failure is logged only.
func (c *ClaimCommitter) Claim(ctx context.Context, gameID string, identity *domain.IdentityProfile) error {
	claimed, err := c.games.ClaimIfUnclaimed(ctx, gameID, identity.ExternalID, identity.Handle)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrClaimFailed, err)
	}
	if !claimed {
		return domain.ErrAlreadyClaimed
	}

	audit := &domain.ClaimAudit{
		ID:         uuid.NewString(),
		GameID:     gameID,
		ExternalID: identity.ExternalID,
		Handle:     identity.Handle,
		ClaimedAt:  time.Now(),
	}
	if err := c.games.RecordClaim(ctx, audit); err != nil {
		c.logger.Warn("claim audit write failed",
			"game_id", gameID,
			"handle", identity.Handle,
			"error", err)
	}

	return nil
}
