package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/playdex/claim-core/internal/core/domain"
	"github.com/playdex/claim-core/internal/core/ports/driven"
)

// OwnershipVerifier matches an authenticated identity against the
// declared owner of a catalog entry.
type OwnershipVerifier struct {
	games driven.GameStore
}

// NewOwnershipVerifier creates a verifier over the given game store.
func NewOwnershipVerifier(games driven.GameStore) *OwnershipVerifier {
	return &OwnershipVerifier{games: games}
}

// Verify loads the game and compares the handle extracted from its
// declared-owner URL against the authenticated handle, case-insensitively.
// Returns nil when verified, otherwise domain.ErrGameNotFound,
// domain.ErrInvalidOwnerURL, or domain.ErrHandleMismatch.
func (v *OwnershipVerifier) Verify(ctx context.Context, gameID, identityHandle string) error {
	game, err := v.games.GetByID(ctx, gameID)
	if err == domain.ErrNotFound {
		return domain.ErrGameNotFound
	}
	if err != nil {
		return fmt.Errorf("get game %s: %w", gameID, err)
	}

	ownerHandle := ExtractHandle(game.OwnerURL)
	if ownerHandle == "" {
		return domain.ErrInvalidOwnerURL
	}

	if !strings.EqualFold(ownerHandle, identityHandle) {
		return domain.ErrHandleMismatch
	}

	return nil
}

// ExtractHandle parses a provider profile URL and returns the first
// non-empty path segment as the handle. A missing scheme is tolerated
// ("provider.example/alice" works). Returns "" for empty or unparseable
// input, or when the URL carries no path segment.
func ExtractHandle(ownerURL string) string {
	raw := strings.TrimSpace(ownerURL)
	if raw == "" {
		return ""
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	for _, segment := range strings.Split(u.Path, "/") {
		if segment != "" {
			return segment
		}
	}
	return ""
}
