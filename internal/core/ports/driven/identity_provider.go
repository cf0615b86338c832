package driven

import (
	"context"

	"github.com/playdex/claim-core/internal/core/domain"
)

// IdentityProvider is the external OAuth2 provider the claim flow
// authenticates against. The client credentials and endpoint URLs are
// fixed at construction time.
type IdentityProvider interface {
	// BuildAuthURL deterministically assembles the provider's
	// authorization URL for the given state and PKCE challenge.
	// Pure function; persists nothing.
	BuildAuthURL(state, codeChallenge string) string

	// ExchangeCode exchanges an authorization code for tokens at the
	// provider's token endpoint, presenting the stored code verifier.
	// Never retried by callers: authorization codes are single-use.
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*domain.TokenSet, error)

	// FetchProfile fetches the authenticated account's profile using the
	// returned access token.
	FetchProfile(ctx context.Context, accessToken string) (*domain.IdentityProfile, error)

	// RefreshToken exchanges a refresh token for a new token set.
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenSet, error)

	// RevokeToken revokes a token at the provider. Best-effort; logout
	// succeeds locally even when revocation fails.
	RevokeToken(ctx context.Context, token string) error
}
