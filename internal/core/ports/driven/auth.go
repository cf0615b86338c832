package driven

import "github.com/playdex/claim-core/internal/core/domain"

// AuthAdapter signs and verifies the opaque session token the browser
// carries. The token only references a server-held session; provider
// tokens never leave the server.
type AuthAdapter interface {
	// GenerateSessionToken creates a signed token from session claims.
	GenerateSessionToken(claims *domain.SessionTokenClaims) (string, error)

	// ParseSessionToken validates a token and extracts its claims.
	// Returns domain.ErrTokenExpired or domain.ErrTokenInvalid.
	ParseSessionToken(token string) (*domain.SessionTokenClaims, error)
}
