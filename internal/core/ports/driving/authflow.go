package driving

import (
	"context"
	"time"

	"github.com/playdex/claim-core/internal/core/domain"
)

// AuthFlowService drives the authorization-code-with-PKCE flow: starting
// an attempt, handling the provider callback, and the ownership claim.
type AuthFlowService interface {
	// StartAuth creates a pending attempt and returns the provider
	// authorization URL to redirect the user to.
	StartAuth(ctx context.Context, req StartAuthRequest) (*StartAuthResponse, error)

	// HandleCallback runs the callback state machine. It never returns an
	// error: every outcome, success or failure, is a CallbackResult with a
	// pre-built redirect target.
	HandleCallback(ctx context.Context, req CallbackRequest) *CallbackResult

	// VerifyAndClaim verifies that the authenticated identity owns the
	// game and commits the claim. Transport-agnostic: callable from any
	// thin UI action, not just the HTTP callback.
	VerifyAndClaim(ctx context.Context, gameID, gameSlug string, identity domain.IdentityProfile) *CallbackResult
}

// StartAuthRequest starts a login, optionally targeting a game to claim.
type StartAuthRequest struct {
	GameID   string `json:"game_id,omitempty"`
	GameSlug string `json:"game_slug,omitempty"`
}

// StartAuthResponse contains the authorization URL and attempt metadata.
type StartAuthResponse struct {
	// AuthorizationURL is the provider URL to redirect the user to.
	AuthorizationURL string `json:"authorization_url"`

	// State is the correlation token stored with the attempt.
	State string `json:"state"`

	// ExpiresAt is when the attempt expires.
	ExpiresAt time.Time `json:"expires_at"`
}

// CallbackRequest carries the provider redirect parameters.
type CallbackRequest struct {
	Code             string `json:"code"`
	State            string `json:"state"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// CallbackResult is the terminal outcome of the callback state machine.
type CallbackResult struct {
	// Success is true only when the flow completed, including the claim
	// when one was requested.
	Success bool `json:"success"`

	// Code is set on failure and names the internal reason.
	Code domain.FailureCode `json:"code,omitempty"`

	// RedirectTarget is always set: the game page, the landing page, or
	// the error page with a machine-readable code.
	RedirectTarget string `json:"redirect_target"`

	// SessionToken is the signed cookie token when a session was
	// established.
	SessionToken string `json:"-"`

	// Handle is the authenticated provider handle, when known.
	Handle string `json:"handle,omitempty"`
}

// SessionService converts successful token exchanges into application
// sessions and manages their lifecycle.
type SessionService interface {
	// Establish wraps the provider tokens into a server-held session and
	// returns the signed cookie token referencing it.
	Establish(ctx context.Context, identity *domain.IdentityProfile, tokens *domain.TokenSet) (*AuthSession, error)

	// Validate resolves a cookie token to its live session.
	Validate(ctx context.Context, token string) (*domain.Session, error)

	// Refresh rotates the provider access token via the refresh grant and
	// re-persists the session.
	Refresh(ctx context.Context, token string) (*domain.Session, error)

	// Logout deletes the local session and best-effort revokes the
	// provider token. Always succeeds locally.
	Logout(ctx context.Context, token string) error
}

// AuthSession pairs a stored session with the signed token that
// references it.
type AuthSession struct {
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}
