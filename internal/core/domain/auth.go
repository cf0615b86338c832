package domain

import "time"

// AuthAttempt is a short-lived record of an in-flight authentication,
// keyed by the anti-CSRF state token. It is consumed (read-and-deleted)
// at most once; past ExpiresAt it is unusable regardless of validity.
type AuthAttempt struct {
	// State is the opaque correlation token round-tripped through the
	// provider redirect. Unique among active attempts.
	State string `json:"state"`

	// CodeVerifier is the PKCE verifier presented at token exchange.
	CodeVerifier string `json:"code_verifier"`

	// CodeChallenge is base64url(SHA256(CodeVerifier)). Only needed when
	// building the authorization URL; stores may drop it.
	CodeChallenge string `json:"code_challenge,omitempty"`

	// GameID/GameSlug identify the catalog entry being claimed.
	// Both empty for a plain login.
	GameID   string `json:"game_id,omitempty"`
	GameSlug string `json:"game_slug,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the attempt is past its TTL.
func (a *AuthAttempt) IsExpired() bool {
	return time.Now().After(a.ExpiresAt)
}

// HasTarget reports whether the attempt was started to claim a game.
func (a *AuthAttempt) HasTarget() bool {
	return a.GameID != ""
}

// IdentityProfile is the provider's description of an authenticated
// account. Produced once per successful callback, never mutated.
type IdentityProfile struct {
	ExternalID  string `json:"external_id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// TokenSet is the provider's token endpoint response.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`

	// ExpiresIn is the access token lifetime in seconds, 0 if the
	// provider did not report one.
	ExpiresIn int `json:"expires_in,omitempty"`
}

// Session holds the provider tokens server-side. The browser only ever
// carries a signed reference to it, never the tokens themselves.
type Session struct {
	ID           string    `json:"id"`
	SubjectID    string    `json:"subject_id"`
	Handle       string    `json:"handle"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsExpired checks if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// SessionTokenClaims is the payload of the signed cookie token.
type SessionTokenClaims struct {
	SessionID string `json:"session_id"`
	SubjectID string `json:"subject_id"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}
