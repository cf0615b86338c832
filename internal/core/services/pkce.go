package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/playdex/claim-core/internal/core/domain"
)

// DefaultAttemptTTL is how long a pending attempt stays consumable.
const DefaultAttemptTTL = 10 * time.Minute

const (
	// stateBytes gives 256 bits of entropy for the correlation token.
	stateBytes = 32

	// verifierBytes yields a 64-character base64url verifier, within the
	// 43-128 range RFC 7636 requires.
	verifierBytes = 48
)

// NewAttempt generates a pending authentication attempt: a fresh state
// token, a PKCE verifier, and its S256 challenge. The plain challenge
// method is deliberately unsupported.
func NewAttempt(gameID, gameSlug string, ttl time.Duration) (*domain.AuthAttempt, error) {
	if ttl <= 0 {
		ttl = DefaultAttemptTTL
	}

	state, err := randomToken(stateBytes)
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}

	verifier, err := randomToken(verifierBytes)
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}

	now := time.Now()
	return &domain.AuthAttempt{
		State:         state,
		CodeVerifier:  verifier,
		CodeChallenge: CodeChallenge(verifier),
		GameID:        gameID,
		GameSlug:      gameSlug,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}, nil
}

// CodeChallenge derives the S256 challenge for a verifier:
// base64url(SHA256(verifier)), unpadded.
func CodeChallenge(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// randomToken returns n random bytes base64url-encoded. The output
// alphabet (A-Z a-z 0-9 - _) is a subset of the RFC 7636 unreserved set.
func randomToken(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
