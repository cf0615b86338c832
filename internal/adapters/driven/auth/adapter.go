package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/playdex/claim-core/internal/core/domain"
	"github.com/playdex/claim-core/internal/core/ports/driven"
)

// Ensure Adapter implements AuthAdapter
var _ driven.AuthAdapter = (*Adapter)(nil)

// jwtClaims wraps domain.SessionTokenClaims for JWT compatibility
type jwtClaims struct {
	SessionID string `json:"session_id"`
	SubjectID string `json:"subject_id"`
	jwt.RegisteredClaims
}

// Adapter signs session reference tokens with HMAC-SHA256. The token
// carries only the session ID and subject; provider tokens stay server-side.
type Adapter struct {
	secret []byte
}

// NewAdapter creates a new auth adapter with the given signing secret
func NewAdapter(secret string) *Adapter {
	return &Adapter{secret: []byte(secret)}
}

// GenerateSessionToken creates a signed JWT from session claims
func (a *Adapter) GenerateSessionToken(claims *domain.SessionTokenClaims) (string, error) {
	jc := jwtClaims{
		SessionID: claims.SessionID,
		SubjectID: claims.SubjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Unix(claims.IssuedAt, 0)),
			ExpiresAt: jwt.NewNumericDate(time.Unix(claims.ExpiresAt, 0)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jc)
	return token.SignedString(a.secret)
}

// ParseSessionToken validates a JWT and extracts session claims
func (a *Adapter) ParseSessionToken(tokenString string) (*domain.SessionTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenInvalid
		}
		return a.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	return &domain.SessionTokenClaims{
		SessionID: claims.SessionID,
		SubjectID: claims.SubjectID,
		IssuedAt:  claims.IssuedAt.Unix(),
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, nil
}
