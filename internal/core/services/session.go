package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/playdex/claim-core/internal/core/domain"
	"github.com/playdex/claim-core/internal/core/ports/driven"
	"github.com/playdex/claim-core/internal/core/ports/driving"
)

// Ensure sessionService implements SessionService
var _ driving.SessionService = (*sessionService)(nil)

// DefaultSessionTTL applies when the provider does not report a token
// lifetime.
const DefaultSessionTTL = 24 * time.Hour

// SessionServiceConfig holds dependencies for the session service.
type SessionServiceConfig struct {
	// Sessions persists established sessions.
	Sessions driven.SessionStore

	// Provider is used for refresh and best-effort revocation.
	Provider driven.IdentityProvider

	// Auth signs and verifies the cookie token.
	Auth driven.AuthAdapter

	// TTL is the session lifetime when the provider reports none.
	TTL time.Duration

	Logger *slog.Logger
}

type sessionService struct {
	sessions driven.SessionStore
	provider driven.IdentityProvider
	auth     driven.AuthAdapter
	ttl      time.Duration
	logger   *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(cfg SessionServiceConfig) driving.SessionService {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &sessionService{
		sessions: cfg.Sessions,
		provider: cfg.Provider,
		auth:     cfg.Auth,
		ttl:      ttl,
		logger:   logger,
	}
}

// Establish wraps a successful token exchange into a server-held session
// and returns the signed token the browser will carry.
func (s *sessionService) Establish(ctx context.Context, identity *domain.IdentityProfile, tokens *domain.TokenSet) (*driving.AuthSession, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)
	if tokens.ExpiresIn > 0 {
		expiresAt = now.Add(time.Duration(tokens.ExpiresIn) * time.Second)
	}

	session := &domain.Session{
		ID:           uuid.NewString(),
		SubjectID:    identity.ExternalID,
		Handle:       identity.Handle,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.auth.GenerateSessionToken(&domain.SessionTokenClaims{
		SessionID: session.ID,
		SubjectID: session.SubjectID,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	return &driving.AuthSession{Session: session, Token: token}, nil
}

// Validate resolves a cookie token to its live session.
func (s *sessionService) Validate(ctx context.Context, token string) (*domain.Session, error) {
	session, err := s.resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.IsExpired() {
		// Lazy cleanup; the store TTL normally beats us to it.
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, domain.ErrTokenExpired
	}
	return session, nil
}

// Refresh rotates the provider access token via the refresh grant and
// re-persists the session. The session keeps its ID; the cookie token
// stays valid.
func (s *sessionService) Refresh(ctx context.Context, token string) (*domain.Session, error) {
	session, err := s.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if session.RefreshToken == "" {
		return nil, domain.ErrTokenInvalid
	}

	tokens, err := s.provider.RefreshToken(ctx, session.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh provider token: %w", err)
	}

	session.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		session.RefreshToken = tokens.RefreshToken
	}
	if tokens.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save refreshed session: %w", err)
	}

	return session, nil
}

// Logout deletes the local session. Provider-side revocation is attempted
// best-effort and never blocks the local logout.
func (s *sessionService) Logout(ctx context.Context, token string) error {
	session, err := s.resolve(ctx, token)
	if err != nil {
		// Nothing to delete; logout is idempotent.
		return nil
	}

	if err := s.provider.RevokeToken(ctx, session.AccessToken); err != nil {
		s.logger.Warn("provider token revocation failed",
			"session_id", session.ID,
			"error", err)
	}

	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// resolve parses the token and loads the referenced session.
func (s *sessionService) resolve(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := s.auth.ParseSessionToken(token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	if err == domain.ErrNotFound {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}
