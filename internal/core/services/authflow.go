package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playdex/claim-core/internal/core/domain"
	"github.com/playdex/claim-core/internal/core/ports/driven"
	"github.com/playdex/claim-core/internal/core/ports/driving"
)

// Ensure authFlowService implements AuthFlowService
var _ driving.AuthFlowService = (*authFlowService)(nil)

// AuthFlowConfig holds dependencies for the auth flow service.
type AuthFlowConfig struct {
	// Attempts is the pending-auth store, the only cross-request shared
	// mutable state in the flow.
	Attempts driven.AttemptStore

	// Games is the catalog collaborator.
	Games driven.GameStore

	// Provider is the external identity provider.
	Provider driven.IdentityProvider

	// Sessions establishes application sessions on success.
	Sessions driving.SessionService

	// AttemptTTL bounds how long a pending attempt stays consumable.
	AttemptTTL time.Duration

	Logger *slog.Logger
}

// authFlowService implements the consolidated callback state machine:
// Received -> StateValidated -> CodeExchanged -> ProfileFetched ->
// Completed, with a terminal Failed(reason) reachable from every state.
type authFlowService struct {
	attempts   driven.AttemptStore
	games      driven.GameStore
	provider   driven.IdentityProvider
	sessions   driving.SessionService
	verifier   *OwnershipVerifier
	committer  *ClaimCommitter
	attemptTTL time.Duration
	logger     *slog.Logger
}

// NewAuthFlowService creates a new auth flow service.
func NewAuthFlowService(cfg AuthFlowConfig) driving.AuthFlowService {
	ttl := cfg.AttemptTTL
	if ttl <= 0 {
		ttl = DefaultAttemptTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &authFlowService{
		attempts:   cfg.Attempts,
		games:      cfg.Games,
		provider:   cfg.Provider,
		sessions:   cfg.Sessions,
		verifier:   NewOwnershipVerifier(cfg.Games),
		committer:  NewClaimCommitter(cfg.Games, logger),
		attemptTTL: ttl,
		logger:     logger,
	}
}

// StartAuth generates and stores a pending attempt, then builds the
// provider authorization URL for it. A claim target may arrive as an ID,
// a slug, or both; slug-only requests are resolved against the catalog
// before the attempt is stored.
func (s *authFlowService) StartAuth(ctx context.Context, req driving.StartAuthRequest) (*driving.StartAuthResponse, error) {
	if req.GameID == "" && req.GameSlug != "" {
		game, err := s.games.GetBySlug(ctx, req.GameSlug)
		if err == domain.ErrNotFound {
			return nil, domain.ErrGameNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("resolve game slug %s: %w", req.GameSlug, err)
		}
		req.GameID = game.ID
	}

	attempt, err := NewAttempt(req.GameID, req.GameSlug, s.attemptTTL)
	if err != nil {
		return nil, fmt.Errorf("generate attempt: %w", err)
	}

	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, fmt.Errorf("save attempt: %w", err)
	}

	return &driving.StartAuthResponse{
		AuthorizationURL: s.provider.BuildAuthURL(attempt.State, attempt.CodeChallenge),
		State:            attempt.State,
		ExpiresAt:        attempt.ExpiresAt,
	}, nil
}

// HandleCallback validates the returning request and drives the token
// exchange and profile fetch. Nothing here is retried: the state token
// and the authorization code are both single-use, so any failure means
// the user restarts from StartAuth.
func (s *authFlowService) HandleCallback(ctx context.Context, req driving.CallbackRequest) *driving.CallbackResult {
	// Provider-reported error: fail before touching the attempt store so
	// the attempt stays consumable if the user retries immediately.
	if req.Error != "" {
		s.logger.Info("provider denied authorization",
			"provider_error", req.Error,
			"description", req.ErrorDescription)
		return fail(domain.FailureProviderDenied, "")
	}

	attempt, err := s.attempts.Consume(ctx, req.State)
	if err != nil {
		s.logger.Error("consume attempt failed", "error", err)
		return fail(domain.FailureUnexpected, "")
	}
	if attempt == nil {
		// Absent, expired, forged, or already consumed once.
		return fail(domain.FailureSessionExpired, "")
	}

	if req.Code == "" {
		return fail(domain.FailureMissingCode, "")
	}

	// The consumed state is gone, so this code is exchanged at most once.
	tokens, err := s.provider.ExchangeCode(ctx, req.Code, attempt.CodeVerifier)
	if err != nil {
		s.logger.Warn("token exchange failed", "error", err)
		return fail(domain.FailureTokenExchange, "")
	}

	identity, err := s.provider.FetchProfile(ctx, tokens.AccessToken)
	if err != nil {
		s.logger.Warn("profile fetch failed", "error", err)
		return fail(domain.FailureProfileFetch, "")
	}

	if attempt.HasTarget() {
		result := s.VerifyAndClaim(ctx, attempt.GameID, attempt.GameSlug, *identity)
		if !result.Success {
			return result
		}
		// The verified owner is signed in as part of the claim.
		auth, err := s.sessions.Establish(ctx, identity, tokens)
		if err != nil {
			s.logger.Error("establish session after claim failed", "error", err)
			return result
		}
		result.SessionToken = auth.Token
		return result
	}

	auth, err := s.sessions.Establish(ctx, identity, tokens)
	if err != nil {
		s.logger.Error("establish session failed", "error", err)
		return fail(domain.FailureUnexpected, "")
	}

	return &driving.CallbackResult{
		Success:        true,
		RedirectTarget: domain.ClaimSuccessRedirect(""),
		SessionToken:   auth.Token,
		Handle:         identity.Handle,
	}
}

// VerifyAndClaim checks ownership and commits the claim. It is exposed as
// a transport-agnostic entry point so thin UI actions can reuse it.
func (s *authFlowService) VerifyAndClaim(ctx context.Context, gameID, gameSlug string, identity domain.IdentityProfile) *driving.CallbackResult {
	if err := s.verifier.Verify(ctx, gameID, identity.Handle); err != nil {
		switch {
		case errors.Is(err, domain.ErrGameNotFound):
			return fail(domain.FailureGameNotFound, gameSlug)
		case errors.Is(err, domain.ErrInvalidOwnerURL):
			return fail(domain.FailureInvalidOwnerURL, gameSlug)
		case errors.Is(err, domain.ErrHandleMismatch):
			return fail(domain.FailureHandleMismatch, gameSlug)
		default:
			s.logger.Error("ownership verification failed", "game_id", gameID, "error", err)
			return fail(domain.FailureUnexpected, gameSlug)
		}
	}

	if err := s.committer.Claim(ctx, gameID, &identity); err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyClaimed):
			return fail(domain.FailureAlreadyClaimed, gameSlug)
		default:
			s.logger.Error("claim commit failed", "game_id", gameID, "error", err)
			return fail(domain.FailureUpdateFailed, gameSlug)
		}
	}

	s.logger.Info("game claimed", "game_id", gameID, "handle", identity.Handle)
	return &driving.CallbackResult{
		Success:        true,
		RedirectTarget: domain.ClaimSuccessRedirect(gameSlug),
		Handle:         identity.Handle,
	}
}

// fail builds the terminal Failed(reason) result with its redirect.
func fail(code domain.FailureCode, slug string) *driving.CallbackResult {
	return &driving.CallbackResult{
		Success:        false,
		Code:           code,
		RedirectTarget: domain.FailureRedirect(code, slug),
	}
}
