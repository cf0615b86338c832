package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/playdex/claim-core/internal/core/domain"
	"github.com/playdex/claim-core/internal/core/ports/driving"
)

// mockAttemptStore implements driven.AttemptStore with single-use
// consume semantics.
type mockAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]*domain.AuthAttempt
	saveErr  error
}

func newMockAttemptStore() *mockAttemptStore {
	return &mockAttemptStore{attempts: make(map[string]*domain.AuthAttempt)}
}

func (m *mockAttemptStore) Save(ctx context.Context, attempt *domain.AuthAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	copy := *attempt
	m.attempts[attempt.State] = &copy
	return nil
}

func (m *mockAttemptStore) Consume(ctx context.Context, state string) (*domain.AuthAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	attempt, ok := m.attempts[state]
	if !ok {
		return nil, nil
	}
	delete(m.attempts, state)
	if attempt.IsExpired() {
		return nil, nil
	}
	return attempt, nil
}

func (m *mockAttemptStore) Cleanup(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for state, attempt := range m.attempts {
		if attempt.IsExpired() {
			delete(m.attempts, state)
			removed++
		}
	}
	return removed, nil
}

type flowFixture struct {
	flow     driving.AuthFlowService
	attempts *mockAttemptStore
	games    *mockGameStore
	provider *fakeProvider
	sessions *mockSessionStore
}

func newFlowFixture() *flowFixture {
	attempts := newMockAttemptStore()
	games := newMockGameStore()
	provider := &fakeProvider{}
	sessionStore := newMockSessionStore()

	flow := NewAuthFlowService(AuthFlowConfig{
		Attempts: attempts,
		Games:    games,
		Provider: provider,
		Sessions: NewSessionService(SessionServiceConfig{
			Sessions: sessionStore,
			Provider: provider,
			Auth:     mockAuthAdapter{},
		}),
	})

	return &flowFixture{
		flow:     flow,
		attempts: attempts,
		games:    games,
		provider: provider,
		sessions: sessionStore,
	}
}

// startClaim runs StartAuth for a claim target and returns the stored state.
func (f *flowFixture) startClaim(t *testing.T, gameID, gameSlug string) string {
	t.Helper()
	resp, err := f.flow.StartAuth(context.Background(), driving.StartAuthRequest{GameID: gameID, GameSlug: gameSlug})
	if err != nil {
		t.Fatalf("StartAuth failed: %v", err)
	}
	return resp.State
}

func TestStartAuth_BuildsAuthorizationURL(t *testing.T) {
	f := newFlowFixture()

	resp, err := f.flow.StartAuth(context.Background(), driving.StartAuthRequest{GameID: "g1", GameSlug: "space-explorer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(resp.AuthorizationURL, "state="+resp.State) {
		t.Errorf("authorization URL missing state: %s", resp.AuthorizationURL)
	}
	stored := f.attempts.attempts[resp.State]
	if stored == nil {
		t.Fatal("attempt not stored")
	}
	if stored.GameID != "g1" || stored.GameSlug != "space-explorer" {
		t.Errorf("target not stored: %+v", stored)
	}
	if !strings.Contains(resp.AuthorizationURL, "code_challenge="+stored.CodeChallenge) {
		t.Errorf("authorization URL missing challenge: %s", resp.AuthorizationURL)
	}
	if time.Until(resp.ExpiresAt) <= 0 {
		t.Error("attempt already expired")
	}
}

func TestStartAuth_ResolvesSlug(t *testing.T) {
	f := newFlowFixture()
	f.games.games["g1"] = &domain.Game{ID: "g1", Slug: "space-explorer"}

	resp, err := f.flow.StartAuth(context.Background(), driving.StartAuthRequest{GameSlug: "space-explorer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := f.attempts.attempts[resp.State]
	if stored == nil {
		t.Fatal("attempt not stored")
	}
	if stored.GameID != "g1" {
		t.Errorf("slug not resolved to game ID: %+v", stored)
	}
}

func TestStartAuth_UnknownSlug(t *testing.T) {
	f := newFlowFixture()

	_, err := f.flow.StartAuth(context.Background(), driving.StartAuthRequest{GameSlug: "no-such-game"})
	if !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if len(f.attempts.attempts) != 0 {
		t.Error("attempt stored for unknown game")
	}
}

func TestHandleCallback_ClaimSuccess(t *testing.T) {
	f := newFlowFixture()
	f.games.games["g1"] = &domain.Game{
		ID:       "g1",
		Slug:     "space-explorer",
		OwnerURL: "https://provider.example/devx",
	}
	state := f.startClaim(t, "g1", "space-explorer")

	result := f.flow.HandleCallback(context.Background(), driving.CallbackRequest{Code: "code-1", State: state})

	if !result.Success {
		t.Fatalf("expected success, got %s", result.Code)
	}
	if result.RedirectTarget != "/games/space-explorer?success=game-claimed" {
		t.Errorf("unexpected redirect: %s", result.RedirectTarget)
	}
	if result.SessionToken == "" {
		t.Error("expected a session for the verified owner")
	}
	game := f.games.games["g1"]
	if !game.Claimed || game.ClaimedByHandle != "DevX" {
		t.Errorf("claim not committed: %+v", game)
	}
	// PKCE binding: the stored verifier was presented at exchange.
	if f.provider.lastVerifier == "" {
		t.Error("code verifier not presented at token exchange")
	}
}

func TestHandleCallback_HandleMismatch(t *testing.T) {
	f := newFlowFixture()
	f.games.games["g1"] = &domain.Game{
		ID:       "g1",
		Slug:     "space-explorer",
		OwnerURL: "https://provider.example/devx",
	}
	f.provider.profile = &domain.IdentityProfile{ExternalID: "ext-2", Handle: "OtherDev"}
	state := f.startClaim(t, "g1", "space-explorer")

	result := f.flow.HandleCallback(context.Background(), driving.CallbackRequest{Code: "code-1", State: state})

	if result.Success || result.Code != domain.FailureHandleMismatch {
		t.Fatalf("expected handle mismatch, got %+v", result)
	}
	if result.RedirectTarget != "/games/space-explorer?error=not_your_game" {
		t.Errorf("unexpected redirect: %s", result.RedirectTarget)
	}
	if f.games.games["g1"].Claimed {
		t.Error("mismatched identity must not claim")
	}
}

func TestHandleCallback_UnknownState(t *testing.T) {
	f := newFlowFixture()

	result := f.flow.HandleCallback(context.Background(), driving.CallbackRequest{Code: "code-1", State: "forged-or-expired"})

	if result.Success || result.Code != domain.FailureSessionExpired {
		t.Fatalf("expected session expired, got %+v", result)
	}
	if result.RedirectTarget != "/claim/error?error=session_expired" {
		t.Errorf("unexpected redirect: %s", result.RedirectTarget)
	}
	if f.provider.exchangeCalls != 0 {
		t.Error("must not exchange a code without a valid attempt")
	}
}

func TestHandleCallback_ExpiredAttempt(t *testing.T) {
	f := newFlowFixture()
	f.attempts.attempts["st-1"] = &domain.AuthAttempt{
		State:        "st-1",
		CodeVerifier: "verifier",
		ExpiresAt:    time.Now().Add(-time.Minute),
	}

	result := f.flow.HandleCallback(context.Background(), driving.CallbackRequest{Code: "code-1", State: "st-1"})
	if result.Code != domain.FailureSessionExpired {
		t.Fatalf("expected session expired, got %+v", result)
	}
}

func TestHandleCallback_StateIsSingleUse(t *testing.T) {
	f := newFlowFixture()
	state := f.startClaim(t, "", "")

	first := f.flow.HandleCallback(context.Background(), driving.CallbackRequest{Code: "code-1", State: state})
	if !first.Success {
		t.Fatalf("first callback should succeed: %+v", first)
	}

	second := f.flow.HandleCallback(context.Background(), driving.CallbackRequest{Code: "code-1", State: state})
	if second.Success || second.Code != domain.FailureSessionExpired {
		t.Fatalf("replayed state must fail, got %+v", second)
	}
	if f.provider.exchangeCalls != 1 {
		t.Errorf("code exchanged %d times, want exactly once", f.provider.exchangeCalls)
	}
}

func TestHandleCallback_ProviderDenied(t *testing.T) {
	f := newFlowFixture()
	state := f.startClaim(t, "", "")

	result := f.flow.HandleCallback(context.Background(), driving.CallbackRequest{
		State:            state,
		Error:            "access_denied",
		ErrorDescription: "the user denied access",
	})

	if result.Code != domain.FailureProviderDenied {
		t.Fatalf("expected provider denied, got %+v", result)
	}
	// The attempt store must not be touched on a provider error.
	if _, ok := f.attempts.attempts[state]; !ok {
		t.Error("attempt was consumed on a provider-reported error")
	}
	// Internal/provider text must never leak into the redirect.
	if strings.Contains(result.RedirectTarget, "denied access") {
		t.Errorf("provider error text leaked into redirect: %s", result.RedirectTarget)
	}
}

func TestHandleCallback_MissingCode(t *testing.T) {
	f := newFlowFixture()
	state := f.startClaim(t, "", "")

	result := f.flow.HandleCallback(context.Background(), driving.CallbackRequest{State: state})
	if result.Code != domain.FailureMissingCode {
		t.Fatalf("expected missing code, got %+v", result)
	}
	if f.provider.exchangeCalls != 0 {
		t.Error("must not exchange with no code")
	}
}

func TestHandleCallback_ExchangeFailureIsNotRetried(t *testing.T) {
	f := newFlowFixture()
	f.provider.exchangeErr = errors.New("invalid_grant")
	state := f.startClaim(t, "", "")

	result := f.flow.HandleCallback(context.Background(), driving.CallbackRequest{Code: "code-1", State: state})

	if result.Code != domain.FailureTokenExchange {
		t.Fatalf("expected token exchange failure, got %+v", result)
	}
	if f.provider.exchangeCalls != 1 {
		t.Errorf("exchange attempted %d times, want exactly one", f.provider.exchangeCalls)
	}
	// The state was consumed; restarting the flow is the only remedy.
	if _, ok := f.attempts.attempts[state]; ok {
		t.Error("attempt should be consumed even on exchange failure")
	}
}

func TestHandleCallback_ProfileFetchFailure(t *testing.T) {
	f := newFlowFixture()
	f.provider.profileErr = errors.New("503")
	state := f.startClaim(t, "", "")

	result := f.flow.HandleCallback(context.Background(), driving.CallbackRequest{Code: "code-1", State: state})
	if result.Code != domain.FailureProfileFetch {
		t.Fatalf("expected profile fetch failure, got %+v", result)
	}
}

func TestHandleCallback_PlainLogin(t *testing.T) {
	f := newFlowFixture()
	state := f.startClaim(t, "", "")

	result := f.flow.HandleCallback(context.Background(), driving.CallbackRequest{Code: "code-1", State: state})

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.RedirectTarget != "/" {
		t.Errorf("expected landing page redirect, got %s", result.RedirectTarget)
	}
	if result.SessionToken == "" {
		t.Error("expected a session token")
	}
	if len(f.sessions.sessions) != 1 {
		t.Errorf("expected one stored session, got %d", len(f.sessions.sessions))
	}
}

func TestVerifyAndClaim_AlreadyClaimed(t *testing.T) {
	f := newFlowFixture()
	f.games.games["g1"] = &domain.Game{
		ID:       "g1",
		Slug:     "space-explorer",
		OwnerURL: "https://provider.example/devx",
		Claimed:  true,
	}

	result := f.flow.VerifyAndClaim(context.Background(), "g1", "space-explorer",
		domain.IdentityProfile{ExternalID: "ext-1", Handle: "DevX"})

	if result.Success || result.Code != domain.FailureAlreadyClaimed {
		t.Fatalf("expected already claimed, got %+v", result)
	}
	if result.RedirectTarget != "/games/space-explorer?error=already_claimed" {
		t.Errorf("unexpected redirect: %s", result.RedirectTarget)
	}
}

func TestVerifyAndClaim_GameNotFound(t *testing.T) {
	f := newFlowFixture()

	result := f.flow.VerifyAndClaim(context.Background(), "missing", "gone",
		domain.IdentityProfile{ExternalID: "ext-1", Handle: "DevX"})

	if result.Code != domain.FailureGameNotFound {
		t.Fatalf("expected game not found, got %+v", result)
	}
}
