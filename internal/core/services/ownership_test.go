package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/playdex/claim-core/internal/core/domain"
)

// MockGameStore is a testify mock of driven.GameStore
type MockGameStore struct {
	mock.Mock
}

func (m *MockGameStore) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Game), args.Error(1)
}

func (m *MockGameStore) GetBySlug(ctx context.Context, slug string) (*domain.Game, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Game), args.Error(1)
}

func (m *MockGameStore) ClaimIfUnclaimed(ctx context.Context, id, externalID, handle string) (bool, error) {
	args := m.Called(ctx, id, externalID, handle)
	return args.Bool(0), args.Error(1)
}

func (m *MockGameStore) RecordClaim(ctx context.Context, audit *domain.ClaimAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func TestExtractHandle(t *testing.T) {
	tests := []struct {
		name     string
		ownerURL string
		want     string
	}{
		{"full url", "https://provider.example/alice", "alice"},
		{"no scheme with query", "provider.example/alice?x=1", "alice"},
		{"trailing slash", "https://provider.example/alice/", "alice"},
		{"nested path", "https://provider.example/alice/games", "alice"},
		{"http scheme", "http://provider.example/Bob", "Bob"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"not a url", "not a url##", ""},
		{"host only", "https://provider.example", ""},
		{"host only no scheme", "provider.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractHandle(tt.ownerURL))
		})
	}
}

func TestOwnershipVerifier_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("verified case-insensitive", func(t *testing.T) {
		games := new(MockGameStore)
		games.On("GetByID", mock.Anything, "g1").Return(&domain.Game{
			ID:       "g1",
			Slug:     "space-explorer",
			OwnerURL: "https://provider.example/alice",
		}, nil)

		verifier := NewOwnershipVerifier(games)
		require.NoError(t, verifier.Verify(ctx, "g1", "Alice"))
		games.AssertExpectations(t)
	})

	t.Run("mismatch", func(t *testing.T) {
		games := new(MockGameStore)
		games.On("GetByID", mock.Anything, "g1").Return(&domain.Game{
			ID:       "g1",
			Slug:     "space-explorer",
			OwnerURL: "https://provider.example/alice",
		}, nil)

		verifier := NewOwnershipVerifier(games)
		err := verifier.Verify(ctx, "g1", "bob")
		assert.ErrorIs(t, err, domain.ErrHandleMismatch)
	})

	t.Run("invalid owner url", func(t *testing.T) {
		games := new(MockGameStore)
		games.On("GetByID", mock.Anything, "g2").Return(&domain.Game{
			ID:       "g2",
			Slug:     "broken-owner",
			OwnerURL: "not a url##",
		}, nil)

		verifier := NewOwnershipVerifier(games)
		err := verifier.Verify(ctx, "g2", "alice")
		assert.ErrorIs(t, err, domain.ErrInvalidOwnerURL)
	})

	t.Run("game not found", func(t *testing.T) {
		games := new(MockGameStore)
		games.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

		verifier := NewOwnershipVerifier(games)
		err := verifier.Verify(ctx, "missing", "alice")
		assert.ErrorIs(t, err, domain.ErrGameNotFound)
	})
}
