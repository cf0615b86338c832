package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/playdex/claim-core/internal/core/domain"
	"github.com/playdex/claim-core/internal/core/ports/driven"
)

// Ensure AttemptStore implements the interface.
var _ driven.AttemptStore = (*AttemptStore)(nil)

// AttemptStore implements driven.AttemptStore using PostgreSQL.
type AttemptStore struct {
	db *DB
}

// NewAttemptStore creates a new PostgreSQL-backed attempt store.
func NewAttemptStore(db *DB) *AttemptStore {
	return &AttemptStore{db: db}
}

// Save stores a new pending attempt.
func (s *AttemptStore) Save(ctx context.Context, attempt *domain.AuthAttempt) error {
	query := `
		INSERT INTO auth_attempts (state, code_verifier, game_id, game_slug, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query,
		attempt.State,
		attempt.CodeVerifier,
		attempt.GameID,
		attempt.GameSlug,
		attempt.CreatedAt,
		attempt.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save attempt: %w", err)
	}

	return nil
}

// Consume atomically retrieves and deletes the attempt.
// Uses DELETE ... RETURNING so two concurrent consumptions of the same
// state cannot both succeed. Expired rows are treated as absent.
func (s *AttemptStore) Consume(ctx context.Context, state string) (*domain.AuthAttempt, error) {
	query := `
		DELETE FROM auth_attempts
		WHERE state = $1 AND expires_at > NOW()
		RETURNING state, code_verifier, game_id, game_slug, created_at, expires_at
	`

	var attempt domain.AuthAttempt
	err := s.db.QueryRowContext(ctx, query, state).Scan(
		&attempt.State,
		&attempt.CodeVerifier,
		&attempt.GameID,
		&attempt.GameSlug,
		&attempt.CreatedAt,
		&attempt.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // attempt not found, expired, or already consumed
	}
	if err != nil {
		return nil, fmt.Errorf("consume attempt: %w", err)
	}

	return &attempt, nil
}

// Cleanup removes expired attempts.
func (s *AttemptStore) Cleanup(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM auth_attempts WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("cleanup attempts: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup attempts: %w", err)
	}
	return removed, nil
}
