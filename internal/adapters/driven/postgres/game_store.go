package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/playdex/claim-core/internal/core/domain"
	"github.com/playdex/claim-core/internal/core/ports/driven"
)

// Ensure GameStore implements the interface.
var _ driven.GameStore = (*GameStore)(nil)

// GameStore implements driven.GameStore using PostgreSQL.
type GameStore struct {
	db *DB
}

// NewGameStore creates a new PostgreSQL-backed game store.
func NewGameStore(db *DB) *GameStore {
	return &GameStore{db: db}
}

const gameColumns = `id, slug, title, owner_url, claimed, claimed_by_id, claimed_by_handle, claimed_at, created_at`

// GetByID retrieves a game by ID.
func (s *GameStore) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	return scanGame(row)
}

// GetBySlug retrieves a game by its URL slug.
func (s *GameStore) GetBySlug(ctx context.Context, slug string) (*domain.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE slug = $1`, slug)
	return scanGame(row)
}

// ClaimIfUnclaimed performs the atomic conditional claim write. The WHERE
// clause on the current claimed value is what makes two racing claims
// serialize: the loser's UPDATE affects zero rows.
func (s *GameStore) ClaimIfUnclaimed(ctx context.Context, id, externalID, handle string) (bool, error) {
	query := `
		UPDATE games
		SET claimed = TRUE, claimed_by_id = $2, claimed_by_handle = $3, claimed_at = NOW()
		WHERE id = $1 AND claimed = FALSE
	`

	result, err := s.db.ExecContext(ctx, query, id, externalID, handle)
	if err != nil {
		return false, fmt.Errorf("claim game: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim game rows affected: %w", err)
	}

	return affected == 1, nil
}

// RecordClaim writes the secondary claim-audit row.
func (s *GameStore) RecordClaim(ctx context.Context, audit *domain.ClaimAudit) error {
	query := `
		INSERT INTO claim_audits (id, game_id, external_id, handle, claimed_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.ExecContext(ctx, query,
		audit.ID,
		audit.GameID,
		audit.ExternalID,
		audit.Handle,
		audit.ClaimedAt,
	)
	if err != nil {
		return fmt.Errorf("record claim audit: %w", err)
	}
	return nil
}

// scanGame scans a single game row, mapping nullable claim columns.
func scanGame(row *sql.Row) (*domain.Game, error) {
	var game domain.Game
	var claimedByID, claimedByHandle sql.NullString
	var claimedAt sql.NullTime

	err := row.Scan(
		&game.ID,
		&game.Slug,
		&game.Title,
		&game.OwnerURL,
		&game.Claimed,
		&claimedByID,
		&claimedByHandle,
		&claimedAt,
		&game.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan game: %w", err)
	}

	game.ClaimedByID = claimedByID.String
	game.ClaimedByHandle = claimedByHandle.String
	if claimedAt.Valid {
		game.ClaimedAt = &claimedAt.Time
	}

	return &game, nil
}
