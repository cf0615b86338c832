package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/playdex/claim-core/internal/core/domain"
	"github.com/playdex/claim-core/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// sessionSecrets is the encrypted portion of a session row. The provider
// tokens never land in the database as plaintext.
type sessionSecrets struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// SessionStore implements driven.SessionStore using PostgreSQL with
// provider tokens encrypted at rest.
type SessionStore struct {
	db        *DB
	encryptor *SecretEncryptor
}

// NewSessionStore creates a new PostgreSQL-backed session store.
func NewSessionStore(db *DB, encryptor *SecretEncryptor) *SessionStore {
	return &SessionStore{db: db, encryptor: encryptor}
}

// Save stores a session, upserting on ID so a token refresh re-persists
// in place.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	blob, err := s.encryptor.Encrypt(sessionSecrets{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
	if err != nil {
		return fmt.Errorf("encrypt session secrets: %w", err)
	}

	query := `
		INSERT INTO sessions (id, subject_id, handle, secret_blob, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			secret_blob = EXCLUDED.secret_blob,
			expires_at = EXCLUDED.expires_at
	`

	_, err = s.db.ExecContext(ctx, query,
		session.ID,
		session.SubjectID,
		session.Handle,
		blob,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT id, subject_id, handle, secret_blob, expires_at, created_at
		FROM sessions
		WHERE id = $1
	`

	var session domain.Session
	var blob []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.SubjectID,
		&session.Handle,
		&blob,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var secrets sessionSecrets
	if err := s.encryptor.Decrypt(blob, &secrets); err != nil {
		return nil, fmt.Errorf("decrypt session secrets: %w", err)
	}
	session.AccessToken = secrets.AccessToken
	session.RefreshToken = secrets.RefreshToken

	return &session, nil
}

// Delete deletes a session. Safe to call when already gone.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Cleanup removes expired sessions.
func (s *SessionStore) Cleanup(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	return removed, nil
}
