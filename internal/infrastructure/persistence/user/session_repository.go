package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/domain/user"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/persistence/database"
)

// SQLSessionRepository stores login sessions so they can be revoked.
type SQLSessionRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLSessionRepository creates a new instance of the repository.
func NewSQLSessionRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLSessionRepository {
	return &SQLSessionRepository{db: db, logger: logger}
}

func (r *SQLSessionRepository) Create(ctx context.Context, s *user.SessionRecord) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at, revoked_at) VALUES (?, ?, ?, ?, NULL)`,
		s.ID, s.UserID, database.FormatTime(s.CreatedAt), database.FormatTime(s.ExpiresAt))
	if err != nil {
		r.logger.Database().Error("Failed to insert session", "error", err.Error())
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// FindByID returns nil, nil when the session does not exist.
func (r *SQLSessionRepository) FindByID(ctx context.Context, id string) (*user.SessionRecord, error) {
	var s user.SessionRecord
	var created, expires string
	var revoked sql.NullString

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, created_at, expires_at, revoked_at FROM sessions WHERE id = ?`, id).
		Scan(&s.ID, &s.UserID, &created, &expires, &revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	s.CreatedAt = database.ParseTime(created)
	s.ExpiresAt = database.ParseTime(expires)
	s.RevokedAt = database.ParseNullTime(revoked)
	return &s, nil
}

// Revoke marks a session as logged out. Revoking twice keeps the first timestamp.
func (r *SQLSessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.Exec(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?`, database.FormatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// DeleteExpired removes sessions that expired before the given time.
func (r *SQLSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < ?`, database.FormatTime(before))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		r.logger.Database().Info("Expired sessions removed", "count", n)
	}
	return n, nil
}
