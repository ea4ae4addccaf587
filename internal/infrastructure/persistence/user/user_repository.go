// Package user provides the concrete SQL-based implementations of
// the user domain repositories (User, Session).
package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/domain/user"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/persistence/database"
)

// SQLUserRepository is the SQL-based implementation of the UserRepository.
type SQLUserRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLUserRepository creates a new instance of the repository.
func NewSQLUserRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLUserRepository {
	return &SQLUserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `id, email, password_hash, is_admin, created_at`

// FindByID retrieves a User by their unique identifier. It returns nil, nil when absent.
func (r *SQLUserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	start := time.Now()
	r.logger.Database().Debug("Loading user by ID", "id", id)

	u, err := r.scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Database().Debug("User not found by ID", "id", id)
			return nil, nil
		}
		r.logger.Database().Error("Failed to load user by ID", "error", err.Error(), "id", id)
		return nil, err
	}

	r.logger.Database().Debug("User loaded by ID", "id", id, "duration", time.Since(start))
	return u, nil
}

// FindByEmail retrieves a User by email, compared case-insensitively.
func (r *SQLUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	email = normalizeEmail(email)
	u, err := r.scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Database().Error("Failed to load user by email", "error", err.Error())
		return nil, err
	}
	return u, nil
}

// Store inserts a new user.
func (r *SQLUserRepository) Store(ctx context.Context, u *user.User) error {
	u.Email = normalizeEmail(u.Email)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, is_admin, created_at) VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.IsAdmin, database.FormatTime(u.CreatedAt))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return fmt.Errorf("user %s: %w", u.Email, repositories.ErrDuplicate)
		}
		r.logger.Database().Error("Failed to insert user", "error", err.Error())
		return fmt.Errorf("failed to insert user: %w", err)
	}

	r.logger.Database().Info("User created", "id", u.ID, "isAdmin", u.IsAdmin)
	return nil
}

// UpdatePassword replaces the password hash and admin flag of an existing user.
func (r *SQLUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string, isAdmin bool) error {
	res, err := r.db.Exec(ctx, `UPDATE users SET password_hash = ?, is_admin = ? WHERE id = ?`, passwordHash, isAdmin, id)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *SQLUserRepository) scanUser(row *sql.Row) (*user.User, error) {
	var u user.User
	var created string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsAdmin, &created); err != nil {
		return nil, err
	}
	u.CreatedAt = database.ParseTime(created)
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
