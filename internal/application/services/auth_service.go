// Package services provides application-level orchestration services
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/domain/user"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
	"github.com/Diampra/octopus-server/internal/infrastructure/security"
)

// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthConfig holds the token settings of the auth service.
type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
}

// AuthService handles login, session validation and logout.
type AuthService struct {
	users       user.UserRepository
	sessions    user.SessionRepository
	config      AuthConfig
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	now         func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(users user.UserRepository, sessions user.SessionRepository, config AuthConfig, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthService {
	if config.SessionTTL <= 0 {
		config.SessionTTL = 24 * time.Hour
	}
	return &AuthService{
		users:       users,
		sessions:    sessions,
		config:      config,
		logger:      logger,
		perfTracker: perfTracker,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// LoginResult holds the signed token and the session it represents.
type LoginResult struct {
	Token   string           `json:"token"`
	Session *session.Session `json:"session"`
}

// Login checks the credentials, stores a session row and signs a token for it.
func (a *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	marker := a.perfTracker.StartOperation("auth:login")
	defer marker.Complete()

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		marker.SetError(ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil || !security.CheckPassword(u.PasswordHash, password) {
		a.logger.LogAuthOperation("login", "", false, map[string]any{"reason": "invalid credentials"})
		marker.SetError(ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	}

	now := a.now()
	record := &user.SessionRecord{
		ID:        security.GenerateULID(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(a.config.SessionTTL),
	}
	if err := a.sessions.Create(ctx, record); err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := security.GenerateSessionToken(security.SessionClaims{
		Subject:   u.ID,
		SessionID: record.ID,
		ExpiresAt: record.ExpiresAt,
	}, a.config.JWTSecret)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	a.logger.LogAuthOperation("login", u.ID, true, map[string]any{"isAdmin": u.IsAdmin})
	return &LoginResult{
		Token: token,
		Session: &session.Session{
			ID:        record.ID,
			SubjectID: u.ID,
			Email:     u.Email,
			IsAdmin:   u.IsAdmin,
			ExpiresAt: record.ExpiresAt,
		},
	}, nil
}

// Validate resolves a token to a live session. The admin flag is read from the
// users table on every call so a demotion applies to existing sessions.
// Errors are session.ErrAuthRequired or session.ErrSessionExpired, or a
// wrapped storage error.
func (a *AuthService) Validate(ctx context.Context, token string) (*session.Session, error) {
	if token == "" {
		return nil, session.ErrAuthRequired
	}

	claims, err := security.ValidateSessionToken(token, a.config.JWTSecret)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, session.ErrSessionExpired
		}
		a.logger.Auth().Debug("Rejected session token", "error", err.Error())
		return nil, session.ErrAuthRequired
	}

	record, err := a.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if record == nil || record.UserID != claims.Subject || record.RevokedAt != nil {
		return nil, session.ErrAuthRequired
	}
	if !a.now().Before(record.ExpiresAt) {
		return nil, session.ErrSessionExpired
	}

	u, err := a.users.FindByID(ctx, record.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if u == nil {
		return nil, session.ErrAuthRequired
	}

	return &session.Session{
		ID:        record.ID,
		SubjectID: u.ID,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

// Logout revokes the session behind token. Unknown, invalid and expired tokens
// are a no-op so logout is idempotent.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := security.ValidateSessionToken(token, a.config.JWTSecret)
	if err != nil {
		return nil
	}
	err = a.sessions.Revoke(ctx, claims.SessionID, a.now())
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	a.logger.LogAuthOperation("logout", claims.Subject, true, nil)
	return nil
}

// CreateUser adds an account. An existing email yields repositories.ErrDuplicate.
func (a *AuthService) CreateUser(ctx context.Context, email, password string, isAdmin bool) (*user.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, invalid("a valid email is required")
	}
	if len(password) < 8 {
		return nil, invalid("password must be at least 8 characters")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &user.User{
		ID:           security.GenerateULID(),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    a.now(),
	}
	if err := a.users.Store(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureAdmin creates the bootstrap admin, or resets its password and admin
// flag when the account already exists.
func (a *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	existing, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	if existing == nil {
		if _, err := a.CreateUser(ctx, email, password, true); err != nil {
			return fmt.Errorf("failed to create admin: %w", err)
		}
		a.logger.Startup().Info("Bootstrap admin created", "email", email)
		return nil
	}

	if existing.IsAdmin && security.CheckPassword(existing.PasswordHash, password) {
		return nil
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := a.users.UpdatePassword(ctx, existing.ID, hash, true); err != nil {
		return fmt.Errorf("failed to update admin: %w", err)
	}
	a.logger.Startup().Info("Bootstrap admin updated", "email", email)
	return nil
}

// PurgeExpiredSessions removes session rows that expired before now.
func (a *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	n, err := a.sessions.DeleteExpired(ctx, a.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	if n > 0 {
		a.logger.Auth().Info("Expired sessions purged", "count", n)
	}
	return n, nil
}
