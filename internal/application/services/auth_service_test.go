package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/infrastructure/database/dbtest"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
	userrepo "github.com/Diampra/octopus-server/internal/infrastructure/persistence/user"
)

func newAuthService(t *testing.T) (*AuthService, *userrepo.SQLUserRepository) {
	t.Helper()
	db := dbtest.New(t)
	logger := logging.NewNopLogger()
	users := userrepo.NewSQLUserRepository(db, logger)
	sessions := userrepo.NewSQLSessionRepository(db, logger)
	svc := NewAuthService(users, sessions, AuthConfig{JWTSecret: "test-secret", SessionTTL: time.Hour}, logger, performance.NewTracker(nil))
	return svc, users
}

func TestLoginValidateLogout(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	_, err := auth.CreateUser(ctx, "Admin@Example.com", "correct-horse", true)
	require.NoError(t, err)

	_, err = auth.Login(ctx, "admin@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := auth.Login(ctx, "admin@example.com", "correct-horse")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.True(t, res.Session.IsAdmin)

	sess, err := auth.Validate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.Session.ID, sess.ID)
	assert.Equal(t, "admin@example.com", sess.Email)
	assert.NoError(t, session.RequireAdmin(sess, time.Now()))

	require.NoError(t, auth.Logout(ctx, res.Token))
	_, err = auth.Validate(ctx, res.Token)
	assert.ErrorIs(t, err, session.ErrAuthRequired)

	// Logging out twice is harmless.
	assert.NoError(t, auth.Logout(ctx, res.Token))
}

func TestValidateRejectsBadTokens(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	_, err := auth.Validate(ctx, "")
	assert.ErrorIs(t, err, session.ErrAuthRequired)

	_, err = auth.Validate(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, session.ErrAuthRequired)
	assert.NotErrorIs(t, err, session.ErrSessionExpired)
}

func TestValidateExpiredSession(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	_, err := auth.CreateUser(ctx, "admin@example.com", "correct-horse", true)
	require.NoError(t, err)
	res, err := auth.Login(ctx, "admin@example.com", "correct-horse")
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	_, err = auth.Validate(ctx, res.Token)
	assert.ErrorIs(t, err, session.ErrSessionExpired)
	assert.ErrorIs(t, err, session.ErrAuthRequired)

	n, err := auth.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRoleIsReadOnEveryValidation(t *testing.T) {
	auth, users := newAuthService(t)
	ctx := context.Background()

	u, err := auth.CreateUser(ctx, "editor@example.com", "correct-horse", true)
	require.NoError(t, err)
	res, err := auth.Login(ctx, "editor@example.com", "correct-horse")
	require.NoError(t, err)

	require.NoError(t, users.UpdatePassword(ctx, u.ID, u.PasswordHash, false))

	sess, err := auth.Validate(ctx, res.Token)
	require.NoError(t, err)
	assert.False(t, sess.IsAdmin)
	assert.ErrorIs(t, session.RequireAdmin(sess, time.Now()), session.ErrForbidden)
}

func TestCreateUserValidation(t *testing.T) {
	auth, _ := newAuthService(t)
	ctx := context.Background()

	_, err := auth.CreateUser(ctx, "not-an-email", "correct-horse", false)
	assert.ErrorIs(t, err, ErrValidation)
	_, err = auth.CreateUser(ctx, "a@example.com", "short", false)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = auth.CreateUser(ctx, "a@example.com", "long-enough", false)
	require.NoError(t, err)
	_, err = auth.CreateUser(ctx, "A@example.com", "long-enough", false)
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}

func TestEnsureAdmin(t *testing.T) {
	auth, users := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, auth.EnsureAdmin(ctx, "boot@example.com", "first-password"))
	require.NoError(t, auth.EnsureAdmin(ctx, "boot@example.com", "first-password"))

	u, err := users.FindByEmail(ctx, "boot@example.com")
	require.NoError(t, err)
	require.NoError(t, users.UpdatePassword(ctx, u.ID, u.PasswordHash, false))

	require.NoError(t, auth.EnsureAdmin(ctx, "boot@example.com", "second-password"))
	res, err := auth.Login(ctx, "boot@example.com", "second-password")
	require.NoError(t, err)
	assert.True(t, res.Session.IsAdmin)
}
