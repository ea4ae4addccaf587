package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/domain/user"
	"github.com/Diampra/octopus-server/internal/infrastructure/database/dbtest"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
)

func TestUserRepository(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSQLUserRepository(db, logging.NewNopLogger())
	ctx := context.Background()

	u := &user.User{ID: "u1", Email: " Admin@Example.com ", PasswordHash: "hash", IsAdmin: true}
	require.NoError(t, repo.Store(ctx, u))

	found, err := repo.FindByEmail(ctx, "admin@example.COM")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "u1", found.ID)
	assert.True(t, found.IsAdmin)

	err = repo.Store(ctx, &user.User{ID: "u2", Email: "admin@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)

	missing, err := repo.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.UpdatePassword(ctx, "u1", "hash2", false))
	found, err = repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "hash2", found.PasswordHash)
	assert.False(t, found.IsAdmin)

	assert.ErrorIs(t, repo.UpdatePassword(ctx, "nope", "h", false), repositories.ErrNotFound)
}

func TestSessionRepository(t *testing.T) {
	db := dbtest.New(t)
	logger := logging.NewNopLogger()
	users := NewSQLUserRepository(db, logger)
	sessions := NewSQLSessionRepository(db, logger)
	ctx := context.Background()

	require.NoError(t, users.Store(ctx, &user.User{ID: "u1", Email: "a@b.c", PasswordHash: "h"}))

	now := time.Now().UTC()
	require.NoError(t, sessions.Create(ctx, &user.SessionRecord{ID: "s1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, sessions.Create(ctx, &user.SessionRecord{ID: "s2", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(-time.Hour)}))

	s, err := sessions.FindByID(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Nil(t, s.RevokedAt)

	require.NoError(t, sessions.Revoke(ctx, "s1", now))
	s, err = sessions.FindByID(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, s.RevokedAt)
	assert.ErrorIs(t, sessions.Revoke(ctx, "nope", now), repositories.ErrNotFound)

	n, err := sessions.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
