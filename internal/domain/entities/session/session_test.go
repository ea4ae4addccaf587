package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequireAdmin(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	revoked := now.Add(-time.Minute)

	tests := []struct {
		name    string
		session *Session
		wantErr error
		state   State
	}{
		{"nil session", nil, ErrAuthRequired, StateAnonymous},
		{"empty session", &Session{}, ErrAuthRequired, StateAnonymous},
		{
			"expired admin",
			&Session{ID: "s1", IsAdmin: true, ExpiresAt: now},
			ErrSessionExpired,
			StateExpired,
		},
		{
			"logged out admin",
			&Session{ID: "s1", IsAdmin: true, ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked},
			ErrAuthRequired,
			StateLoggedOut,
		},
		{
			"non-admin",
			&Session{ID: "s1", ExpiresAt: now.Add(time.Hour)},
			ErrForbidden,
			StateNonAdmin,
		},
		{
			"admin",
			&Session{ID: "s1", IsAdmin: true, ExpiresAt: now.Add(time.Hour)},
			nil,
			StateAdmin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.state, tt.session.StateAt(now))
			err := RequireAdmin(tt.session, now)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSessionExpiredIsAuthRequired(t *testing.T) {
	assert.ErrorIs(t, ErrSessionExpired, ErrAuthRequired)
	assert.NotErrorIs(t, ErrForbidden, ErrAuthRequired)
}

func TestRequireAuthenticatedAllowsNonAdmin(t *testing.T) {
	now := time.Now()
	s := &Session{ID: "s1", ExpiresAt: now.Add(time.Minute)}
	assert.NoError(t, RequireAuthenticated(s, now))
	assert.ErrorIs(t, RequireAdmin(s, now), ErrForbidden)
}
