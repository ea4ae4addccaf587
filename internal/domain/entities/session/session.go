// Package session provides the authenticated session entity and the admin
// authorization check used by every mutating operation.
package session

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrAuthRequired is returned when no valid session is present.
	ErrAuthRequired = errors.New("authentication required")
	// ErrSessionExpired is returned for an expired session. It matches ErrAuthRequired.
	ErrSessionExpired = fmt.Errorf("session expired: %w", ErrAuthRequired)
	// ErrForbidden is returned when the session is valid but lacks the admin role.
	ErrForbidden = errors.New("admin access required")
)

// State is a position in the session lifecycle.
type State string

const (
	StateAnonymous State = "anonymous"
	StateAdmin     State = "admin"
	StateNonAdmin  State = "non-admin"
	StateExpired   State = "expired"
	StateLoggedOut State = "logged-out"
)

// Session is the verified identity of a caller. It is created by the auth
// service after the token, the session row and the user's role were checked.
type Session struct {
	ID        string     `json:"id"`
	SubjectID string     `json:"subjectId"`
	Email     string     `json:"email"`
	IsAdmin   bool       `json:"isAdmin"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"-"`
}

// StateAt returns the lifecycle state of s at now. A nil session is anonymous.
func (s *Session) StateAt(now time.Time) State {
	switch {
	case s == nil || s.ID == "":
		return StateAnonymous
	case s.RevokedAt != nil:
		return StateLoggedOut
	case !now.Before(s.ExpiresAt):
		return StateExpired
	case s.IsAdmin:
		return StateAdmin
	default:
		return StateNonAdmin
	}
}

// RequireAuthenticated checks that s is a live session of any role.
func RequireAuthenticated(s *Session, now time.Time) error {
	switch s.StateAt(now) {
	case StateAdmin, StateNonAdmin:
		return nil
	case StateExpired:
		return ErrSessionExpired
	default:
		return ErrAuthRequired
	}
}

// RequireAdmin checks that s is a live admin session.
func RequireAdmin(s *Session, now time.Time) error {
	if err := RequireAuthenticated(s, now); err != nil {
		return err
	}
	if !s.IsAdmin {
		return ErrForbidden
	}
	return nil
}
