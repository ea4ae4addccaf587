// Package user defines the user and session-row entities and the interfaces
// for persisting them.
package user

import (
	"context"
	"time"
)

// User is an account that can log in to the admin surface.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SessionRecord is the persisted side of a login. Its ID is the token's sid claim.
type SessionRecord struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// UserRepository defines the operations for persisting User entities.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Store(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string, isAdmin bool) error
}

// SessionRepository defines the operations for persisting login sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *SessionRecord) error
	FindByID(ctx context.Context, id string) (*SessionRecord, error)
	Revoke(ctx context.Context, id string, at time.Time) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
