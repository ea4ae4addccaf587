package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Diampra/octopus-server/internal/domain/entities/session"
)

// ErrValidation marks invalid caller input. Messages are safe to show to users.
var ErrValidation = errors.New("validation failed")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// requireAdmin is the gate every mutating service method passes first.
func requireAdmin(s *session.Session) error {
	return session.RequireAdmin(s, time.Now())
}
