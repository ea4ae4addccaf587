// Package middleware provides HTTP middleware for the presentation layer.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
)

const (
	sessionKey   = "session"
	authErrorKey = "authError"
)

// SessionValidator resolves a token into a live session.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*session.Session, error)
}

// SessionMiddleware attaches the caller's session, if any, to the request.
// It never rejects a request; RequireAdmin does.
func SessionMiddleware(validator SessionValidator, cookieName string, logger *logging.ChanneledLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c, cookieName)
		if token == "" {
			c.Next()
			return
		}

		sess, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, session.ErrAuthRequired) {
				logger.Auth().Error("Session validation failed", "error", err.Error(), "path", c.Request.URL.Path)
			}
			c.Set(authErrorKey, err)
			c.Next()
			return
		}

		c.Set(sessionKey, sess)
		c.Next()
	}
}

// RequireAdmin rejects the request before any handler work unless the caller
// holds a live admin session.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := GetSession(c)
		if sess == nil {
			if v, ok := c.Get(authErrorKey); ok {
				if err, ok := v.(error); ok {
					AbortWithAuthError(c, err)
					return
				}
			}
		}
		if err := session.RequireAdmin(sess, time.Now()); err != nil {
			AbortWithAuthError(c, err)
			return
		}
		c.Next()
	}
}

// AbortWithAuthError writes the response for a gate failure.
func AbortWithAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": "forbidden", "error": err.Error()})
	case errors.Is(err, session.ErrAuthRequired):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "auth_required", "error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"code": "session_unavailable", "error": "session lookup failed"})
	}
}

// GetSession returns the session attached by SessionMiddleware.
func GetSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}

// TokenFromRequest reads the session cookie, falling back to a Bearer header.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
