// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/application/services"
	"github.com/Diampra/octopus-server/internal/domain/entities/admin"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
	"github.com/Diampra/octopus-server/internal/presentation/http/middleware"
)

// respondError maps service errors to status codes. Unknown errors are logged
// and hidden from the caller.
func respondError(c *gin.Context, logger *logging.ChanneledLogger, marker *performance.Marker, operation string, err error) {
	if marker != nil {
		marker.SetError(err)
	}

	var incomplete *admin.IncompleteAuditError
	switch {
	case errors.Is(err, session.ErrAuthRequired), errors.Is(err, session.ErrForbidden):
		middleware.AbortWithAuthError(c, err)
	case errors.As(err, &incomplete):
		logger.Audit().Warn("Audit returned incomplete", "operation", operation, "failedSources", incomplete.FailedSources())
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":          "incomplete_audit",
			"error":         err.Error(),
			"failedSources": incomplete.FailedSources(),
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"code": "invalid_credentials", "error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": err.Error()})
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": err.Error()})
	case errors.Is(err, repositories.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"code": "conflict", "error": err.Error()})
	case errors.Is(err, services.ErrUploadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"code": "too_large", "error": err.Error()})
	case errors.Is(err, services.ErrUnsupportedMediaType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"code": "unsupported_media_type", "error": err.Error()})
	default:
		logger.LogError(logging.ChannelSystem, operation, err, map[string]any{"path": c.Request.URL.Path})
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal_error", "error": "internal server error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": "invalid_request", "error": "invalid request body", "details": err.Error()})
}

// currentSession returns the session placed by the auth middleware, or nil.
// Services run the admin check again on it.
func currentSession(c *gin.Context) *session.Session {
	sess, _ := middleware.GetSession(c)
	return sess
}
