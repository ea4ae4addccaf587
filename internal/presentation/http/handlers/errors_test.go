package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Diampra/octopus-server/internal/application/services"
	"github.com/Diampra/octopus-server/internal/domain/entities/admin"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
)

func TestRespondErrorStatusCodes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"auth required", session.ErrAuthRequired, http.StatusUnauthorized, `"auth_required"`},
		{"expired session", session.ErrSessionExpired, http.StatusUnauthorized, `"auth_required"`},
		{"forbidden", session.ErrForbidden, http.StatusForbidden, `"forbidden"`},
		{"incomplete audit", admin.NewIncompleteAuditError(&admin.SourceReadError{Source: "post", Err: errors.New("boom")}), http.StatusServiceUnavailable, `"failedSources":["post"]`},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized, `"invalid_credentials"`},
		{"validation", fmt.Errorf("%w: title is required", services.ErrValidation), http.StatusBadRequest, `"invalid_request"`},
		{"not found", fmt.Errorf("post x: %w", repositories.ErrNotFound), http.StatusNotFound, `"not_found"`},
		{"duplicate", fmt.Errorf("post x: %w", repositories.ErrDuplicate), http.StatusConflict, `"conflict"`},
		{"too large", services.ErrUploadTooLarge, http.StatusRequestEntityTooLarge, `"too_large"`},
		{"media type", services.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, `"unsupported_media_type"`},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, `"internal server error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			respondError(c, logging.NewNopLogger(), nil, "test", tt.err)

			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
			assert.NotContains(t, w.Body.String(), "disk on fire")
		})
	}
}
