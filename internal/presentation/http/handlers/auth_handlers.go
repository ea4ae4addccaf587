package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/application/services"
	"github.com/Diampra/octopus-server/internal/domain/entities/session"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
	"github.com/Diampra/octopus-server/internal/presentation/http/middleware"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandlers contains all authentication-related HTTP handlers
type AuthHandlers struct {
	authService *services.AuthService
	cookie      CookieConfig
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, cookie CookieConfig, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		cookie:      cookie,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// PostLogin handles POST /auth/login. The token is returned in the body and
// set as an HTTP-only cookie.
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("login_request")
	defer marker.Complete()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, marker, "login", err)
		return
	}

	maxAge := int(time.Until(result.Session.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, result.Token, maxAge, "/", "", h.cookie.Secure, true)

	h.logger.Auth().Info("Login request completed", "subjectId", result.Session.SubjectID, "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{
		"token":     result.Token,
		"user":      gin.H{"id": result.Session.SubjectID, "email": result.Session.Email, "isAdmin": result.Session.IsAdmin},
		"expiresAt": result.Session.ExpiresAt,
	})
}

// PostLogout handles POST /auth/logout.
func (h *AuthHandlers) PostLogout(c *gin.Context) {
	marker := h.perfTracker.StartOperation("logout_request")
	defer marker.Complete()

	token := middleware.TokenFromRequest(c, h.cookie.Name)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, h.logger, marker, "logout", err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetMe handles GET /auth/me for the admin UI.
func (h *AuthHandlers) GetMe(c *gin.Context) {
	sess := currentSession(c)
	if err := session.RequireAuthenticated(sess, time.Now()); err != nil {
		middleware.AbortWithAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":      gin.H{"id": sess.SubjectID, "email": sess.Email, "isAdmin": sess.IsAdmin},
		"expiresAt": sess.ExpiresAt,
	})
}
