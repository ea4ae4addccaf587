package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
	"github.com/Diampra/octopus-server/internal/infrastructure/storage"
)

const healthCheckTimeout = 5 * time.Second

// Pinger is satisfied by *database.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandlers serves health, performance and log level endpoints.
type SystemHandlers struct {
	db          Pinger
	store       storage.HealthChecker
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	version     string
}

func NewSystemHandlers(db Pinger, store storage.HealthChecker, logger *logging.ChanneledLogger, perfTracker *performance.Tracker, version string) *SystemHandlers {
	return &SystemHandlers{db: db, store: store, logger: logger, perfTracker: perfTracker, version: version}
}

// GetHealth handles GET /health. The store check is skipped when the store
// does not support it.
func (h *SystemHandlers) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Database().Error("Health check database ping failed", "error", err.Error())
		checks["database"] = "unavailable"
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if h.store != nil {
		if err := h.store.CheckConnection(ctx); err != nil {
			h.logger.Storage().Error("Health check storage probe failed", "error", err.Error())
			checks["storage"] = "unavailable"
			healthy = false
		} else {
			checks["storage"] = "ok"
		}
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "version": h.version, "checks": checks})
}

// GetPerformance handles GET /admin/system/performance.
func (h *SystemHandlers) GetPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, h.perfTracker.GetSummary())
}

func (h *SystemHandlers) GetLogLevels(c *gin.Context) {
	c.JSON(http.StatusOK, h.logger.GetChannelLevels())
}

func (h *SystemHandlers) SetLogLevel(c *gin.Context) {
	var req struct {
		Channel string `json:"channel" binding:"required"`
		Level   string `json:"level" binding:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(req.Level))); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.logger.SetChannelLevel(logging.Channel(req.Channel), level); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"code": "not_found", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": fmt.Sprintf("Log level for channel '%s' set to '%s'", req.Channel, level)})
}
