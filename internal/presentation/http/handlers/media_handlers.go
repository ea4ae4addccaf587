package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/application/services"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
)

type MediaHandlers struct {
	mediaService *services.MediaService
	logger       *logging.ChanneledLogger
	perfTracker  *performance.Tracker
}

func NewMediaHandlers(mediaService *services.MediaService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *MediaHandlers {
	return &MediaHandlers{mediaService: mediaService, logger: logger, perfTracker: perfTracker}
}

func (h *MediaHandlers) GetAll(c *gin.Context) {
	marker := h.perfTracker.StartOperation("media_list_request")
	defer marker.Complete()

	items, err := h.mediaService.List(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, h.logger, marker, "media_list", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"media": items, "count": len(items)})
}

func (h *MediaHandlers) Delete(c *gin.Context) {
	marker := h.perfTracker.StartOperation("media_delete_request")
	defer marker.Complete()

	if err := h.mediaService.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, h.logger, marker, "media_delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
