package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/application/services"
	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
)

type ServiceRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Slug        string   `json:"slug" binding:"max=200"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
	ImageURL    *string  `json:"imageUrl"`
	Features    []string `json:"features" binding:"max=50"`
	Featured    bool     `json:"featured"`
	Active      bool     `json:"active"`
	SortOrder   int      `json:"sortOrder"`
}

func (r ServiceRequest) toEntity(id string) *content.Service {
	return &content.Service{
		ID:          id,
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
		Icon:        r.Icon,
		ImageURL:    r.ImageURL,
		Features:    r.Features,
		Featured:    r.Featured,
		Active:      r.Active,
		SortOrder:   r.SortOrder,
	}
}

// CatalogHandlers serves the /services and /admin/services routes.
type CatalogHandlers struct {
	catalogService *services.CatalogService
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

func NewCatalogHandlers(catalogService *services.CatalogService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CatalogHandlers {
	return &CatalogHandlers{catalogService: catalogService, logger: logger, perfTracker: perfTracker}
}

func (h *CatalogHandlers) GetActive(featuredOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		marker := h.perfTracker.StartOperation("get_active_services_request")
		defer marker.Complete()

		list, err := h.catalogService.ListActive(c.Request.Context(), featuredOnly)
		if err != nil {
			respondError(c, h.logger, marker, "get_active_services", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"services": list, "count": len(list)})
	}
}

func (h *CatalogHandlers) GetAll(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_all_services_request")
	defer marker.Complete()

	list, err := h.catalogService.ListAll(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, h.logger, marker, "get_all_services", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": list, "count": len(list)})
}

func (h *CatalogHandlers) GetByID(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_service_request")
	defer marker.Complete()

	svc, err := h.catalogService.Get(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, marker, "get_service", err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *CatalogHandlers) Create(c *gin.Context) {
	marker := h.perfTracker.StartOperation("create_service_request")
	defer marker.Complete()

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	svc := req.toEntity("")
	if err := h.catalogService.Create(c.Request.Context(), currentSession(c), svc); err != nil {
		respondError(c, h.logger, marker, "create_service", err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

func (h *CatalogHandlers) Update(c *gin.Context) {
	marker := h.perfTracker.StartOperation("update_service_request")
	defer marker.Complete()

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	svc := req.toEntity(c.Param("id"))
	if err := h.catalogService.Update(c.Request.Context(), currentSession(c), svc); err != nil {
		respondError(c, h.logger, marker, "update_service", err)
		return
	}
	stored, err := h.catalogService.Get(c.Request.Context(), currentSession(c), svc.ID)
	if err != nil {
		respondError(c, h.logger, marker, "update_service", err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

// Toggle handles PATCH /admin/services/:id/toggle.
func (h *CatalogHandlers) Toggle(c *gin.Context) {
	marker := h.perfTracker.StartOperation("toggle_service_request")
	defer marker.Complete()

	svc, err := h.catalogService.Toggle(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, marker, "toggle_service", err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *CatalogHandlers) Delete(c *gin.Context) {
	marker := h.perfTracker.StartOperation("delete_service_request")
	defer marker.Complete()

	if err := h.catalogService.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, h.logger, marker, "delete_service", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
