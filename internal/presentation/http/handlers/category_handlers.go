package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/application/services"
	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
)

type CategoryRequest struct {
	Name     string  `json:"name" binding:"required,max=120"`
	Slug     string  `json:"slug" binding:"max=120"`
	IconPath *string `json:"iconPath"`
}

// CategoryHandlers serves one category kind. Routes for blog and portfolio
// categories use separate instances.
type CategoryHandlers struct {
	categoryService *services.CategoryService
	kind            content.CategoryKind
	logger          *logging.ChanneledLogger
	perfTracker     *performance.Tracker
}

func NewCategoryHandlers(categoryService *services.CategoryService, kind content.CategoryKind, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CategoryHandlers {
	return &CategoryHandlers{categoryService: categoryService, kind: kind, logger: logger, perfTracker: perfTracker}
}

// GetAll lists the categories of this handler's kind.
func (h *CategoryHandlers) GetAll(c *gin.Context) {
	h.list(c, h.kind)
}

// GetByQueryKind handles GET /categories?kind=blog|portfolio, defaulting to this handler's kind.
func (h *CategoryHandlers) GetByQueryKind(c *gin.Context) {
	h.list(c, content.CategoryKind(c.DefaultQuery("kind", string(h.kind))))
}

func (h *CategoryHandlers) list(c *gin.Context, kind content.CategoryKind) {
	marker := h.perfTracker.StartOperation("get_categories_request")
	defer marker.Complete()

	cats, err := h.categoryService.List(c.Request.Context(), kind)
	if err != nil {
		respondError(c, h.logger, marker, "get_categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats, "count": len(cats)})
}

func (h *CategoryHandlers) GetByID(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_category_request")
	defer marker.Complete()

	cat, err := h.categoryService.Get(c.Request.Context(), currentSession(c), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, marker, "get_category", err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *CategoryHandlers) Create(c *gin.Context) {
	marker := h.perfTracker.StartOperation("create_category_request")
	defer marker.Complete()

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cat := &content.Category{Name: req.Name, Slug: req.Slug, Kind: h.kind, IconPath: req.IconPath}
	if err := h.categoryService.Create(c.Request.Context(), currentSession(c), cat); err != nil {
		respondError(c, h.logger, marker, "create_category", err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *CategoryHandlers) Update(c *gin.Context) {
	marker := h.perfTracker.StartOperation("update_category_request")
	defer marker.Complete()

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cat := &content.Category{ID: c.Param("id"), Name: req.Name, Slug: req.Slug, Kind: h.kind, IconPath: req.IconPath}
	if err := h.categoryService.Update(c.Request.Context(), currentSession(c), cat); err != nil {
		respondError(c, h.logger, marker, "update_category", err)
		return
	}
	stored, err := h.categoryService.Get(c.Request.Context(), currentSession(c), h.kind, cat.ID)
	if err != nil {
		respondError(c, h.logger, marker, "update_category", err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (h *CategoryHandlers) Delete(c *gin.Context) {
	marker := h.perfTracker.StartOperation("delete_category_request")
	defer marker.Complete()

	if err := h.categoryService.Delete(c.Request.Context(), currentSession(c), h.kind, c.Param("id")); err != nil {
		respondError(c, h.logger, marker, "delete_category", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
