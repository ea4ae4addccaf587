package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/application/services"
	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
)

type PortfolioRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description string  `json:"description"`
	CategoryID  *string `json:"categoryId"`
	ImageURL    *string `json:"imageUrl"`
	VideoURL    *string `json:"videoUrl"`
	PosterURL   *string `json:"posterUrl"`
	Featured    bool    `json:"featured"`
	Published   bool    `json:"published"`
}

func (r PortfolioRequest) toEntity(id string) *content.PortfolioItem {
	return &content.PortfolioItem{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		ImageURL:    r.ImageURL,
		VideoURL:    r.VideoURL,
		PosterURL:   r.PosterURL,
		Featured:    r.Featured,
		Published:   r.Published,
	}
}

type PortfolioHandlers struct {
	portfolioService *services.PortfolioService
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

func NewPortfolioHandlers(portfolioService *services.PortfolioService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PortfolioHandlers {
	return &PortfolioHandlers{portfolioService: portfolioService, logger: logger, perfTracker: perfTracker}
}

// GetPublished returns a handler for GET /portfolio and GET /portfolio/featured.
func (h *PortfolioHandlers) GetPublished(featuredOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		marker := h.perfTracker.StartOperation("get_published_portfolio_request")
		defer marker.Complete()

		items, err := h.portfolioService.ListPublished(c.Request.Context(), featuredOnly)
		if err != nil {
			respondError(c, h.logger, marker, "get_published_portfolio", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
	}
}

func (h *PortfolioHandlers) GetAll(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_all_portfolio_request")
	defer marker.Complete()

	items, err := h.portfolioService.ListAll(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, h.logger, marker, "get_all_portfolio", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *PortfolioHandlers) GetByID(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_portfolio_item_request")
	defer marker.Complete()

	item, err := h.portfolioService.Get(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, marker, "get_portfolio_item", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *PortfolioHandlers) Create(c *gin.Context) {
	marker := h.perfTracker.StartOperation("create_portfolio_item_request")
	defer marker.Complete()

	var req PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item := req.toEntity("")
	if err := h.portfolioService.Create(c.Request.Context(), currentSession(c), item); err != nil {
		respondError(c, h.logger, marker, "create_portfolio_item", err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *PortfolioHandlers) Update(c *gin.Context) {
	marker := h.perfTracker.StartOperation("update_portfolio_item_request")
	defer marker.Complete()

	var req PortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	item := req.toEntity(c.Param("id"))
	if err := h.portfolioService.Update(c.Request.Context(), currentSession(c), item); err != nil {
		respondError(c, h.logger, marker, "update_portfolio_item", err)
		return
	}
	stored, err := h.portfolioService.Get(c.Request.Context(), currentSession(c), item.ID)
	if err != nil {
		respondError(c, h.logger, marker, "update_portfolio_item", err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (h *PortfolioHandlers) Delete(c *gin.Context) {
	marker := h.perfTracker.StartOperation("delete_portfolio_item_request")
	defer marker.Complete()

	if err := h.portfolioService.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, h.logger, marker, "delete_portfolio_item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
