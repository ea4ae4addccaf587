package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/application/services"
	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
)

type TestimonialRequest struct {
	Name      string  `json:"name" binding:"required,max=120"`
	Role      string  `json:"role"`
	Content   string  `json:"content" binding:"required"`
	Rating    int     `json:"rating" binding:"omitempty,min=1,max=5"`
	AvatarURL *string `json:"avatarUrl"`
	Published bool    `json:"published"`
	Featured  bool    `json:"featured"`
}

func (r TestimonialRequest) toEntity(id string) *content.Testimonial {
	return &content.Testimonial{
		ID:        id,
		Name:      r.Name,
		Role:      r.Role,
		Content:   r.Content,
		Rating:    r.Rating,
		AvatarURL: r.AvatarURL,
		Published: r.Published,
		Featured:  r.Featured,
	}
}

type TestimonialHandlers struct {
	testimonialService *services.TestimonialService
	logger             *logging.ChanneledLogger
	perfTracker        *performance.Tracker
}

func NewTestimonialHandlers(testimonialService *services.TestimonialService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *TestimonialHandlers {
	return &TestimonialHandlers{testimonialService: testimonialService, logger: logger, perfTracker: perfTracker}
}

func (h *TestimonialHandlers) GetPublished(featuredOnly bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		marker := h.perfTracker.StartOperation("get_published_testimonials_request")
		defer marker.Complete()

		list, err := h.testimonialService.ListPublished(c.Request.Context(), featuredOnly)
		if err != nil {
			respondError(c, h.logger, marker, "get_published_testimonials", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"testimonials": list, "count": len(list)})
	}
}

func (h *TestimonialHandlers) GetAll(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_all_testimonials_request")
	defer marker.Complete()

	list, err := h.testimonialService.ListAll(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, h.logger, marker, "get_all_testimonials", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"testimonials": list, "count": len(list)})
}

func (h *TestimonialHandlers) GetByID(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_testimonial_request")
	defer marker.Complete()

	t, err := h.testimonialService.Get(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, marker, "get_testimonial", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TestimonialHandlers) Create(c *gin.Context) {
	marker := h.perfTracker.StartOperation("create_testimonial_request")
	defer marker.Complete()

	var req TestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t := req.toEntity("")
	if err := h.testimonialService.Create(c.Request.Context(), currentSession(c), t); err != nil {
		respondError(c, h.logger, marker, "create_testimonial", err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TestimonialHandlers) Update(c *gin.Context) {
	marker := h.perfTracker.StartOperation("update_testimonial_request")
	defer marker.Complete()

	var req TestimonialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	t := req.toEntity(c.Param("id"))
	if err := h.testimonialService.Update(c.Request.Context(), currentSession(c), t); err != nil {
		respondError(c, h.logger, marker, "update_testimonial", err)
		return
	}
	stored, err := h.testimonialService.Get(c.Request.Context(), currentSession(c), t.ID)
	if err != nil {
		respondError(c, h.logger, marker, "update_testimonial", err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (h *TestimonialHandlers) Toggle(c *gin.Context) {
	marker := h.perfTracker.StartOperation("toggle_testimonial_request")
	defer marker.Complete()

	t, err := h.testimonialService.Toggle(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, marker, "toggle_testimonial", err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TestimonialHandlers) Delete(c *gin.Context) {
	marker := h.perfTracker.StartOperation("delete_testimonial_request")
	defer marker.Complete()

	if err := h.testimonialService.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, h.logger, marker, "delete_testimonial", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
