package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/application/services"
	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
)

// PostRequest is the body for creating and updating blog posts.
type PostRequest struct {
	Title      string  `json:"title" binding:"required,max=200"`
	Slug       string  `json:"slug" binding:"max=200"`
	Excerpt    string  `json:"excerpt"`
	Content    string  `json:"content"`
	CategoryID *string `json:"categoryId"`
	ImageURL   *string `json:"imageUrl"`
	Author     string  `json:"author"`
	ReadTime   string  `json:"readTime"`
	Published  bool    `json:"published"`
}

func (r PostRequest) toEntity(id string) *content.Post {
	return &content.Post{
		ID:         id,
		Title:      r.Title,
		Slug:       r.Slug,
		Excerpt:    r.Excerpt,
		Content:    r.Content,
		CategoryID: r.CategoryID,
		ImageURL:   r.ImageURL,
		Author:     r.Author,
		ReadTime:   r.ReadTime,
		Published:  r.Published,
	}
}

// PostHandlers contains all blog post HTTP handlers
type PostHandlers struct {
	postService *services.PostService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewPostHandlers(postService *services.PostService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *PostHandlers {
	return &PostHandlers{postService: postService, logger: logger, perfTracker: perfTracker}
}

// GetPublished handles GET /blogs
func (h *PostHandlers) GetPublished(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("get_published_posts_request")
	defer marker.Complete()

	posts, err := h.postService.ListPublished(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, marker, "get_published_posts", err)
		return
	}
	h.logger.Content().Debug("Published posts listed", "count", len(posts), "duration", time.Since(start))
	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

// GetBySlug handles GET /blogs/:slug
func (h *PostHandlers) GetBySlug(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_post_by_slug_request")
	defer marker.Complete()

	post, err := h.postService.GetPublishedBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, marker, "get_post_by_slug", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// GetAll handles GET /admin/blogs, drafts included.
func (h *PostHandlers) GetAll(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_all_posts_request")
	defer marker.Complete()

	posts, err := h.postService.ListAll(c.Request.Context(), currentSession(c))
	if err != nil {
		respondError(c, h.logger, marker, "get_all_posts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

func (h *PostHandlers) GetByID(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_post_request")
	defer marker.Complete()

	post, err := h.postService.Get(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, marker, "get_post", err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandlers) Create(c *gin.Context) {
	marker := h.perfTracker.StartOperation("create_post_request")
	defer marker.Complete()

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	post := req.toEntity("")
	if err := h.postService.Create(c.Request.Context(), currentSession(c), post); err != nil {
		respondError(c, h.logger, marker, "create_post", err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandlers) Update(c *gin.Context) {
	marker := h.perfTracker.StartOperation("update_post_request")
	defer marker.Complete()

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	post := req.toEntity(c.Param("id"))
	if err := h.postService.Update(c.Request.Context(), currentSession(c), post); err != nil {
		respondError(c, h.logger, marker, "update_post", err)
		return
	}
	stored, err := h.postService.Get(c.Request.Context(), currentSession(c), post.ID)
	if err != nil {
		respondError(c, h.logger, marker, "update_post", err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (h *PostHandlers) Delete(c *gin.Context) {
	marker := h.perfTracker.StartOperation("delete_post_request")
	defer marker.Complete()

	if err := h.postService.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, h.logger, marker, "delete_post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
