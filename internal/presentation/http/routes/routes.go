// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/application/container"
	"github.com/Diampra/octopus-server/internal/domain/entities/content"
	"github.com/Diampra/octopus-server/internal/presentation/http/handlers"
	"github.com/Diampra/octopus-server/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORSMiddleware(container.Config.CORSAllowedOrigins))
	r.Use(middleware.SessionMiddleware(container.AuthService, container.Config.CookieName, container.Logger))

	logger, perf := container.Logger, container.PerfTracker

	// Initialize handlers
	authHandlers := handlers.NewAuthHandlers(container.AuthService, handlers.CookieConfig{
		Name:   container.Config.CookieName,
		Secure: container.Config.CookieSecure,
	}, logger, perf)
	storageHandlers := handlers.NewStorageHandlers(container.StorageAuditService, container.CleanupService, container.UploadService, logger, perf)
	mediaHandlers := handlers.NewMediaHandlers(container.MediaService, logger, perf)
	postHandlers := handlers.NewPostHandlers(container.PostService, logger, perf)
	portfolioHandlers := handlers.NewPortfolioHandlers(container.PortfolioService, logger, perf)
	catalogHandlers := handlers.NewCatalogHandlers(container.CatalogService, logger, perf)
	testimonialHandlers := handlers.NewTestimonialHandlers(container.TestimonialService, logger, perf)
	blogCategoryHandlers := handlers.NewCategoryHandlers(container.CategoryService, content.CategoryKindBlog, logger, perf)
	portfolioCategoryHandlers := handlers.NewCategoryHandlers(container.CategoryService, content.CategoryKindPortfolio, logger, perf)
	systemHandlers := handlers.NewSystemHandlers(container.DB, container.HealthChecker(), logger, perf, container.Config.Version)

	r.GET("/health", systemHandlers.GetHealth)

	// Public content
	r.GET("/blogs", postHandlers.GetPublished)
	r.GET("/blogs/:slug", postHandlers.GetBySlug)
	r.GET("/categories", blogCategoryHandlers.GetByQueryKind)
	r.GET("/portfolio", portfolioHandlers.GetPublished(false))
	r.GET("/portfolio/featured", portfolioHandlers.GetPublished(true))
	r.GET("/portfolio/categories", portfolioCategoryHandlers.GetAll)
	r.GET("/services", catalogHandlers.GetActive(false))
	r.GET("/services/featured", catalogHandlers.GetActive(true))
	r.GET("/testimonials", testimonialHandlers.GetPublished(false))
	r.GET("/testimonials/featured", testimonialHandlers.GetPublished(true))

	auth := r.Group("/auth")
	{
		auth.POST("/login", authHandlers.PostLogin)
		auth.POST("/logout", authHandlers.PostLogout)
		auth.GET("/me", authHandlers.GetMe)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		storageGroup := admin.Group("/storage")
		{
			storageGroup.GET("/audit", storageHandlers.GetAudit)
			storageGroup.POST("/delete", storageHandlers.PostDelete)
			storageGroup.POST("/upload", storageHandlers.PostUpload)
		}

		admin.GET("/media", mediaHandlers.GetAll)
		admin.DELETE("/media/:id", mediaHandlers.Delete)

		admin.POST("/blog/upload", storageHandlers.UploadToFolder("blog"))
		admin.POST("/portfolio/upload", storageHandlers.UploadToFolder("portfolio"))
		admin.POST("/services/upload", storageHandlers.UploadToFolder("services"))

		admin.GET("/blogs", postHandlers.GetAll)
		admin.POST("/blog", postHandlers.Create)
		admin.GET("/blog/:id", postHandlers.GetByID)
		admin.PUT("/blog/:id", postHandlers.Update)
		admin.DELETE("/blog/:id", postHandlers.Delete)

		admin.GET("/portfolio", portfolioHandlers.GetAll)
		admin.POST("/portfolio", portfolioHandlers.Create)
		admin.GET("/portfolio/:id", portfolioHandlers.GetByID)
		admin.PUT("/portfolio/:id", portfolioHandlers.Update)
		admin.DELETE("/portfolio/:id", portfolioHandlers.Delete)

		admin.GET("/portfolio/categories", portfolioCategoryHandlers.GetAll)
		admin.POST("/portfolio/categories", portfolioCategoryHandlers.Create)
		admin.GET("/portfolio/categories/:id", portfolioCategoryHandlers.GetByID)
		admin.PUT("/portfolio/categories/:id", portfolioCategoryHandlers.Update)
		admin.DELETE("/portfolio/categories/:id", portfolioCategoryHandlers.Delete)

		admin.GET("/services", catalogHandlers.GetAll)
		admin.POST("/services", catalogHandlers.Create)
		admin.GET("/services/:id", catalogHandlers.GetByID)
		admin.PUT("/services/:id", catalogHandlers.Update)
		admin.PATCH("/services/:id/toggle", catalogHandlers.Toggle)
		admin.DELETE("/services/:id", catalogHandlers.Delete)

		admin.GET("/testimonials", testimonialHandlers.GetAll)
		admin.POST("/testimonials", testimonialHandlers.Create)
		admin.GET("/testimonials/:id", testimonialHandlers.GetByID)
		admin.PUT("/testimonials/:id", testimonialHandlers.Update)
		admin.PATCH("/testimonials/:id/toggle", testimonialHandlers.Toggle)
		admin.DELETE("/testimonials/:id", testimonialHandlers.Delete)

		admin.GET("/categories", blogCategoryHandlers.GetAll)
		admin.POST("/categories", blogCategoryHandlers.Create)
		admin.GET("/categories/:id", blogCategoryHandlers.GetByID)
		admin.PUT("/categories/:id", blogCategoryHandlers.Update)
		admin.DELETE("/categories/:id", blogCategoryHandlers.Delete)

		system := admin.Group("/system")
		{
			system.GET("/performance", systemHandlers.GetPerformance)
			system.GET("/logs/levels", systemHandlers.GetLogLevels)
			system.POST("/logs/levels", systemHandlers.SetLogLevel)
		}
	}

	return r
}
