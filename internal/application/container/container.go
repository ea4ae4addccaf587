// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/Diampra/octopus-server/internal/application/services"
	"github.com/Diampra/octopus-server/internal/domain/repositories"
	"github.com/Diampra/octopus-server/internal/infrastructure/email"
	"github.com/Diampra/octopus-server/internal/infrastructure/messaging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
	contentrepo "github.com/Diampra/octopus-server/internal/infrastructure/persistence/content"
	"github.com/Diampra/octopus-server/internal/infrastructure/persistence/database"
	userrepo "github.com/Diampra/octopus-server/internal/infrastructure/persistence/user"
	"github.com/Diampra/octopus-server/internal/infrastructure/storage"
	"github.com/Diampra/octopus-server/pkg/config"
)

// Config carries the tunables the container hands to services and routes.
type Config struct {
	Auth           services.AuthConfig
	Cleanup        services.CleanupOptions
	UploadMaxBytes int64
	PublicBaseURL  string
	Bucket         string

	CookieName         string
	CookieSecure       bool
	CORSAllowedOrigins []string
	Version            string
}

// ConfigFromEnv builds a Config from the loaded package config.
func ConfigFromEnv(version string) Config {
	return Config{
		Auth: services.AuthConfig{
			JWTSecret:  config.JWTSecret,
			SessionTTL: config.SessionTTL,
		},
		Cleanup: services.CleanupOptions{
			StorageOptions: services.StorageOptions{
				Prefix:          config.StoragePrefix,
				CallTimeout:     config.StorageCallTimeout,
				CaseInsensitive: config.StorageCaseInsensitive,
			},
			RevalidationWindow: config.DeleteRevalidationWindow,
			Concurrency:        config.DeleteConcurrency,
		},
		UploadMaxBytes:     config.UploadMaxBytes,
		PublicBaseURL:      config.StoragePublicBaseURL,
		Bucket:             config.StorageBucket,
		CookieName:         config.SessionCookieName,
		CookieSecure:       config.SessionCookieSecure,
		CORSAllowedOrigins: config.CORSAllowedOrigins,
		Version:            version,
	}
}

// Dependencies are the infrastructure pieces created at startup.
type Dependencies struct {
	DB          *database.DB
	Store       storage.ObjectStore
	Mailer      email.Service
	Publisher   messaging.Publisher
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
}

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	Config Config

	// Application services
	AuthService         *services.AuthService
	StorageAuditService *services.StorageAuditService
	CleanupService      *services.StorageCleanupService
	UploadService       *services.UploadService
	PostService         *services.PostService
	PortfolioService    *services.PortfolioService
	CatalogService      *services.CatalogService
	TestimonialService  *services.TestimonialService
	CategoryService     *services.CategoryService
	MediaService        *services.MediaService

	// Infrastructure
	DB          *database.DB
	Store       storage.ObjectStore
	Resolver    *storage.PathResolver
	Mailer      email.Service
	Publisher   messaging.Publisher
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(deps Dependencies, cfg Config) *Container {
	if deps.Mailer == nil {
		deps.Mailer = email.NoopService{}
	}
	if deps.Publisher == nil {
		deps.Publisher = messaging.NoopPublisher{}
	}
	if deps.PerfTracker == nil {
		deps.PerfTracker = performance.NewTracker(nil)
	}

	posts := contentrepo.NewPostRepository(deps.DB, deps.Logger)
	portfolio := contentrepo.NewPortfolioRepository(deps.DB, deps.Logger)
	catalog := contentrepo.NewServiceRepository(deps.DB, deps.Logger)
	testimonials := contentrepo.NewTestimonialRepository(deps.DB, deps.Logger)
	categories := contentrepo.NewCategoryRepository(deps.DB, deps.Logger)
	media := contentrepo.NewMediaRepository(deps.DB, deps.Logger)

	users := userrepo.NewSQLUserRepository(deps.DB, deps.Logger)
	sessions := userrepo.NewSQLSessionRepository(deps.DB, deps.Logger)

	resolver := storage.NewPathResolver(cfg.PublicBaseURL, cfg.Bucket)
	sources := []repositories.RowSource{posts, portfolio, catalog, testimonials, categories, media}
	extractor := services.NewReferenceExtractor(resolver, deps.Logger, sources...)

	return &Container{
		Config: cfg,

		AuthService: services.NewAuthService(users, sessions, cfg.Auth, deps.Logger, deps.PerfTracker),
		StorageAuditService: services.NewStorageAuditService(
			extractor, deps.Store, deps.Mailer, deps.Publisher, cfg.Cleanup.StorageOptions, deps.Logger, deps.PerfTracker),
		CleanupService: services.NewStorageCleanupService(
			extractor, deps.Store, deps.Publisher, cfg.Cleanup, deps.Logger, deps.PerfTracker),
		UploadService: services.NewUploadService(
			deps.Store, media, deps.Publisher, cfg.UploadMaxBytes, cfg.Cleanup.Prefix, deps.Logger, deps.PerfTracker),
		PostService:        services.NewPostService(posts, categories, deps.Logger),
		PortfolioService:   services.NewPortfolioService(portfolio, categories, deps.Logger),
		CatalogService:     services.NewCatalogService(catalog, deps.Logger),
		TestimonialService: services.NewTestimonialService(testimonials, deps.Logger),
		CategoryService:    services.NewCategoryService(categories, deps.Logger),
		MediaService:       services.NewMediaService(media, deps.Logger),

		DB:          deps.DB,
		Store:       deps.Store,
		Resolver:    resolver,
		Mailer:      deps.Mailer,
		Publisher:   deps.Publisher,
		Logger:      deps.Logger,
		PerfTracker: deps.PerfTracker,
	}
}

// HealthChecker returns the store's connection probe, if it has one.
func (c *Container) HealthChecker() storage.HealthChecker {
	hc, _ := c.Store.(storage.HealthChecker)
	return hc
}
