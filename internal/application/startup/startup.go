// Package startup prepares the application server
package startup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Diampra/octopus-server/internal/application/container"
	schema "github.com/Diampra/octopus-server/internal/infrastructure/database"
	"github.com/Diampra/octopus-server/internal/infrastructure/email"
	"github.com/Diampra/octopus-server/internal/infrastructure/messaging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/logging"
	"github.com/Diampra/octopus-server/internal/infrastructure/observability/performance"
	"github.com/Diampra/octopus-server/internal/infrastructure/persistence/database"
	"github.com/Diampra/octopus-server/internal/infrastructure/storage"
	"github.com/Diampra/octopus-server/internal/presentation/http/server"
	"github.com/Diampra/octopus-server/pkg/config"
)

const sessionPurgeInterval = time.Hour

// Options tunes Bootstrap for the server and for CLI commands.
type Options struct {
	Version string
	// Quiet sends logs to files only so CLI output stays readable.
	Quiet bool
	// Seed inserts the sample content on an empty database.
	Seed bool
}

// App is a bootstrapped application: configuration validated, infrastructure
// connected and services wired.
type App struct {
	Container *container.Container
	logger    *logging.ChanneledLogger
	closers   []func()
}

// Close releases infrastructure in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Bootstrap runs the startup sequence shared by `serve` and the CLI commands.
func Bootstrap(ctx context.Context, opts Options) (*App, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(opts.Quiet)
	if err != nil {
		return nil, err
	}
	app := &App{logger: logger}
	app.closers = append(app.closers, func() { logger.Close() })

	fail := func(err error) (*App, error) {
		app.Close()
		return nil, err
	}

	// Step 1: database
	phaseStart := time.Now()
	db, err := database.NewConnectionWithLogger(config.DBDriver, config.DBDSN, database.Options{
		AuthToken:       config.DBAuthToken,
		MaxOpenConns:    config.DBMaxOpenConns,
		MaxIdleConns:    config.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute,
	}, logger)
	if err != nil {
		logger.LogStartupPhase("database", time.Since(phaseStart), false)
		return fail(err)
	}
	app.closers = append(app.closers, func() { db.Close() })

	tables := schema.NewTableCreator()
	if err := tables.CreateSchema(ctx, db); err != nil {
		logger.LogStartupPhase("database", time.Since(phaseStart), false)
		return fail(fmt.Errorf("failed to create schema: %w", err))
	}
	if opts.Seed {
		if err := tables.SeedInitialContent(ctx, db); err != nil {
			return fail(fmt.Errorf("failed to seed content: %w", err))
		}
	}
	logger.LogStartupPhase("database", time.Since(phaseStart), true)

	// Step 2: object storage
	phaseStart = time.Now()
	store, err := storage.NewObjectStoreFromConfig(ctx, logger)
	if err != nil {
		logger.LogStartupPhase("storage", time.Since(phaseStart), false)
		return fail(err)
	}
	logger.LogStartupPhase("storage", time.Since(phaseStart), true)

	// Step 3: optional integrations
	publisher, err := messaging.NewPublisher(config.NatsURL, logger)
	if err != nil {
		// Events are best-effort; the server runs without them.
		logger.Startup().Warn("Event publisher unavailable, continuing without events", "error", err.Error())
		publisher = messaging.NoopPublisher{}
	}
	app.closers = append(app.closers, publisher.Close)

	tracker := performance.NewTracker(&performance.TrackerConfig{
		MaxMarkers:   config.PerfMaxMarkers,
		MaxAlerts:    200,
		EnableAlerts: true,
	})

	app.Container = container.NewContainer(container.Dependencies{
		DB:          db,
		Store:       store,
		Mailer:      email.NewService(logger),
		Publisher:   publisher,
		Logger:      logger,
		PerfTracker: tracker,
	}, container.ConfigFromEnv(opts.Version))

	if config.AdminEmail != "" {
		if err := app.Container.AuthService.EnsureAdmin(ctx, config.AdminEmail, config.AdminPassword); err != nil {
			return fail(fmt.Errorf("failed to ensure admin account: %w", err))
		}
	}

	return app, nil
}

// Initialize performs the full server startup sequence and blocks until a
// shutdown signal arrives.
func Initialize(version string) error {
	start := time.Now().UTC()
	printBanner(version)

	if config.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	app, err := Bootstrap(ctx, Options{Version: version, Seed: true})
	if err != nil {
		return err
	}
	defer app.Close()

	logger := app.logger
	logger.Startup().Info("Container initialization complete")

	go purgeSessions(ctx, app.Container, sessionPurgeInterval)

	httpServer := server.New(config.Port, app.Container)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- httpServer.Start()
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"storageDriver", config.StorageDriver,
		"port", config.Port)

	select {
	case <-gracefulShutdown:
		logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")
	case err := <-serverErr:
		if err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
			return err
		}
	}

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))
	return nil
}

// purgeSessions removes expired session rows until ctx is cancelled.
func purgeSessions(ctx context.Context, c *container.Container, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.AuthService.PurgeExpiredSessions(ctx); err != nil && ctx.Err() == nil {
				c.Logger.Auth().Error("Session purge failed", "error", err.Error())
			}
		}
	}
}

func newLogger(quiet bool) (*logging.ChanneledLogger, error) {
	cfg := logging.DefaultLoggerConfig()
	cfg.LogDirectory = config.LogDir
	cfg.OutputToFile = config.LogToFile
	cfg.OutputToConsole = !quiet
	cfg.JSONFormat = config.LogJSON
	cfg.MaxSizeMB = config.LogMaxSize
	cfg.MaxAgeDays = config.LogMaxAge
	cfg.DefaultLevel = logging.ParseLevel(config.LogLevel)

	if quiet && !cfg.OutputToFile {
		return logging.NewNopLogger(), nil
	}

	logger, err := logging.NewChanneledLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}

func printBanner(version string) {
	fmt.Println("\033[36m" + `
   ___   ___ _____ ___  ___  _   _ ___
  / _ \ / __|_   _/ _ \| _ \| | | / __|
 | (_) | (__  | || (_) |  _/| |_| \__ \
  \___/ \___| |_| \___/|_|   \___/|___/
` + "\033[97m" + "  media integrity server " + version + "\033[0m")
}
