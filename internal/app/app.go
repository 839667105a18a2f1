package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/stashbin/stashbin/internal/http"
	"github.com/stashbin/stashbin/internal/service"
	"github.com/stashbin/stashbin/internal/store"
	"github.com/stashbin/stashbin/internal/store/drivers/sqlite"
	"github.com/stashbin/stashbin/pkg/slogx"
	"github.com/stashbin/stashbin/pkg/tokenx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the stashbin service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codec *tokenx.Codec

	authService         *service.AuthService
	sessionService      *service.SessionService
	groupService        *service.GroupService
	documentService     *service.DocumentService
	apiKeyService       *service.APIKeyService
	accountService      *service.AccountService
	publicDataService   *service.PublicDataService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "stashbin",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		codec: tokenx.NewCodec(cfg.Secret),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	// Seed the first account if the store is empty.
	if err := service.EnsureAdmin(context.Background(), app.db, app.logger, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("stashbin starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down stashbin...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("stashbin stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:            app.db,
		RegistrationOpen: app.cfg.RegistrationOpen,
	}
	app.sessionService = &service.SessionService{
		Codec:      app.codec,
		Store:      app.db,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}
	app.groupService = &service.GroupService{Store: app.db}
	app.documentService = &service.DocumentService{Store: app.db}
	app.apiKeyService = &service.APIKeyService{Store: app.db}
	app.accountService = &service.AccountService{Store: app.db}
	app.publicDataService = &service.PublicDataService{
		Store:   app.db,
		APIKeys: app.apiKeyService,
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP wires the router and HTTP server
func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(app.codec, BuildVersion, app.db, app.logger)
	app.router.AuthService = app.authService
	app.router.SessionService = app.sessionService
	app.router.GroupService = app.groupService
	app.router.DocumentService = app.documentService
	app.router.APIKeyService = app.apiKeyService
	app.router.AccountService = app.accountService
	app.router.PublicData = app.publicDataService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
