package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/forkful/menuboard/internal/admin/http"
	"github.com/forkful/menuboard/internal/admin/obs"
	"github.com/forkful/menuboard/internal/admin/rbac"
	"github.com/forkful/menuboard/internal/admin/service"
	"github.com/forkful/menuboard/internal/admin/store"
	"github.com/forkful/menuboard/internal/admin/store/drivers/sqlite"
	"github.com/forkful/menuboard/pkg/cryptox"
	"github.com/forkful/menuboard/pkg/jwtx"
	"github.com/forkful/menuboard/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the admin service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	codec *jwtx.HS256
	roles *rbac.Model

	// Services
	tokenService        *service.TokenService
	authService         *service.AuthService
	auditService        *service.AuditService
	userAdminService    *service.UserAdminService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "admin-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	obs.Init()

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	codec, err := jwtx.NewHS256([]byte(cfg.TokenSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signing: %w", err)
	}
	app.codec = codec

	switch cfg.RoleModel {
	case "two-tier":
		app.roles = rbac.TwoTier()
	case "three-tier", "":
		app.roles = rbac.ThreeTier()
	default:
		return nil, fmt.Errorf("unknown role model %q", cfg.RoleModel)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("admin service starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down admin service...")

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

	app.logger.Info("admin service stopped")
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
	app.tokenService = &service.TokenService{
		Codec:  app.codec,
		Issuer: app.cfg.Issuer,
		TTL:    app.cfg.SessionTTL,
	}

	app.auditService = &service.AuditService{Store: app.db}

	app.authService = &service.AuthService{
		Store:      app.db,
		Tokens:     app.tokenService,
		Audit:      app.auditService,
		Roles:      app.roles,
		SessionTTL: app.cfg.SessionTTL,
	}

	app.userAdminService = &service.UserAdminService{
		Store: app.db,
		Audit: app.auditService,
		Roles: app.roles,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	defaultAllow := app.cfg.RoutePolicy != "deny"
	access := rbac.NewAccess(app.roles, rbac.DefaultRules(), rbac.DefaultProtectedPrefixes, defaultAllow)

	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		access,
		app.roles,
		app.logger,
	)

	router.AuthService = app.authService
	router.AuditService = app.auditService
	router.UserAdminService = app.userAdminService
	router.ExposeResetTokens = app.cfg.ExposeResetTokens
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
