package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/todo/internal/todo/http"
	"github.com/aussiebroadwan/todo/internal/todo/service"
	"github.com/aussiebroadwan/todo/internal/todo/store"
	"github.com/aussiebroadwan/todo/internal/todo/store/drivers/sqlite"
	"github.com/aussiebroadwan/todo/pkg/cryptox"
	"github.com/aussiebroadwan/todo/pkg/jwtx"
	"github.com/aussiebroadwan/todo/pkg/slogx"
)

// BuildVersion is overridden at build time with -ldflags "-X ...BuildVersion=".
var BuildVersion = "v0.1.0"

// Application owns the todo service and its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier
	hasher   *cryptox.PasswordHasher

	authService         *service.AuthService
	taskService         *service.TaskService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New validates cfg and builds the application. Missing signing
// configuration is fatal.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "todo-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := app.initTokens(); err != nil {
		return nil, err
	}
	if err := app.initCredentials(); err != nil {
		return nil, err
	}
	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("todo service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	app.logger.Info("shutting down todo service...")

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

	app.logger.Info("todo service stopped")
	return nil
}

func (app *Application) initTokens() error {
	key := []byte(app.cfg.SigningKey)

	signer, err := jwtx.NewHS256Signer(key, app.cfg.Issuer, app.cfg.Audience)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}
	verifier, err := jwtx.NewHS256Verifier(key, app.cfg.Issuer, app.cfg.Audience)
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	app.signer, app.verifier = signer, verifier
	return nil
}

func (app *Application) initCredentials() error {
	pepper, err := cryptox.LoadOrCreatePepper(app.cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}
	app.hasher = cryptox.NewPasswordHasher(pepper)
	return nil
}

// initDatabase opens the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.DSN(app.cfg.DatabaseFile))
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

func (app *Application) initServices() {
	app.authService = &service.AuthService{
		Store:       app.db,
		Credentials: app.hasher,
		Tokens:      service.NewTokenIssuer(app.signer, app.cfg.AccessTokenTTL, app.cfg.RefreshTokenTTL),
	}
	app.taskService = &service.TaskService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
		app.cfg.CORSAllowedOrigins,
	)

	router.AuthService = app.authService
	router.TaskService = app.taskService
	router.AuthLimit = app.cfg.AuthRateLimit
	router.APILimit = app.cfg.APIRateLimit
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
