package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/cinefeed/cinefeed/internal/api/http"
	"github.com/cinefeed/cinefeed/internal/api/service"
	"github.com/cinefeed/cinefeed/internal/api/store"
	"github.com/cinefeed/cinefeed/internal/api/store/drivers/sqlite"
	"github.com/cinefeed/cinefeed/internal/api/tmdb"
	"github.com/cinefeed/cinefeed/pkg/cryptox"
	"github.com/cinefeed/cinefeed/pkg/jwtx"
	"github.com/cinefeed/cinefeed/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the API server with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	tokens *jwtx.Service

	authService      *service.AuthService
	userService      *service.UserService
	movieService     *service.MovieService
	watchlistService *service.WatchlistService
	ratingService    *service.RatingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "cinefeed-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	tokens, err := jwtx.NewService(jwtx.Config{
		AccessSecret:  []byte(cfg.AccessTokenSecret),
		RefreshSecret: []byte(cfg.RefreshTokenSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
		Issuer:        cfg.Issuer,
		Audience:      cfg.Audience,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	app.tokens = tokens

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("api server starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown drains in-flight requests and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down api server...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("api server stopped")
	return nil
}

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

func (app *Application) initServices() {
	app.userService = &service.UserService{Store: app.db}
	app.authService = &service.AuthService{
		Users:  app.userService,
		Tokens: app.tokens,
	}
	app.movieService = &service.MovieService{
		TMDB:  tmdb.NewClient(app.cfg.TMDBBaseURL, app.cfg.TMDBAPIKey),
		Users: app.userService,
	}
	app.watchlistService = &service.WatchlistService{Store: app.db}
	app.ratingService = &service.RatingService{Store: app.db}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.tokens, BuildVersion, app.db, app.logger)
	router.AuthService = app.authService
	router.UserService = app.userService
	router.MovieService = app.movieService
	router.WatchlistService = app.watchlistService
	router.RatingService = app.ratingService
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}
