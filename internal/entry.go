// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/starford/shelf/internal/api"
	"github.com/starford/shelf/internal/catalog"
	"github.com/starford/shelf/internal/client"
	"github.com/starford/shelf/internal/sse"
	"github.com/starford/shelf/internal/store"
	"github.com/starford/shelf/internal/ui"
	pkgconfig "github.com/starford/shelf/pkg/config"
)

// NewLogger returns a structured JSON logger writing to w at level.
func NewLogger(w io.Writer, level *slog.LevelVar) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// OpenService opens the configured record store and builds the catalog service on it.
// The returned store must be closed by the caller.
func OpenService(cfg *Config, opts ...catalog.Option) (*catalog.Service, store.Store, error) {
	db, err := store.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("init store: %w", err)
	}
	return catalog.NewService(db, opts...), db, nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	if app.level == nil {
		app.level = new(slog.LevelVar)
	}

	cfg := app.config
	app.level.Set(cfg.App.LogLevel)

	// Initialize structured JSON logger.
	logger := NewLogger(os.Stdout, app.level)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_driver", cfg.Store.Driver),
		slog.String("client_base_url", cfg.ResolveBaseURL()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker receives every catalog change.
	broker := sse.NewBroker(cfg.Events.Throttle)
	defer broker.Close()

	svc, db, err := OpenService(cfg, catalog.WithNotifier(broker))
	if err != nil {
		return err
	}
	defer db.Close()

	var limiter *rate.Limiter
	if cfg.App.HTTP.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.App.HTTP.RateLimit), cfg.App.HTTP.RateBurst)
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := svc.Ping(r.Context()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// REST API (with the SSE stream at /api/events) and the browser page,
	// which talks to the API through the REST client like any other consumer.
	r.Mount("/api", api.NewRouter(svc, broker, limiter))
	r.Mount("/", ui.NewHandler(client.New(cfg.ResolveBaseURL(), cfg.Client.Timeout), logger))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Apply log level changes from the config file.
	if app.configPath != "" {
		g.Go(func() error {
			err := pkgconfig.Watch(gCtx, app.configPath, 200*time.Millisecond, func() {
				reloaded := NewDefaultConfig()
				if err := pkgconfig.Load(app.configPath, reloaded, false); err != nil {
					logger.Warn("config reload failed", slog.String("error", err.Error()))
					return
				}
				if reloaded.App.LogLevel != app.level.Level() {
					app.level.Set(reloaded.App.LogLevel)
					logger.Info("log level changed", slog.String("log_level", reloaded.App.LogLevel.String()))
				}
			})
			if err != nil {
				logger.Warn("config watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// SSE streams hold connections open; close them before draining.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so that background loops such as the config
// watcher stop once the server has shut down.
var errShutdown = errors.New("shutdown")
