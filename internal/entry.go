// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/cardex/internal/api"
	"github.com/starford/cardex/internal/cards"
	"github.com/starford/cardex/internal/extract"
	"github.com/starford/cardex/internal/flow"
	"github.com/starford/cardex/internal/index"
	"github.com/starford/cardex/internal/mcpserver"
	"github.com/starford/cardex/internal/sse"
	"github.com/starford/cardex/internal/store"
)

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_path", cfg.Store.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)

	st, db, svc, err := buildServices(cfg, logger, broker)
	if err != nil {
		broker.Close()
		return err
	}
	defer db.Close()

	extractor := app.extractor
	if extractor == nil {
		if cfg.Extractor.APIKey == "" {
			logger.Warn("extractor api key is empty; extraction requests will fail")
		}
		extractor = extract.NewGemini(cfg.Extractor.APIKey, cfg.Extractor.Model,
			cfg.Extractor.BaseURL, cfg.Extractor.Timeout())
	}

	flows := flow.NewManager(extractor, svc, logger)

	apiRouter := api.NewRouter(svc, flows, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the record blob for out-of-band edits and resync the index.
	g.Go(func() error {
		return index.Watch(gCtx, db, st, logger, func() {
			broker.PublishCardEvent("changed", "")
		})
	})

	// Reclaim abandoned capture sessions.
	g.Go(func() error {
		if err := flows.Run(gCtx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

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

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		broker.Close()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP server on stdin/stdout. Logs go to stderr so the
// stdio transport stays clean.
func RunMCP(ctx context.Context, cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	_, db, svc, err := buildServices(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("MCP server starting on stdio",
		slog.String("store_path", cfg.Store.Path))

	return mcpserver.New(svc).ServeStdio()
}

// buildServices opens the record store and search index, runs the initial
// reconciliation, and wires the card service.
func buildServices(cfg *Config, logger *slog.Logger, events cards.Publisher) (*store.File, *index.DB, *cards.Service, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
		return nil, nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	st, err := store.NewFile(cfg.Store.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init store: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init index: %w", err)
	}

	if err := index.Sync(db, st, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	return st, db, cards.NewService(st, db, events, logger), nil
}
