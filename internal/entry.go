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
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/api"
	"github.com/starford/raido/internal/bundleservice"
	"github.com/starford/raido/internal/linktree"
	"github.com/starford/raido/internal/mcpserver"
	"github.com/starford/raido/internal/sse"
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
		slog.String("data_dir", cfg.Data.Dir),
		slog.Int("datasets", len(cfg.Data.Datasets)),
		slog.String("tree_path", cfg.Tree.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure data directory exists.
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Load datasets and the keyword catalog.
	svc, err := bundleservice.New(cfg.Data.DatasetConfigs(), cfg.Tree.Path, cfg.Tree.TaggedCSV)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}

	// SSE broker; service change events flow into it.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	svc.SetNotify(broker.PublishChange)

	// Build API router.
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, cfg.Data.Dir)

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

	// Static assets (unauthenticated, read-only).
	assets := api.NewAssetHandler(cfg.Data.Dir)
	r.Get("/assets/{filename}", assets.ServeFile)

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the keyword tree and tagged records for external edits.
	g.Go(func() error {
		reload := func() {
			if rErr := svc.ReloadCatalog(); rErr != nil {
				logger.Error("catalog reload failed", slog.String("error", rErr.Error()))
			}
		}
		if err := linktree.Watch(gCtx, cfg.Tree.Path, cfg.Tree.TaggedCSV, logger, reload); err != nil {
			logger.Warn("tree watcher stopped", slog.String("error", err.Error()))
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

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server with the given options. Logs go to
// stderr because stdout carries the MCP transport.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, err := bundleservice.New(cfg.Data.DatasetConfigs(), cfg.Tree.Path, cfg.Tree.TaggedCSV)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}

	logger.Info("MCP server starting on stdio",
		slog.String("data_dir", cfg.Data.Dir),
		slog.Int("datasets", len(cfg.Data.Datasets)))

	return mcpserver.New(svc, cfg.Data.Dir).ServeStdio()
}
