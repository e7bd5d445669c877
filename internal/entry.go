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

	"github.com/nbaradar/obsidian-mcp-server/internal/api"
	"github.com/nbaradar/obsidian-mcp-server/internal/mcpserver"
	"github.com/nbaradar/obsidian-mcp-server/internal/notestore"
	"github.com/nbaradar/obsidian-mcp-server/internal/session"
	"github.com/nbaradar/obsidian-mcp-server/internal/sse"
	"github.com/nbaradar/obsidian-mcp-server/internal/vault"
	"github.com/nbaradar/obsidian-mcp-server/internal/watch"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Structured JSON logger on stderr: in MCP stdio mode stdout belongs to
	// the protocol transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	registry, err := vault.NewRegistry(cfg.Vaults.Entries, cfg.Vaults.Default)
	if err != nil {
		return fmt.Errorf("init vaults: %w", err)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.Any("vaults", registry.Names()),
		slog.String("default_vault", registry.DefaultName()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	notes := notestore.New(logger)
	sessions := session.NewStore(registry)

	if app.mcpStdio {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(notes, registry, sessions, logger).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

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

	// Mount API routes under /api, SSE stream included.
	r.Mount("/api", api.NewRouter(notes, registry, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// One file watcher per existing vault, feeding the SSE stream.
	if cfg.App.Watch.Enabled {
		for _, v := range registry.All() {
			if !v.Exists {
				logger.Warn("watcher: skipping missing vault", slog.String("vault", v.Name))
				continue
			}
			g.Go(func() error {
				if err := watch.Watch(gCtx, v, logger, func(kind, vaultName, path string) {
					broker.PublishNoteEvent(kind, vaultName, path)
				}); err != nil {
					logger.Error("watcher failed", slog.String("vault", v.Name), slog.String("error", err.Error()))
				}
				return nil
			})
		}
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
