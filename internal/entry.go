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

	"github.com/rowanhart/curator/internal/agents"
	"github.com/rowanhart/curator/internal/briefing"
	"github.com/rowanhart/curator/internal/chat"
	"github.com/rowanhart/curator/internal/index"
	"github.com/rowanhart/curator/internal/llm"
	"github.com/rowanhart/curator/internal/vault"
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

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("index_path", cfg.Index.Path),
		slog.String("model", cfg.Model.Name),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Open the vault. This creates category folders and dashboards on
	// first run but refuses to run against an unmounted parent.
	v, err := vault.Open(cfg.Vault.Path, logger)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}

	// Open the search index and bring it up to date.
	db, err := index.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, v.Store(), logger); err != nil {
		logger.Warn("initial index sync failed", slog.Any("error", err))
	}

	// Generative model.
	model, err := llm.NewGemini(ctx, cfg.Model.APIKey, cfg.Model.Name)
	if err != nil {
		return fmt.Errorf("init model: %w", err)
	}

	// Agents and router. Filing is the default when classification is
	// ambiguous: an imperfectly filed note beats a lost capture.
	router, err := agents.NewRouter(model, []agents.Agent{
		agents.NewFilingAgent(model, v, logger),
		agents.NewQueryAgent(model, logger),
		agents.NewEditAgent(model, logger),
		agents.NewMemoryAgent(logger),
	}, "file", logger)
	if err != nil {
		return fmt.Errorf("init router: %w", err)
	}

	// Messaging transport.
	client := chat.NewSlack(cfg.Chat.BotToken)
	listener := chat.NewListener(router, v, client, logger)

	scheduler, err := briefing.NewScheduler(v, client, cfg.Briefing.Channel, cfg.Briefing.Time, logger)
	if err != nil {
		return fmt.Errorf("init briefing: %w", err)
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", chat.NewRouter(cfg.Chat.SigningSecret, listener, logger))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the index current as the vault changes underneath us.
	g.Go(func() error {
		return index.Watch(gCtx, db, v.Store(), logger)
	})

	// Daily briefing.
	g.Go(func() error {
		if err := scheduler.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
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
			logger.Error("HTTP server shutdown error", slog.Any("error", err))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.Any("error", err))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
