// Package internal provides the pipeline entry points and their wiring.
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

	"github.com/starford/pontos/internal/api"
	"github.com/starford/pontos/internal/catalog"
	"github.com/starford/pontos/internal/generator"
	"github.com/starford/pontos/internal/lint"
	"github.com/starford/pontos/internal/mcpserver"
	"github.com/starford/pontos/internal/search"
	"github.com/starford/pontos/internal/sheet"
	"github.com/starford/pontos/internal/songservice"
	"github.com/starford/pontos/internal/sse"
	"github.com/starford/pontos/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// newLogger builds the structured JSON logger and installs it as default.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// RunGenerate fetches the spreadsheet and writes one document per row.
// Row failures are logged and do not fail the run.
func RunGenerate(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	if err := cfg.Sheet.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg, os.Stdout)

	if err := os.MkdirAll(cfg.Docs.Path, 0o755); err != nil {
		return fmt.Errorf("create docs dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Docs.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	client := sheet.NewClient(cfg.Sheet.ID, cfg.Sheet.URL, cfg.Sheet.Columns, cfg.Sheet.Timeout)
	rows, err := client.Fetch(ctx)
	if err != nil {
		return err
	}
	logger.Info("generate: rows fetched", slog.Int("rows", len(rows)))

	res := generator.New(store, cfg.Docs.Extension, logger).Generate(ctx, rows)
	logger.Info("generate: done",
		slog.Int("written", len(res.Written)),
		slog.Int("failed", res.Failed))
	return ctx.Err()
}

// RunSearch rebuilds the search index file from the docs tree.
func RunSearch(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stdout)

	store, err := storage.NewFS(cfg.Docs.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	_, err = search.NewBuilder(store, cfg.Search.BaseURL, logger).Run(cfg.Search.Output)
	return err
}

// RunLint normalizes every document and prints a summary table.
func RunLint(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stdout)

	repl, err := lint.LoadReplacements(cfg.Lint.Replacements)
	if err != nil {
		return err
	}
	store, err := storage.NewFS(cfg.Docs.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	logger.Info("lint: replacements loaded", slog.Int("entries", repl.Len()))

	res, runErr := lint.NewNormalizer(store, repl, cfg.Docs.Extension, logger).Run()
	if res != nil {
		fmt.Fprintln(app.out, lint.Report(res))
	}
	return runErr
}

// RunMCP serves the catalog over the MCP stdio transport. Logs go to
// stderr since stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stderr)

	store, err := storage.NewFS(cfg.Docs.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	db, err := catalog.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()

	if err := catalog.Sync(db, store, cfg.Search.BaseURL, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return mcpserver.New(store, db).ServeStdio()
}

// RunServe starts the local preview server: it keeps the catalog in sync
// with the docs tree, rebuilds the search index after each change batch and
// serves the read-only API.
func RunServe(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := newLogger(cfg, os.Stdout)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("docs_path", cfg.Docs.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Docs.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db, err := catalog.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()

	if err := catalog.Sync(db, store, cfg.Search.BaseURL, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	builder := search.NewBuilder(store, cfg.Search.BaseURL, logger)
	rebuild := func() {
		records, err := builder.Run(cfg.Search.Output)
		if err != nil {
			logger.Error("search: rebuild failed", slog.String("error", err.Error()))
			return
		}
		broker.PublishSearchRebuilt(len(records))
	}
	rebuild()

	svc := songservice.NewService(store, db)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	r.Get("/search-data.json", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		http.ServeFile(w, req, cfg.Search.Output)
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	watcher := &catalog.Watcher{
		DB:       db,
		Store:    store,
		BaseURL:  cfg.Search.BaseURL,
		Logger:   logger,
		OnChange: broker.PublishSongEvent,
		OnBatch:  rebuild,
	}
	g.Go(func() error {
		if err := watcher.Watch(gCtx); err != nil {
			logger.Error("watcher: failed", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		// Unblock the watcher when the shutdown came from a signal.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

var errShutdown = errors.New("shutdown")
