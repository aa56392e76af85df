// Package main is the entry point for the webcomics server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/webcomics/internal/ads"
	"github.com/pkordes/webcomics/internal/config"
	"github.com/pkordes/webcomics/internal/edgecache"
	"github.com/pkordes/webcomics/internal/handler"
	"github.com/pkordes/webcomics/internal/markup"
	"github.com/pkordes/webcomics/internal/middleware"
	"github.com/pkordes/webcomics/internal/ordering"
	"github.com/pkordes/webcomics/internal/repo"
	"github.com/pkordes/webcomics/internal/service"
	"github.com/pkordes/webcomics/internal/tenancy"
	"github.com/pkordes/webcomics/internal/validation"
	"github.com/pkordes/webcomics/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	if err := migrate(context.Background(), cfg.DatabaseURL); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// --- Repositories -----------------------------------------------------
	tenantRepo := repo.NewTenantRepo(pool)
	pageRepo := repo.NewPageRepo(pool)
	tagRepo := repo.NewTagRepo(pool)
	chapterRepo := repo.NewChapterRepo(pool)
	adRepo := repo.NewAdRepo(pool)
	snippetRepo := repo.NewSnippetRepo(pool)

	// --- Pipeline ---------------------------------------------------------
	resolver := tenancy.NewResolver(tenantRepo)
	index := ordering.NewIndex(pageRepo, chapterRepo, time.Now)
	renderer := markup.NewRenderer(tagRepo)
	selector := ads.NewSelector(adRepo, nil)

	invalidator := edgecache.NewInvalidator(tenantRepo, edgecache.NewCloudflarePurger(cfg.EdgeCache.APIURL), logger)
	var notifier service.Notifier = invalidator
	var queue *edgecache.Queue
	if cfg.EdgeCache.Async {
		queue = edgecache.NewQueue(invalidator, edgecache.QueueConfig{
			Workers:     cfg.EdgeCache.Workers,
			Size:        cfg.EdgeCache.QueueSize,
			MaxRetries:  cfg.EdgeCache.MaxRetries,
			BaseBackoff: cfg.EdgeCache.BaseBackoff,
		}, logger)
		notifier = queue
		slog.Info("edge cache purges are asynchronous", "workers", cfg.EdgeCache.Workers)
	}

	// --- Services ---------------------------------------------------------
	v := validation.New()
	srv := handler.NewServer(handler.Services{
		Reader:   service.NewReaderService(pageRepo, snippetRepo, tenantRepo, index, renderer, selector),
		Archive:  service.NewArchiveService(pageRepo, tagRepo, index, renderer, selector),
		Tenants:  service.NewTenantService(tenantRepo, v, notifier),
		Pages:    service.NewPageService(pageRepo, tagRepo, v, notifier, time.Now),
		Tags:     service.NewTagService(tagRepo, adRepo, v, notifier),
		Chapters: service.NewChapterService(chapterRepo, v, notifier),
		Ads:      service.NewAdService(adRepo, v, notifier),
		Snippets: service.NewSnippetService(snippetRepo, v, notifier),
	}, handler.Options{
		AdsTxtURL:       cfg.AdsTxtURL,
		RandomRateLimit: cfg.RandomRateLimit,
	}, logger)

	// --- Router -----------------------------------------------------------
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// tenancy.Middleware resolves the host (or redirects an alias) before the
	// logger runs, so each log line carries the tenant.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Get("/healthz", srv.GetHealth)

	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.NewSlogLogger(logger))
		r.Use(chimiddleware.Recoverer)
		r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
		r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
		srv.AdminRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(tenancy.Middleware(resolver, logger))
		r.Use(middleware.NewSlogLogger(logger))
		r.Use(chimiddleware.Recoverer)
		srv.PublicRoutes(r)
	})

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	// Writes have stopped; drain pending purges within the same deadline.
	if queue != nil {
		if err := queue.Close(ctx); err != nil {
			slog.Error("purge queue not drained", "error", err)
		}
	}
	slog.Info("server stopped")
}

// migrate applies the embedded goose migrations. goose needs database/sql,
// so it gets its own short-lived handle rather than the pgx pool.
func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}
