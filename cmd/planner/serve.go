// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/itwrites/BlogViraliy-sub002/internal/ai"
	"github.com/itwrites/BlogViraliy-sub002/internal/batch"
	"github.com/itwrites/BlogViraliy-sub002/internal/cache"
	"github.com/itwrites/BlogViraliy-sub002/internal/config"
	"github.com/itwrites/BlogViraliy-sub002/internal/database"
	"github.com/itwrites/BlogViraliy-sub002/internal/dispatch"
	"github.com/itwrites/BlogViraliy-sub002/internal/generation"
	"github.com/itwrites/BlogViraliy-sub002/internal/handlers"
	"github.com/itwrites/BlogViraliy-sub002/internal/memstore"
	"github.com/itwrites/BlogViraliy-sub002/internal/middleware"
	"github.com/itwrites/BlogViraliy-sub002/internal/planner"
	"github.com/itwrites/BlogViraliy-sub002/internal/router"
	"github.com/itwrites/BlogViraliy-sub002/internal/storage"
	"github.com/itwrites/BlogViraliy-sub002/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the generation runners",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

// stores groups the persistence backends the services need.
type stores struct {
	pillars planner.Store
	batches batch.Store
	posts   generation.PostStore
	close   func() error
}

// openStores connects the configured backend. PostgreSQL is migrated on
// startup and seeded with the default site in development.
func openStores(ctx context.Context) (*stores, error) {
	if cfg.StoreBackend == config.BackendMemory {
		slog.Warn("using the in-memory store, data is lost on exit")
		st := memstore.New()
		return &stores{pillars: st, batches: st, posts: st, close: func() error { return nil }}, nil
	}

	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	if cfg.IsDev() {
		siteID, err := database.Seed(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		slog.Info("default site ready", "site_id", siteID, "hostname", database.DefaultSiteHostname)
	}
	return newPostgresStores(db), nil
}

func newPostgresStores(db *sql.DB) *stores {
	return &stores{
		pillars: store.NewPillarStore(db),
		batches: store.NewBatchStore(db),
		posts:   store.NewPostStore(db),
		close:   db.Close,
	}
}

// coordination picks the dispatch locker and graph cache. Valkey is
// optional; without it locks are in-process and graphs are not cached.
func coordination(ctx context.Context) (dispatch.Locker, planner.GraphCache, func()) {
	if cfg.ValkeyEnabled {
		client, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
		if err == nil {
			slog.Info("valkey connected", "host", cfg.ValkeyHost, "db", cfg.ValkeyDB)
			graphs := cache.NewGraphCache(client, cache.DefaultGraphTTL)
			// Layouts cached by an older build may be computed differently.
			graphs.InvalidateAll(ctx)
			return cache.NewLocker(client, cache.DefaultLockTTL), graphs, func() { closeValkey(client) }
		}
		slog.Warn("valkey unavailable, using in-process locks and no graph cache", "error", err)
	}
	return dispatch.NewLocalLocker(), nil, func() {}
}

func closeValkey(client *redis.Client) {
	if err := client.Close(); err != nil {
		slog.Warn("close valkey", "error", err)
	}
}

// dispatchConfig bounds generation by concurrency and an optional rate.
func dispatchConfig() dispatch.Config {
	dc := dispatch.Config{Concurrency: cfg.GenerationConcurrency}
	if cfg.GenerationRPS > 0 {
		dc.Limiter = rate.NewLimiter(rate.Limit(cfg.GenerationRPS), 1)
	}
	return dc
}

func serve(ctx context.Context) error {
	st, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			slog.Warn("close store", "error", err)
		}
	}()

	locker, graphs, closeCoord := coordination(ctx)
	defer closeCoord()

	// AI provider registry with every configured provider.
	registry := ai.NewRegistry(cfg.AIProvider, cfg.ProviderConfigs())
	slog.Info("ai providers initialized",
		"active", registry.ActiveName(),
		"available", registry.Available(),
	)
	gen := generation.NewService(registry, st.posts, cfg.GenerationTimeout)
	archive, err := storage.New(cfg.Archive())
	if err != nil {
		return err
	}
	if archive != nil {
		gen.WithArchive(archive)
		slog.Info("draft archive enabled", "endpoint", cfg.ArchiveEndpoint, "bucket", cfg.ArchiveBucket)
	}

	deps := planner.Deps{
		Store:    st.pillars,
		Writer:   gen,
		Graphs:   graphs,
		Locker:   locker,
		Dispatch: dispatchConfig(),
		Namer:    generation.NewNamer(registry, cfg.GenerationTimeout),
	}

	batches := batch.NewService(st.batches)
	batchRunner := batch.NewRunner(batches, st.batches, gen, locker, dispatchConfig())
	deps.Batches = batches
	pillars := planner.NewService(deps)

	// Pick up work a previous process left in flight.
	if n, err := pillars.Runner().Resume(ctx); err != nil {
		slog.Error("resume pillars", "error", err)
	} else if n > 0 {
		slog.Info("pillar generation resumed", "count", n)
	}
	if n, err := batchRunner.Resume(ctx); err != nil {
		slog.Error("resume batches", "error", err)
	} else if n > 0 {
		slog.Info("keyword batches resumed", "count", n)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	defer limiter.Stop()

	api := handlers.NewAPI(pillars, batches, batchRunner, registry)
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.New(api, limiter),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			pillars.Runner().Stop()
			batchRunner.Stop()
			return err
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	// In-flight articles and jobs finish before the runners return.
	pillars.Runner().Stop()
	batchRunner.Stop()

	slog.Info("server stopped gracefully")
	return nil
}
