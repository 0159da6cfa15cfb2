// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package dispatch runs cooperative work loops. A loop asks its Source for
// the next unit only when a worker slot is free, so status flags such as
// pause or cancel are observed before every claim. Units already running
// are never interrupted by the loop stopping.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/itwrites/BlogViraliy-sub002/internal/metrics"
)

// Unit is one claimed piece of work.
type Unit func(ctx context.Context)

// Source hands out units. Next returns a nil Unit when there is nothing
// left to claim or when dispatch must stop (paused, cancelled, deleted).
type Source interface {
	Next(ctx context.Context) (Unit, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Unit, error)

// Next calls f.
func (f SourceFunc) Next(ctx context.Context) (Unit, error) { return f(ctx) }

// Config bounds a loop.
type Config struct {
	Kind        string        // metrics label, e.g. "article" or "keyword"
	Concurrency int           // max units in flight; 1 when <= 0
	Limiter     *rate.Limiter // optional dispatch rate limit
}

// Stats summarises one loop run.
type Stats struct {
	Dispatched int
}

// Run claims and executes units until the source is exhausted, the source
// fails, or ctx is done. It waits for in-flight units before returning.
// Units run on a context that is not cancelled with ctx.
func Run(ctx context.Context, cfg Config, src Source) (Stats, error) {
	n := cfg.Concurrency
	if n <= 0 {
		n = 1
	}
	sem := semaphore.NewWeighted(int64(n))
	var g errgroup.Group
	var stats Stats
	var runErr error

	metrics.ActiveLoops.WithLabelValues(cfg.Kind).Inc()
	defer metrics.ActiveLoops.WithLabelValues(cfg.Kind).Dec()

	unitCtx := context.WithoutCancel(ctx)

	for {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		if cfg.Limiter != nil {
			if err := cfg.Limiter.Wait(ctx); err != nil {
				sem.Release(1)
				break
			}
		}

		unit, err := src.Next(ctx)
		if err != nil {
			sem.Release(1)
			runErr = fmt.Errorf("dispatch %s: %w", cfg.Kind, err)
			break
		}
		if unit == nil {
			sem.Release(1)
			break
		}

		stats.Dispatched++
		g.Go(func() error {
			defer sem.Release(1)
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("dispatch unit panicked", "kind", cfg.Kind, "error", rec)
				}
			}()
			unit(unitCtx)
			return nil
		})
	}

	_ = g.Wait()
	return stats, runErr
}
