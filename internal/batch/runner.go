// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/dispatch"
	"github.com/itwrites/BlogViraliy-sub002/internal/metrics"
	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// Worker turns one keyword job into a post.
type Worker interface {
	ProcessKeyword(ctx context.Context, b *models.KeywordBatch, job *models.KeywordJob) (uuid.UUID, error)
}

// WorkerFunc adapts a function to Worker.
type WorkerFunc func(ctx context.Context, b *models.KeywordBatch, job *models.KeywordJob) (uuid.UUID, error)

// ProcessKeyword calls f.
func (f WorkerFunc) ProcessKeyword(ctx context.Context, b *models.KeywordBatch, job *models.KeywordJob) (uuid.UUID, error) {
	return f(ctx, b, job)
}

// Runner drives keyword batches through the worker, one loop per batch.
type Runner struct {
	svc    *Service
	store  Store
	worker Worker
	locker dispatch.Locker
	cfg    dispatch.Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a runner. Loops started with Start live until Stop.
func NewRunner(svc *Service, store Store, worker Worker, locker dispatch.Locker, cfg dispatch.Config) *Runner {
	if cfg.Kind == "" {
		cfg.Kind = "keyword"
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		svc:    svc,
		store:  store,
		worker: worker,
		locker: locker,
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start runs the batch loop in the background.
func (r *Runner) Start(batchID uuid.UUID) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.Run(r.ctx, batchID); err != nil {
			slog.Error("keyword batch loop stopped", "batch_id", batchID, "error", err)
		}
	}()
}

// Resume starts a loop for every batch left active by a previous process.
func (r *Runner) Resume(ctx context.Context) (int, error) {
	list, err := r.store.ActiveBatches(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active batches: %w", err)
	}
	for _, b := range list {
		r.Start(b.ID)
	}
	return len(list), nil
}

// Wait blocks until every background loop has returned.
func (r *Runner) Wait() { r.wg.Wait() }

// Stop cancels background loops and waits for in-flight jobs to finish.
func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
}

// Run dispatches the jobs of one batch until it is drained or no longer
// processing. A second concurrent Run for the same batch returns nil
// without doing anything.
func (r *Runner) Run(ctx context.Context, batchID uuid.UUID) error {
	lease, err := r.locker.Acquire(ctx, dispatch.BatchKey(batchID.String()))
	if errors.Is(err, dispatch.ErrLocked) {
		slog.Debug("keyword batch loop already running", "batch_id", batchID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("acquire batch lock: %w", err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("release batch lock", "batch_id", batchID, "error", err)
		}
	}()

	b, err := r.svc.Get(ctx, batchID)
	if err != nil {
		return err
	}
	if !b.Status.IsActive() {
		return nil
	}

	queued, err := r.store.QueueJobs(ctx, batchID)
	if err != nil {
		return fmt.Errorf("queue jobs: %w", err)
	}
	slog.Info("keyword batch loop started", "batch_id", batchID, "queued", queued)

	stats, err := dispatch.Run(ctx, r.cfg, dispatch.SourceFunc(func(ctx context.Context) (dispatch.Unit, error) {
		return r.next(ctx, batchID)
	}))
	slog.Info("keyword batch loop finished", "batch_id", batchID, "dispatched", stats.Dispatched)
	return err
}

// next re-reads the batch before every claim so cancellation is observed
// between jobs.
func (r *Runner) next(ctx context.Context, batchID uuid.UUID) (dispatch.Unit, error) {
	b, err := r.store.FindBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if b == nil || b.Status != models.BatchProcessing {
		return nil, nil
	}
	job, err := r.store.ClaimJob(ctx, batchID)
	if err != nil || job == nil {
		return nil, err
	}

	return func(ctx context.Context) {
		start := time.Now()
		postID, err := r.worker.ProcessKeyword(ctx, b, job)
		out := Outcome{Err: err}
		if err == nil {
			out.PostID = &postID
		}
		metrics.ObserveUnit(r.cfg.Kind, out.Succeeded(), time.Since(start).Seconds())
		if err != nil {
			slog.Warn("keyword job failed", "batch_id", batchID, "job_id", job.ID, "keyword", job.Keyword, "error", err)
		}
		if _, err := r.svc.RecordOutcome(ctx, job.ID, out); err != nil {
			slog.Error("record keyword job outcome", "job_id", job.ID, "error", err)
		}
	}, nil
}
