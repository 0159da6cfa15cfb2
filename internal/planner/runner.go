// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/dispatch"
	"github.com/itwrites/BlogViraliy-sub002/internal/lifecycle"
	"github.com/itwrites/BlogViraliy-sub002/internal/metrics"
	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// Runner generates the pending articles of generating pillars, one loop
// per pillar.
type Runner struct {
	svc    *Service
	writer Writer
	locker dispatch.Locker
	cfg    dispatch.Config

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newRunner(svc *Service, writer Writer, locker dispatch.Locker, cfg dispatch.Config) *Runner {
	if cfg.Kind == "" {
		cfg.Kind = "article"
	}
	if locker == nil {
		locker = dispatch.NewLocalLocker()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{svc: svc, writer: writer, locker: locker, cfg: cfg, ctx: ctx, cancel: cancel}
}

// Start runs the pillar loop in the background.
func (r *Runner) Start(pillarID uuid.UUID) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.Run(r.ctx, pillarID); err != nil {
			slog.Error("pillar generation loop stopped", "pillar_id", pillarID, "error", err)
		}
	}()
}

// Resume starts a loop for every pillar left generating by a previous
// process.
func (r *Runner) Resume(ctx context.Context) (int, error) {
	list, err := r.svc.store.PillarsInStatus(ctx, models.PillarGenerating)
	if err != nil {
		return 0, fmt.Errorf("list generating pillars: %w", err)
	}
	for _, p := range list {
		r.Start(p.ID)
	}
	return len(list), nil
}

// Wait blocks until every background loop has returned.
func (r *Runner) Wait() { r.wg.Wait() }

// Stop cancels background loops and waits for in-flight articles.
func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
}

// Run generates the pillar's pending articles until none are left or the
// pillar leaves generating, then settles the pillar status. A resume that
// lands while the loop drains in-flight articles finds the lock taken, so
// the loop checks again after releasing it and keeps going if the pillar
// is back in generating.
func (r *Runner) Run(ctx context.Context, pillarID uuid.UUID) error {
	for {
		progressed, err := r.pass(ctx, pillarID)
		if err != nil || !progressed || ctx.Err() != nil {
			return err
		}
		p, err := r.svc.store.FindPillar(ctx, pillarID)
		if err != nil {
			return fmt.Errorf("find pillar: %w", err)
		}
		if p == nil || p.Status != models.PillarGenerating {
			return nil
		}
		slog.Info("pillar resumed while its loop was draining", "pillar_id", pillarID)
	}
}

// pass runs one locked dispatch over the pillar. progressed is false when
// another loop holds the lock or the pass found nothing to do.
func (r *Runner) pass(ctx context.Context, pillarID uuid.UUID) (progressed bool, err error) {
	lease, err := r.locker.Acquire(ctx, dispatch.PillarKey(pillarID.String()))
	if errors.Is(err, dispatch.ErrLocked) {
		slog.Debug("pillar generation loop already running", "pillar_id", pillarID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("acquire pillar lock: %w", err)
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			slog.Warn("release pillar lock", "pillar_id", pillarID, "error", err)
		}
	}()

	store := r.svc.store
	p, err := store.FindPillar(ctx, pillarID)
	if err != nil {
		return false, fmt.Errorf("find pillar: %w", err)
	}
	if p == nil || p.Status != models.PillarGenerating {
		return false, nil
	}

	// Holding the lock means nothing else is generating for this pillar.
	stale, err := store.RequeueArticles(ctx, pillarID, models.ArticleGenerating)
	if err != nil {
		return false, r.fail(ctx, pillarID, fmt.Errorf("requeue stale articles: %w", err))
	}
	slog.Info("pillar generation loop started", "pillar_id", pillarID, "requeued", stale)

	stats, err := dispatch.Run(ctx, r.cfg, dispatch.SourceFunc(func(ctx context.Context) (dispatch.Unit, error) {
		return r.next(ctx, pillarID)
	}))
	slog.Info("pillar generation loop finished", "pillar_id", pillarID, "dispatched", stats.Dispatched)
	if err != nil {
		return false, r.fail(ctx, pillarID, err)
	}
	if ctx.Err() != nil {
		// Shutdown; Resume picks the pillar up again.
		return false, nil
	}
	return stats.Dispatched > 0 || stale > 0, r.settle(ctx, pillarID)
}

// next re-reads the pillar before every claim so pause and delete are
// observed between articles.
func (r *Runner) next(ctx context.Context, pillarID uuid.UUID) (dispatch.Unit, error) {
	store := r.svc.store
	p, err := store.FindPillar(ctx, pillarID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.Status != models.PillarGenerating {
		return nil, nil
	}
	a, err := store.ClaimArticle(ctx, pillarID)
	if err != nil || a == nil {
		return nil, err
	}

	return func(ctx context.Context) {
		r.generate(ctx, p, a)
	}, nil
}

func (r *Runner) generate(ctx context.Context, p *models.Pillar, a *models.PillarArticle) {
	store := r.svc.store
	start := time.Now()
	post, err := r.writer.WriteArticle(ctx, p, a)
	if err == nil && post == nil {
		err = errors.New("writer returned no post")
	}
	metrics.ObserveUnit(r.cfg.Kind, err == nil, time.Since(start).Seconds())

	var ok bool
	if err != nil {
		slog.Warn("article generation failed", "pillar_id", p.ID, "article_id", a.ID, "role", a.Role, "error", err)
		ok, err = store.FailArticle(ctx, a.ID, err.Error())
	} else {
		ok, err = store.CompleteArticle(ctx, a.ID, post.ID, post.Slug)
	}
	if err != nil {
		slog.Error("record article outcome", "article_id", a.ID, "error", err)
		return
	}
	if !ok {
		slog.Warn("article outcome dropped, article no longer generating", "article_id", a.ID)
	}
	r.svc.graphs.Invalidate(ctx, p.ID)
}

// settle completes or fails the pillar once nothing is left to generate.
func (r *Runner) settle(ctx context.Context, pillarID uuid.UUID) error {
	store := r.svc.store
	p, err := store.FindPillar(ctx, pillarID)
	if err != nil {
		return fmt.Errorf("find pillar: %w", err)
	}
	if p == nil || p.Status != models.PillarGenerating {
		return nil
	}
	counts, err := store.CountArticles(ctx, pillarID)
	if err != nil {
		return r.fail(ctx, pillarID, fmt.Errorf("count articles: %w", err))
	}
	if counts[models.ArticlePending]+counts[models.ArticleGenerating] > 0 {
		return nil
	}

	if counts[models.ArticleCompleted] == 0 && counts[models.ArticleFailed] > 0 {
		msg := fmt.Sprintf("all %d articles failed", counts[models.ArticleFailed])
		return ignoreRace(r.svc.transition(ctx, p, lifecycle.GenerationFailed, &msg))
	}
	return ignoreRace(r.svc.transition(ctx, p, lifecycle.GenerationCompleted, nil))
}

// ignoreRace drops transition errors caused by a pause or delete landing
// between the last claim and settling.
func ignoreRace(err error) error {
	if errors.Is(err, lifecycle.ErrInvalidTransition) || errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// fail records an error that stopped the loop.
func (r *Runner) fail(ctx context.Context, pillarID uuid.UUID, cause error) error {
	ctx = context.WithoutCancel(ctx)
	p, err := r.svc.store.FindPillar(ctx, pillarID)
	if err != nil || p == nil || p.Status != models.PillarGenerating {
		return cause
	}
	msg := cause.Error()
	if err := r.svc.transition(ctx, p, lifecycle.GenerationFailed, &msg); err != nil {
		slog.Error("record generation failure", "pillar_id", pillarID, "error", err)
	}
	return cause
}
