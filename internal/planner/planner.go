// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package planner orchestrates pillars: it maps a pillar into a tree of
// clusters and articles, drives the lifecycle, and runs generation.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/dispatch"
	"github.com/itwrites/BlogViraliy-sub002/internal/layout"
	"github.com/itwrites/BlogViraliy-sub002/internal/lifecycle"
	"github.com/itwrites/BlogViraliy-sub002/internal/metrics"
	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/pack"
	"github.com/itwrites/BlogViraliy-sub002/internal/topology"
)

// ErrNotFound is returned when a pillar does not exist.
var ErrNotFound = errors.New("pillar not found")

// Store persists pillars and their trees. Lookups return (nil, nil) when
// the row does not exist.
type Store interface {
	CreatePillar(ctx context.Context, p *models.Pillar) error
	FindPillar(ctx context.Context, id uuid.UUID) (*models.Pillar, error)
	ListPillars(ctx context.Context, siteID uuid.UUID, f models.PillarFilter) ([]models.Pillar, error)
	// PillarsInStatus lists pillars of every site in one status.
	PillarsInStatus(ctx context.Context, status models.PillarStatus) ([]models.Pillar, error)
	// SetPillarStatus moves a pillar from one status to another only if it
	// is still in from. lastError replaces the stored error (nil clears it).
	SetPillarStatus(ctx context.Context, id uuid.UUID, from, to models.PillarStatus, lastError *string) (bool, error)
	SetPillarTarget(ctx context.Context, id uuid.UUID, target int) error
	// DeletePillar removes a pillar with its clusters and articles.
	DeletePillar(ctx context.Context, id uuid.UUID) (bool, error)

	ListClusters(ctx context.Context, pillarID uuid.UUID) ([]models.Cluster, error)
	// ListArticles returns the hub and every cluster article, by position.
	ListArticles(ctx context.Context, pillarID uuid.UUID, f models.ArticleFilter) ([]models.PillarArticle, error)
	// SaveSkeleton inserts a planning run in one transaction.
	SaveSkeleton(ctx context.Context, pillarID uuid.UUID, sk *topology.Skeleton) error
	// WipeMap removes every cluster and article of a pillar.
	WipeMap(ctx context.Context, pillarID uuid.UUID) error
	// RequeueArticles moves articles of a pillar from one status back to
	// pending.
	RequeueArticles(ctx context.Context, pillarID uuid.UUID, from models.ArticleStatus) (int, error)

	// ClaimArticle moves the lowest-position pending article to
	// generating. Returns (nil, nil) when none is left.
	ClaimArticle(ctx context.Context, pillarID uuid.UUID) (*models.PillarArticle, error)
	// CompleteArticle marks a generating article completed and bumps its
	// cluster's generated count in the same transaction.
	CompleteArticle(ctx context.Context, articleID, postID uuid.UUID, slug string) (bool, error)
	FailArticle(ctx context.Context, articleID uuid.UUID, reason string) (bool, error)
	CountArticles(ctx context.Context, pillarID uuid.UUID) (map[models.ArticleStatus]int, error)
}

// BatchCanceller cancels keyword batches that target a pillar.
type BatchCanceller interface {
	CancelForPillar(ctx context.Context, pillarID uuid.UUID) (int, error)
}

// Namer replaces placeholder titles and cluster names of a skeleton.
type Namer interface {
	NameSkeleton(ctx context.Context, p *models.Pillar, sk *topology.Skeleton) error
}

// Writer generates the content of one planned article.
type Writer interface {
	WriteArticle(ctx context.Context, p *models.Pillar, a *models.PillarArticle) (*models.Post, error)
}

// GraphCache keeps computed layouts per pillar.
type GraphCache interface {
	Get(ctx context.Context, pillarID uuid.UUID) (*layout.Graph, bool)
	Set(ctx context.Context, pillarID uuid.UUID, g *layout.Graph)
	Invalidate(ctx context.Context, pillarID uuid.UUID)
}

// Deps wires a Service. Store, Writer and Locker are required.
type Deps struct {
	Store    Store
	Batches  BatchCanceller
	Writer   Writer
	Namer    Namer
	Graphs   GraphCache
	Locker   dispatch.Locker
	Dispatch dispatch.Config
}

// Service implements the pillar operations.
type Service struct {
	store   Store
	batches BatchCanceller
	namer   Namer
	graphs  GraphCache
	runner  *Runner
}

// NewService creates the service and its generation runner.
func NewService(d Deps) *Service {
	graphs := d.Graphs
	if graphs == nil {
		graphs = noGraphCache{}
	}
	s := &Service{
		store:   d.Store,
		batches: d.Batches,
		namer:   d.Namer,
		graphs:  graphs,
	}
	s.runner = newRunner(s, d.Writer, d.Locker, d.Dispatch)
	return s
}

// Runner returns the generation runner.
func (s *Service) Runner() *Runner { return s.runner }

// CreatePillar stores a new draft pillar.
func (s *Service) CreatePillar(ctx context.Context, p *models.Pillar) (*models.Pillar, error) {
	if p.Language == "" {
		p.Language = "en"
	}
	if p.PublishSchedule == "" {
		p.PublishSchedule = models.ScheduleWeekly
	}
	if p.DefaultPublishStatus == "" {
		p.DefaultPublishStatus = models.ContentStatusDraft
	}
	p.Status = lifecycle.Initial
	p.LastError = nil
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if !p.IsCustomPack() && !pack.IsKnown(p.PackType) {
		slog.Warn("pillar uses an unknown pack, no links will be planned", "pack_type", p.PackType)
	}

	if err := s.store.CreatePillar(ctx, p); err != nil {
		return nil, fmt.Errorf("create pillar: %w", err)
	}
	slog.Info("pillar created", "pillar_id", p.ID, "site_id", p.SiteID, "pack", p.PackType)
	return p, nil
}

// GetPillar returns a pillar or ErrNotFound.
func (s *Service) GetPillar(ctx context.Context, id uuid.UUID) (*models.Pillar, error) {
	p, err := s.store.FindPillar(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find pillar: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// ListPillars returns the pillars of a site.
func (s *Service) ListPillars(ctx context.Context, siteID uuid.UUID, f models.PillarFilter) ([]models.Pillar, error) {
	list, err := s.store.ListPillars(ctx, siteID, f)
	if err != nil {
		return nil, fmt.Errorf("list pillars: %w", err)
	}
	return list, nil
}

// Articles returns the planned articles of a pillar.
func (s *Service) Articles(ctx context.Context, id uuid.UUID, f models.ArticleFilter) ([]models.PillarArticle, error) {
	if _, err := s.GetPillar(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.store.ListArticles(ctx, id, f)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return list, nil
}

// GenerateMap plans the first tree of a draft pillar.
func (s *Service) GenerateMap(ctx context.Context, id uuid.UUID) (*models.Pillar, error) {
	p, err := s.GetPillar(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, p, lifecycle.GenerateMap, nil); err != nil {
		return nil, err
	}
	return s.finishMap(ctx, p)
}

// RegenerateMap fills the gaps of an existing tree, optionally after
// changing the target. Completed work is never removed.
func (s *Service) RegenerateMap(ctx context.Context, id uuid.UUID, target *int) (*models.Pillar, error) {
	if target != nil && *target <= 0 {
		return nil, fmt.Errorf("%w: got %d", topology.ErrInvalidTarget, *target)
	}
	p, err := s.GetPillar(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, p, lifecycle.RegenerateMap, nil); err != nil {
		return nil, err
	}
	if target != nil && *target != p.TargetArticleCount {
		if err := s.store.SetPillarTarget(ctx, id, *target); err != nil {
			return nil, s.failMap(ctx, p, fmt.Errorf("set target: %w", err))
		}
		p.TargetArticleCount = *target
	}
	return s.finishMap(ctx, p)
}

// finishMap runs planning for a pillar already in mapping and records the
// outcome.
func (s *Service) finishMap(ctx context.Context, p *models.Pillar) (*models.Pillar, error) {
	if err := s.mapPillar(ctx, p); err != nil {
		return nil, s.failMap(ctx, p, err)
	}
	if err := s.transition(ctx, p, lifecycle.MapSucceeded, nil); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) failMap(ctx context.Context, p *models.Pillar, cause error) error {
	msg := cause.Error()
	if err := s.transition(context.WithoutCancel(ctx), p, lifecycle.MapFailed, &msg); err != nil {
		slog.Error("record map failure", "pillar_id", p.ID, "error", err)
	}
	slog.Warn("pillar mapping failed", "pillar_id", p.ID, "error", cause)
	return fmt.Errorf("map pillar: %w", cause)
}

func (s *Service) mapPillar(ctx context.Context, p *models.Pillar) error {
	res := pack.Resolve(p)
	if res.Empty() {
		slog.Warn("pillar pack has no linking rules", "pillar_id", p.ID, "source", res.Source)
	}

	existing, err := s.store.ListArticles(ctx, p.ID, models.ArticleFilter{})
	if err != nil {
		return fmt.Errorf("list articles: %w", err)
	}
	clusters, err := s.store.ListClusters(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("list clusters: %w", err)
	}

	sk, err := topology.Plan(topology.Input{
		PillarID:   p.ID,
		PillarName: p.Name,
		Shape:      res.Shape,
		Target:     p.TargetArticleCount,
		Existing:   existing,
		Clusters:   clusters,
	})
	if err != nil {
		return err
	}
	if sk.Empty() {
		slog.Info("pillar map already complete", "pillar_id", p.ID)
		return nil
	}

	if s.namer != nil {
		if err := s.namer.NameSkeleton(ctx, p, sk); err != nil {
			slog.Warn("naming skeleton failed, keeping placeholder titles", "pillar_id", p.ID, "error", err)
		}
	}

	if err := s.store.SaveSkeleton(ctx, p.ID, sk); err != nil {
		return fmt.Errorf("save skeleton: %w", err)
	}
	s.graphs.Invalidate(ctx, p.ID)

	slog.Info("pillar mapped", "pillar_id", p.ID, "clusters", len(sk.Clusters), "articles", len(sk.Articles), "hub", sk.Hub != nil)
	return nil
}

// Reset returns a failed pillar to draft and requeues its failed articles.
func (s *Service) Reset(ctx context.Context, id uuid.UUID) (*models.Pillar, error) {
	return s.ResetMap(ctx, id, false)
}

// ResetMap is Reset with an explicit option to wipe the whole tree.
func (s *Service) ResetMap(ctx context.Context, id uuid.UUID, wipe bool) (*models.Pillar, error) {
	p, err := s.GetPillar(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, p, lifecycle.Reset, nil); err != nil {
		return nil, err
	}

	if wipe {
		if err := s.store.WipeMap(ctx, id); err != nil {
			return nil, fmt.Errorf("wipe map: %w", err)
		}
		slog.Info("pillar map wiped", "pillar_id", id)
	} else {
		n, err := s.store.RequeueArticles(ctx, id, models.ArticleFailed)
		if err != nil {
			return nil, fmt.Errorf("requeue failed articles: %w", err)
		}
		if n > 0 {
			slog.Info("failed articles requeued", "pillar_id", id, "count", n)
		}
	}
	s.graphs.Invalidate(ctx, id)
	return p, nil
}

// StartGeneration moves a mapped or paused pillar to generating and starts
// its loop in the background.
func (s *Service) StartGeneration(ctx context.Context, id uuid.UUID) (*models.Pillar, error) {
	p, err := s.GetPillar(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, p, lifecycle.StartGeneration, nil); err != nil {
		return nil, err
	}
	s.runner.Start(id)
	return p, nil
}

// Pause stops dispatch before the next claim. Articles already generating
// finish.
func (s *Service) Pause(ctx context.Context, id uuid.UUID) (*models.Pillar, error) {
	p, err := s.GetPillar(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, p, lifecycle.Pause, nil); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a pillar in any state, cancelling batches that target it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.GetPillar(ctx, id)
	if err != nil {
		return err
	}
	if !lifecycle.CanDelete(p.Status) {
		return &lifecycle.TransitionError{From: p.Status, Action: lifecycle.Delete}
	}
	if s.batches != nil {
		if _, err := s.batches.CancelForPillar(ctx, id); err != nil {
			return err
		}
	}
	ok, err := s.store.DeletePillar(ctx, id)
	if err != nil {
		return fmt.Errorf("delete pillar: %w", err)
	}
	if !ok {
		return ErrNotFound
	}
	s.graphs.Invalidate(ctx, id)
	slog.Info("pillar deleted", "pillar_id", id)
	return nil
}

// transition validates an action against the lifecycle table and persists
// it with a compare-and-swap on the current status. On success p carries
// the new status.
func (s *Service) transition(ctx context.Context, p *models.Pillar, action lifecycle.Action, lastError *string) error {
	to, err := lifecycle.Transition(p.Status, action)
	if err != nil {
		return err
	}
	ok, err := s.store.SetPillarStatus(ctx, p.ID, p.Status, to, lastError)
	if err != nil {
		return fmt.Errorf("set pillar status: %w", err)
	}
	if !ok {
		// Lost a race; report against the status that won.
		cur, err := s.GetPillar(ctx, p.ID)
		if err != nil {
			return err
		}
		return &lifecycle.TransitionError{From: cur.Status, Action: action}
	}

	slog.Info("pillar transition", "pillar_id", p.ID, "action", action, "from", p.Status, "to", to)
	metrics.Transitions.WithLabelValues(string(action), string(to)).Inc()
	p.Status = to
	p.LastError = lastError
	return nil
}

type noGraphCache struct{}

func (noGraphCache) Get(context.Context, uuid.UUID) (*layout.Graph, bool) { return nil, false }
func (noGraphCache) Set(context.Context, uuid.UUID, *layout.Graph)        {}
func (noGraphCache) Invalidate(context.Context, uuid.UUID)                {}
