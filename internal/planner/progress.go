// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package planner

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/layout"
	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/pack"
	"github.com/itwrites/BlogViraliy-sub002/internal/topology"
)

// ClusterProgress is the generation progress of one cluster.
type ClusterProgress struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Position       int       `json:"position"`
	ArticleCount   int       `json:"article_count"`
	GeneratedCount int       `json:"generated_count"`
}

// Progress is a read-only snapshot of a pillar's generation.
type Progress struct {
	Status     models.PillarStatus `json:"status"`
	Total      int                 `json:"total"`
	Pending    int                 `json:"pending"`
	Generating int                 `json:"generating"`
	Completed  int                 `json:"completed"`
	Failed     int                 `json:"failed"`
	Skipped    int                 `json:"skipped"`
	Clusters   []ClusterProgress   `json:"clusters"`
	LastError  *string             `json:"last_error,omitempty"`
}

// Done counts articles that will not be dispatched again.
func (p Progress) Done() int { return p.Completed + p.Failed + p.Skipped }

// String renders "N of M done, K failed".
func (p Progress) String() string {
	return fmt.Sprintf("%d of %d done, %d failed", p.Done(), p.Total, p.Failed)
}

// Progress returns article counts by status and per-cluster counters.
func (s *Service) Progress(ctx context.Context, id uuid.UUID) (Progress, error) {
	p, err := s.GetPillar(ctx, id)
	if err != nil {
		return Progress{}, err
	}
	counts, err := s.store.CountArticles(ctx, id)
	if err != nil {
		return Progress{}, fmt.Errorf("count articles: %w", err)
	}
	clusters, err := s.store.ListClusters(ctx, id)
	if err != nil {
		return Progress{}, fmt.Errorf("list clusters: %w", err)
	}

	out := Progress{
		Status:     p.Status,
		Pending:    counts[models.ArticlePending],
		Generating: counts[models.ArticleGenerating],
		Completed:  counts[models.ArticleCompleted],
		Failed:     counts[models.ArticleFailed],
		Skipped:    counts[models.ArticleSkipped],
		Clusters:   make([]ClusterProgress, 0, len(clusters)),
		LastError:  p.LastError,
	}
	for _, n := range counts {
		out.Total += n
	}
	for _, c := range clusters {
		out.Clusters = append(out.Clusters, ClusterProgress{
			ID:             c.ID,
			Name:           c.Name,
			Position:       c.Position,
			ArticleCount:   c.ArticleCount,
			GeneratedCount: c.GeneratedCount,
		})
	}
	return out, nil
}

// Graph returns the laid-out link graph of a pillar's planned articles.
func (s *Service) Graph(ctx context.Context, id uuid.UUID) (*layout.Graph, error) {
	p, err := s.GetPillar(ctx, id)
	if err != nil {
		return nil, err
	}
	if g, ok := s.graphs.Get(ctx, id); ok {
		return g, nil
	}

	articles, err := s.store.ListArticles(ctx, id, models.ArticleFilter{})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	edges := topology.Links(articles, pack.ResolveLinkingRules(p))
	g := layout.Compute(layout.NodesFromArticles(articles), edges, layout.Options{})

	s.graphs.Set(ctx, id, g)
	return g, nil
}
