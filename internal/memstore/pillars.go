// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/topology"
)

func clonePillar(p *models.Pillar) *models.Pillar {
	c := *p
	c.LastError = ptrCopy(p.LastError)
	if p.CustomPack != nil {
		cp := *p.CustomPack
		cp.LinkingRules = append([]models.LinkingRule(nil), p.CustomPack.LinkingRules...)
		c.CustomPack = &cp
	}
	return &c
}

func cloneArticle(a *models.PillarArticle) models.PillarArticle {
	c := *a
	c.PillarID = ptrCopy(a.PillarID)
	c.ClusterID = ptrCopy(a.ClusterID)
	c.ArticleType = ptrCopy(a.ArticleType)
	c.Slug = ptrCopy(a.Slug)
	c.PostID = ptrCopy(a.PostID)
	c.Error = ptrCopy(a.Error)
	return c
}

// CreatePillar stores p, assigning its ID and timestamps.
func (s *Store) CreatePillar(_ context.Context, p *models.Pillar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.stamp()
	p.CreatedAt, p.UpdatedAt = now, now
	s.pillars[p.ID] = clonePillar(p)
	return nil
}

// FindPillar returns a copy of the pillar or nil.
func (s *Store) FindPillar(_ context.Context, id uuid.UUID) (*models.Pillar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pillars[id]
	if !ok {
		return nil, nil
	}
	return clonePillar(p), nil
}

// ListPillars returns the pillars of a site, newest first.
func (s *Store) ListPillars(_ context.Context, siteID uuid.UUID, f models.PillarFilter) ([]models.Pillar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Pillar
	for _, p := range s.pillars {
		if p.SiteID != siteID || (f.Status != "" && p.Status != f.Status) {
			continue
		}
		out = append(out, *clonePillar(p))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

// PillarsInStatus lists pillars of every site in one status.
func (s *Store) PillarsInStatus(_ context.Context, status models.PillarStatus) ([]models.Pillar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Pillar
	for _, p := range s.pillars {
		if p.Status == status {
			out = append(out, *clonePillar(p))
		}
	}
	return out, nil
}

// SetPillarStatus is a compare-and-swap on the pillar status.
func (s *Store) SetPillarStatus(_ context.Context, id uuid.UUID, from, to models.PillarStatus, lastError *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pillars[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	p.LastError = ptrCopy(lastError)
	p.UpdatedAt = s.stamp()
	return true, nil
}

// SetPillarTarget updates the target article count.
func (s *Store) SetPillarTarget(_ context.Context, id uuid.UUID, target int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pillars[id]; ok {
		p.TargetArticleCount = target
		p.UpdatedAt = s.stamp()
	}
	return nil
}

// DeletePillar removes the pillar and cascades to its tree. Batches that
// pointed at it lose the reference.
func (s *Store) DeletePillar(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pillars[id]; !ok {
		return false, nil
	}
	s.wipe(id)
	delete(s.pillars, id)
	for _, b := range s.batches {
		if b.PillarID != nil && *b.PillarID == id {
			b.PillarID = nil
		}
	}
	for _, p := range s.posts {
		if p.PillarID != nil && *p.PillarID == id {
			p.PillarID = nil
		}
	}
	return true, nil
}

// wipe removes every cluster and article of a pillar. Caller holds mu.
func (s *Store) wipe(pillarID uuid.UUID) {
	for cid, c := range s.clusters {
		if c.PillarID != pillarID {
			continue
		}
		for aid, a := range s.articles {
			if a.ClusterID != nil && *a.ClusterID == cid {
				delete(s.articles, aid)
			}
		}
		delete(s.clusters, cid)
	}
	for aid, a := range s.articles {
		if a.PillarID != nil && *a.PillarID == pillarID {
			delete(s.articles, aid)
		}
	}
}

// WipeMap removes every cluster and article of a pillar.
func (s *Store) WipeMap(_ context.Context, pillarID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wipe(pillarID)
	return nil
}

// ListClusters returns the clusters of a pillar by position.
func (s *Store) ListClusters(_ context.Context, pillarID uuid.UUID) ([]models.Cluster, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Cluster
	for _, c := range s.clusters {
		if c.PillarID == pillarID {
			out = append(out, *c)
		}
	}
	sortByPosition(out, func(c models.Cluster) int { return c.Position })
	return out, nil
}

// belongs reports whether an article is part of a pillar's tree. Caller
// holds mu.
func (s *Store) belongs(a *models.PillarArticle, pillarID uuid.UUID) bool {
	if a.PillarID != nil {
		return *a.PillarID == pillarID
	}
	if a.ClusterID != nil {
		c, ok := s.clusters[*a.ClusterID]
		return ok && c.PillarID == pillarID
	}
	return false
}

// ListArticles returns the hub and cluster articles of a pillar by
// position.
func (s *Store) ListArticles(_ context.Context, pillarID uuid.UUID, f models.ArticleFilter) ([]models.PillarArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PillarArticle
	for _, a := range s.articles {
		if !s.belongs(a, pillarID) {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.Role != "" && a.Role != f.Role {
			continue
		}
		if f.ClusterID != nil && (a.ClusterID == nil || *a.ClusterID != *f.ClusterID) {
			continue
		}
		out = append(out, cloneArticle(a))
	}
	sortByPosition(out, func(a models.PillarArticle) int { return a.Position })
	return out, nil
}

// SaveSkeleton inserts the hub, new clusters and new articles, and grows
// existing clusters, all under one lock.
func (s *Store) SaveSkeleton(_ context.Context, pillarID uuid.UUID, sk *topology.Skeleton) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.stamp()

	if sk.Hub != nil {
		hub := cloneArticle(sk.Hub)
		hub.CreatedAt, hub.UpdatedAt = now, now
		s.articles[hub.ID] = &hub
	}
	for _, c := range sk.Clusters {
		c.PillarID = pillarID
		c.CreatedAt = now
		s.clusters[c.ID] = &c
	}
	for id, n := range sk.Grown {
		if c, ok := s.clusters[id]; ok {
			c.ArticleCount += n
		}
	}
	for i := range sk.Articles {
		a := cloneArticle(&sk.Articles[i])
		a.CreatedAt, a.UpdatedAt = now, now
		s.articles[a.ID] = &a
	}
	if p, ok := s.pillars[pillarID]; ok {
		p.UpdatedAt = now
	}
	return nil
}

// RequeueArticles moves a pillar's articles in status from back to pending.
func (s *Store) RequeueArticles(_ context.Context, pillarID uuid.UUID, from models.ArticleStatus) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.articles {
		if a.Status == from && s.belongs(a, pillarID) {
			a.Status = models.ArticlePending
			a.Error = nil
			a.UpdatedAt = s.stamp()
			n++
		}
	}
	return n, nil
}

// ClaimArticle moves the lowest-position pending article to generating.
func (s *Store) ClaimArticle(_ context.Context, pillarID uuid.UUID) (*models.PillarArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pick *models.PillarArticle
	for _, a := range s.articles {
		if a.Status != models.ArticlePending || !s.belongs(a, pillarID) {
			continue
		}
		if pick == nil || a.Position < pick.Position {
			pick = a
		}
	}
	if pick == nil {
		return nil, nil
	}
	pick.Status = models.ArticleGenerating
	pick.UpdatedAt = s.stamp()
	out := cloneArticle(pick)
	return &out, nil
}

// CompleteArticle marks a generating article completed and bumps its
// cluster's generated count, never past the article count.
func (s *Store) CompleteArticle(_ context.Context, articleID, postID uuid.UUID, slug string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[articleID]
	if !ok || a.Status != models.ArticleGenerating {
		return false, nil
	}
	a.Status = models.ArticleCompleted
	a.PostID = &postID
	a.Slug = &slug
	a.Error = nil
	a.UpdatedAt = s.stamp()
	if a.ClusterID != nil {
		if c, ok := s.clusters[*a.ClusterID]; ok && c.GeneratedCount < c.ArticleCount {
			c.GeneratedCount++
		}
	}
	return true, nil
}

// FailArticle marks a generating article failed with a reason.
func (s *Store) FailArticle(_ context.Context, articleID uuid.UUID, reason string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.articles[articleID]
	if !ok || a.Status != models.ArticleGenerating {
		return false, nil
	}
	a.Status = models.ArticleFailed
	a.Error = &reason
	a.UpdatedAt = s.stamp()
	return true, nil
}

// CountArticles returns the number of a pillar's articles per status.
func (s *Store) CountArticles(_ context.Context, pillarID uuid.UUID) (map[models.ArticleStatus]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[models.ArticleStatus]int)
	for _, a := range s.articles {
		if s.belongs(a, pillarID) {
			out[a.Status]++
		}
	}
	return out, nil
}
