// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package memstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// CreatePost stores a post, assigning its ID and timestamps.
func (s *Store) CreatePost(_ context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.posts {
		if other.SiteID == p.SiteID && other.Slug == p.Slug {
			return models.ErrSlugTaken
		}
		if p.SourceID != nil && other.SourceID != nil && *other.SourceID == *p.SourceID {
			return models.ErrSourceTaken
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.stamp()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.IsPublished() && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
	c := *p
	s.posts[p.ID] = &c
	return nil
}

// FindPost returns a copy of the post or nil.
func (s *Store) FindPost(_ context.Context, id uuid.UUID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

// FindPostBySource returns a copy of the post generated for an article or
// job, or nil.
func (s *Store) FindPostBySource(_ context.Context, sourceID uuid.UUID) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.SourceID != nil && *p.SourceID == sourceID {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

// SlugExists reports whether a site already has a post with slug.
func (s *Store) SlugExists(_ context.Context, siteID uuid.UUID, slug string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.SiteID == siteID && p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}
