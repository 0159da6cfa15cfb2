// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// PostStore handles the posts materialized from generated drafts.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// CreatePost inserts a post and fills its ID and timestamps. A slug already
// used on the site yields models.ErrSlugTaken, a source that already has a
// post yields models.ErrSourceTaken.
func (s *PostStore) CreatePost(ctx context.Context, p *models.Post) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.IsPublished() && p.PublishedAt == nil {
		now := time.Now()
		p.PublishedAt = &now
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (id, site_id, title, slug, body, excerpt, status,
		                   article_role, pillar_id, batch_id, source_id, language, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`, p.ID, p.SiteID, p.Title, p.Slug, p.Body, p.Excerpt, p.Status,
		p.ArticleRole, p.PillarID, p.BatchID, p.SourceID, p.Language, p.PublishedAt,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if pgCode(err) == codeUniqueViolation {
		if pgConstraint(err) == "posts_source_unique" {
			return models.ErrSourceTaken
		}
		return models.ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("insert post: %w", siteError(err))
	}
	return nil
}

const postColumns = `id, site_id, title, slug, body, excerpt, status, article_role,
		pillar_id, batch_id, source_id, language, published_at, created_at, updated_at`

func scanPost(row scanner) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(
		&p.ID, &p.SiteID, &p.Title, &p.Slug, &p.Body, &p.Excerpt, &p.Status, &p.ArticleRole,
		&p.PillarID, &p.BatchID, &p.SourceID, &p.Language, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// FindPost returns a post by ID. Returns nil if not found.
func (s *PostStore) FindPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = $1", id))
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

// FindPostBySource returns the post generated for an article or job.
// Returns nil if there is none.
func (s *PostStore) FindPostBySource(ctx context.Context, sourceID uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE source_id = $1", sourceID))
	if err != nil {
		return nil, fmt.Errorf("find post by source: %w", err)
	}
	return p, nil
}

// SlugExists reports whether a site already has a post with slug.
func (s *PostStore) SlugExists(ctx context.Context, siteID uuid.UUID, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM posts WHERE site_id = $1 AND slug = $2)", siteID, slug,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return exists, nil
}
