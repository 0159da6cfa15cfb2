// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the planner.
package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSlugTaken is returned by post stores when a site already uses a slug.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrSourceTaken is returned by post stores when the article or job
	// already has a post.
	ErrSourceTaken = errors.New("source already has a post")
	// ErrUnknownSite is returned by stores that enforce site ownership when
	// the referenced site does not exist.
	ErrUnknownSite = errors.New("unknown site")
)

// ContentStatus represents the publishing state of a post.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
)

// Valid reports whether s is a known publishing state.
func (s ContentStatus) Valid() bool {
	return s == ContentStatusDraft || s == ContentStatusPublished
}

// Post is an article materialized from a generated draft. It records where
// it came from (a pillar article or a keyword job) so the planner can link
// back to it.
type Post struct {
	ID          uuid.UUID     `json:"id"`
	SiteID      uuid.UUID     `json:"site_id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Body        string        `json:"body"`
	Excerpt     *string       `json:"excerpt,omitempty"`
	Status      ContentStatus `json:"status"`
	ArticleRole *ArticleRole  `json:"article_role,omitempty"`
	PillarID    *uuid.UUID    `json:"pillar_id,omitempty"`
	BatchID     *uuid.UUID    `json:"batch_id,omitempty"`
	SourceID    *uuid.UUID    `json:"source_id,omitempty"` // article or job
	Language    string        `json:"language"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsPublished returns true if the post is in published status.
func (p *Post) IsPublished() bool {
	return p.Status == ContentStatusPublished
}
