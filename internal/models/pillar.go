// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidPillar is returned when pillar attributes break a model invariant.
var ErrInvalidPillar = errors.New("invalid pillar")

// PillarStatus is the lifecycle state of a pillar.
type PillarStatus string

const (
	PillarDraft      PillarStatus = "draft"
	PillarMapping    PillarStatus = "mapping"
	PillarMapped     PillarStatus = "mapped"
	PillarGenerating PillarStatus = "generating"
	PillarPaused     PillarStatus = "paused"
	PillarCompleted  PillarStatus = "completed"
	PillarFailed     PillarStatus = "failed"
)

// PublishSchedule is the cadence at which generated articles are published.
type PublishSchedule string

const (
	ScheduleDaily    PublishSchedule = "daily"
	ScheduleWeekly   PublishSchedule = "weekly"
	ScheduleBiweekly PublishSchedule = "biweekly"
	ScheduleMonthly  PublishSchedule = "monthly"
)

// PackCustom is the pack type whose rules are authored by the tenant and
// stored on the pillar itself.
const PackCustom = "custom"

// LinkingRule reads as "articles of FromRole should link to one article of
// each role in ToRoles, using anchor text matching AnchorPattern".
type LinkingRule struct {
	FromRole      ArticleRole   `json:"from_role" yaml:"from_role"`
	ToRoles       []ArticleRole `json:"to_roles" yaml:"to_roles"`
	AnchorPattern string        `json:"anchor_pattern" yaml:"anchor_pattern"`
}

// CustomPackConfig is the tenant-authored rule set of a custom pack.
type CustomPackConfig struct {
	Name         string        `json:"name,omitempty" yaml:"name"`
	LinkingRules []LinkingRule `json:"linking_rules" yaml:"linking_rules"`
}

// Validate checks that every rule names known roles and at least one target.
func (c *CustomPackConfig) Validate() error {
	for i, r := range c.LinkingRules {
		if !r.FromRole.Valid() {
			return fmt.Errorf("%w: rule %d: unknown from_role %q", ErrInvalidPillar, i, r.FromRole)
		}
		if len(r.ToRoles) == 0 {
			return fmt.Errorf("%w: rule %d: to_roles is empty", ErrInvalidPillar, i)
		}
		for _, to := range r.ToRoles {
			if !to.Valid() {
				return fmt.Errorf("%w: rule %d: unknown to_role %q", ErrInvalidPillar, i, to)
			}
		}
	}
	return nil
}

// Pillar is the hub topic of a content tree. One pillar owns many clusters,
// and through them the planned articles.
type Pillar struct {
	ID                   uuid.UUID         `json:"id"`
	SiteID               uuid.UUID         `json:"site_id"`
	Name                 string            `json:"name"`
	Description          string            `json:"description"`
	MasterPrompt         string            `json:"master_prompt"`
	TargetArticleCount   int               `json:"target_article_count"`
	PublishSchedule      PublishSchedule   `json:"publish_schedule"`
	Language             string            `json:"language"`
	DefaultPublishStatus ContentStatus     `json:"default_publish_status"`
	PackType             string            `json:"pack_type"`
	CustomPack           *CustomPackConfig `json:"custom_pack_config,omitempty"`
	Status               PillarStatus      `json:"status"`
	LastError            *string           `json:"last_error,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// IsCustomPack returns true if the pillar uses a tenant-authored pack.
func (p *Pillar) IsCustomPack() bool {
	return p.PackType == PackCustom
}

// Validate enforces the pillar invariants that do not depend on storage:
// a name, a positive target and a custom pack config iff the pack is custom.
func (p *Pillar) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPillar)
	}
	if p.TargetArticleCount <= 0 {
		return fmt.Errorf("%w: target article count must be positive", ErrInvalidPillar)
	}
	if p.PackType == "" {
		return fmt.Errorf("%w: pack type is required", ErrInvalidPillar)
	}
	if p.IsCustomPack() != (p.CustomPack != nil) {
		return fmt.Errorf("%w: custom pack config must be set iff pack type is %q", ErrInvalidPillar, PackCustom)
	}
	if p.CustomPack != nil {
		return p.CustomPack.Validate()
	}
	return nil
}

// Cluster is a thematic grouping of articles under a pillar.
type Cluster struct {
	ID             uuid.UUID `json:"id"`
	PillarID       uuid.UUID `json:"pillar_id"`
	Name           string    `json:"name"`
	Position       int       `json:"position"`
	ArticleCount   int       `json:"article_count"`
	GeneratedCount int       `json:"generated_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// ArticleStatus is the generation state of a planned article.
type ArticleStatus string

const (
	ArticlePending    ArticleStatus = "pending"
	ArticleGenerating ArticleStatus = "generating"
	ArticleCompleted  ArticleStatus = "completed"
	ArticleFailed     ArticleStatus = "failed"
	ArticleSkipped    ArticleStatus = "skipped"
)

// IsResolved returns true once the article will not be dispatched again.
func (s ArticleStatus) IsResolved() bool {
	return s == ArticleCompleted || s == ArticleFailed || s == ArticleSkipped
}

// PillarArticle is a planned or realized content unit. The hub article is
// parented by the pillar; every other article by exactly one cluster.
type PillarArticle struct {
	ID          uuid.UUID     `json:"id"`
	PillarID    *uuid.UUID    `json:"pillar_id,omitempty"`
	ClusterID   *uuid.UUID    `json:"cluster_id,omitempty"`
	Title       string        `json:"title"`
	Keyword     string        `json:"keyword"`
	Role        ArticleRole   `json:"article_role"`
	Status      ArticleStatus `json:"status"`
	Position    int           `json:"position"`
	ArticleType *string       `json:"article_type,omitempty"`
	Slug        *string       `json:"slug,omitempty"`
	PostID      *uuid.UUID    `json:"post_id,omitempty"`
	Error       *string       `json:"error,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// IsHub returns true for the pillar-role article parented by the pillar.
func (a *PillarArticle) IsHub() bool {
	return a.Role == RolePillar && a.PillarID != nil
}

// PillarFilter narrows pillar listings.
type PillarFilter struct {
	Status PillarStatus
	Limit  int
	Offset int
}

// ArticleFilter narrows article listings of one pillar.
type ArticleFilter struct {
	Status    ArticleStatus
	Role      ArticleRole
	ClusterID *uuid.UUID
}
