// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package generation turns planned articles and batch keywords into posts.
// It builds prompts, calls the active AI provider, renders the Markdown
// answer and stores the result as a post with a unique slug.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/ai"
	"github.com/itwrites/BlogViraliy-sub002/internal/markdown"
	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/slug"
	"github.com/itwrites/BlogViraliy-sub002/internal/storage"
)

// ErrEmptyDraft is returned when the provider answers with nothing usable.
var ErrEmptyDraft = errors.New("generator returned an empty draft")

// DefaultTimeout bounds one provider call.
const DefaultTimeout = 2 * time.Minute

// PostStore persists generated posts.
type PostStore interface {
	CreatePost(ctx context.Context, p *models.Post) error
	FindPostBySource(ctx context.Context, sourceID uuid.UUID) (*models.Post, error)
	SlugExists(ctx context.Context, siteID uuid.UUID, slug string) (bool, error)
}

// Archiver keeps a copy of each stored draft's markdown source.
type Archiver interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
}

// Result is a rendered draft.
type Result struct {
	Title    string
	HTML     string
	Excerpt  string
	Markdown string
}

// Service writes content through an ai.Provider.
type Service struct {
	provider ai.Provider
	posts    PostStore
	archive  Archiver
	timeout  time.Duration
}

// NewService creates a generation service. A zero timeout uses
// DefaultTimeout.
func NewService(provider ai.Provider, posts PostStore, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{provider: provider, posts: posts, timeout: timeout}
}

// WithArchive makes the service upload every stored draft. Upload failures
// are logged and do not fail the article.
func (s *Service) WithArchive(a Archiver) *Service {
	s.archive = a
	return s
}

// Generate asks the provider for a draft and renders it.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.provider.Generate(ctx, SystemPrompt(), UserPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("generate %q: %w", req.Keyword, err)
	}
	raw = stripFences(raw)
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyDraft
	}

	doc, err := markdown.Render(raw)
	if err != nil {
		return nil, err
	}
	title := doc.Title
	if title == "" {
		title = req.Title
	}
	if title == "" {
		title = req.Keyword
	}
	return &Result{Title: title, HTML: doc.HTML, Excerpt: doc.Excerpt, Markdown: raw}, nil
}

// WriteArticle generates a planned article and stores it as a post.
func (s *Service) WriteArticle(ctx context.Context, p *models.Pillar, a *models.PillarArticle) (*models.Post, error) {
	if post, err := s.existing(ctx, a.ID); post != nil || err != nil {
		return post, err
	}
	keyword := a.Keyword
	if keyword == "" {
		keyword = strings.ToLower(p.Name)
	}
	res, err := s.Generate(ctx, Request{
		Title:        a.Title,
		Keyword:      keyword,
		Role:         a.Role,
		MasterPrompt: p.MasterPrompt,
		Language:     p.Language,
		PillarName:   p.Name,
	})
	if err != nil {
		return nil, err
	}

	role := a.Role
	pillarID := p.ID
	articleID := a.ID
	post := &models.Post{
		SiteID:      p.SiteID,
		Status:      p.DefaultPublishStatus,
		ArticleRole: &role,
		PillarID:    &pillarID,
		SourceID:    &articleID,
		Language:    p.Language,
	}
	if err := s.store(ctx, post, res); err != nil {
		return nil, err
	}
	return post, nil
}

// ProcessKeyword generates one batch keyword and stores it as a draft post.
func (s *Service) ProcessKeyword(ctx context.Context, b *models.KeywordBatch, job *models.KeywordJob) (uuid.UUID, error) {
	if post, err := s.existing(ctx, job.ID); post != nil || err != nil {
		if err != nil {
			return uuid.Nil, err
		}
		return post.ID, nil
	}
	role := models.RoleGeneral
	if b.ArticleRole != nil {
		role = *b.ArticleRole
	}
	res, err := s.Generate(ctx, Request{
		Keyword:      job.Keyword,
		Role:         role,
		MasterPrompt: b.MasterPrompt,
		Language:     b.Language,
	})
	if err != nil {
		return uuid.Nil, err
	}

	batchID := b.ID
	jobID := job.ID
	post := &models.Post{
		SiteID:      b.SiteID,
		Status:      models.ContentStatusDraft,
		ArticleRole: &role,
		PillarID:    b.PillarID,
		BatchID:     &batchID,
		SourceID:    &jobID,
		Language:    b.Language,
	}
	if err := s.store(ctx, post, res); err != nil {
		return uuid.Nil, err
	}
	return post.ID, nil
}

// existing returns the post an earlier attempt already stored for an
// article or job. A unit requeued after its outcome was lost reuses it.
func (s *Service) existing(ctx context.Context, sourceID uuid.UUID) (*models.Post, error) {
	post, err := s.posts.FindPostBySource(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("find existing post: %w", err)
	}
	if post != nil {
		slog.Info("reusing post stored by an earlier attempt", "source_id", sourceID, "post_id", post.ID)
	}
	return post, nil
}

// store picks a free slug and inserts the post. A slug claimed by a
// concurrent writer between the check and the insert is retried.
func (s *Service) store(ctx context.Context, post *models.Post, res *Result) error {
	post.Title = res.Title
	post.Body = res.HTML
	if post.Language == "" {
		post.Language = "en"
	}
	if post.Status == "" {
		post.Status = models.ContentStatusDraft
	}
	if res.Excerpt != "" {
		excerpt := res.Excerpt
		post.Excerpt = &excerpt
	}

	base := slug.Generate(res.Title)
	for attempt := 0; ; attempt++ {
		sl, err := slug.Unique(base, func(candidate string) (bool, error) {
			return s.posts.SlugExists(ctx, post.SiteID, candidate)
		})
		if err != nil {
			return fmt.Errorf("pick slug: %w", err)
		}
		post.Slug = sl
		err = s.posts.CreatePost(ctx, post)
		if errors.Is(err, models.ErrSlugTaken) && attempt < 3 {
			continue
		}
		if errors.Is(err, models.ErrSourceTaken) && post.SourceID != nil {
			prev, ferr := s.existing(ctx, *post.SourceID)
			if ferr != nil || prev == nil {
				return fmt.Errorf("create post: %w", err)
			}
			*post = *prev
			return nil
		}
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		s.archiveDraft(ctx, post, res)
		return nil
	}
}

func (s *Service) archiveDraft(ctx context.Context, post *models.Post, res *Result) {
	if s.archive == nil {
		return
	}
	key := storage.PostKey(post)
	if err := s.archive.Put(ctx, key, storage.MarkdownType, []byte(res.Markdown)); err != nil {
		slog.Warn("archive draft failed", "post_id", post.ID, "key", key, "error", err)
	}
}

// stripFences removes a ```markdown fence some models wrap answers in.
func stripFences(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return s
	}
	if i := strings.Index(t, "\n"); i >= 0 {
		t = t[i+1:]
	} else {
		return ""
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}
