// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package batch tracks bulk keyword imports. A batch owns one job per
// keyword and aggregate counters that always satisfy
// processed == success + failed and processed <= total.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// MaxKeywords caps the size of a single batch.
const MaxKeywords = 500

var (
	ErrNoKeywords       = errors.New("batch has no keywords")
	ErrTooManyKeywords  = fmt.Errorf("batch exceeds %d keywords", MaxKeywords)
	ErrBatchActive      = errors.New("batch is still active")
	ErrBatchNotActive   = errors.New("batch is not active")
	ErrJobNotProcessing = errors.New("job is not processing")
	ErrNotFound         = errors.New("batch not found")
)

// Store persists batches and jobs. Lookups return (nil, nil) when the row
// does not exist. Every method that moves counters or statuses does so
// atomically.
type Store interface {
	CreateBatch(ctx context.Context, b *models.KeywordBatch, keywords []string) error
	FindBatch(ctx context.Context, id uuid.UUID) (*models.KeywordBatch, error)
	ListBatches(ctx context.Context, siteID uuid.UUID, f models.BatchFilter) ([]models.KeywordBatch, error)
	ListJobs(ctx context.Context, batchID uuid.UUID) ([]models.KeywordJob, error)
	// ActiveBatches lists pending and processing batches of every site.
	ActiveBatches(ctx context.Context) ([]models.KeywordBatch, error)

	// QueueJobs moves pending jobs and jobs left processing by a dead
	// loop to queued, and a pending batch to processing.
	QueueJobs(ctx context.Context, batchID uuid.UUID) (int, error)
	// ClaimJob moves the lowest-position queued job to processing.
	// Returns (nil, nil) when none is left.
	ClaimJob(ctx context.Context, batchID uuid.UUID) (*models.KeywordJob, error)
	// RecordJobOutcome finalizes a processing job, bumps the batch
	// counters and settles the batch status. postID != nil marks success.
	// Returns (nil, nil) when the job is not processing.
	RecordJobOutcome(ctx context.Context, jobID uuid.UUID, postID *uuid.UUID, errMsg string) (*models.KeywordBatch, error)
	// CancelBatch cancels an active batch and its pending and queued jobs.
	// Returns (nil, nil) when the batch is not active.
	CancelBatch(ctx context.Context, id uuid.UUID) (*models.KeywordBatch, error)
	// CancelPillarBatches cancels every active batch tied to a pillar.
	CancelPillarBatches(ctx context.Context, pillarID uuid.UUID) (int, error)
	// DeleteBatch removes an inactive batch and its jobs. Returns false
	// when the batch is missing or still active.
	DeleteBatch(ctx context.Context, id uuid.UUID) (bool, error)
}

// Options carries the batch-level generation settings.
type Options struct {
	SiteID       uuid.UUID
	PillarID     *uuid.UUID
	ArticleRole  *models.ArticleRole
	MasterPrompt string
	Language     string
}

// Outcome is the result of processing one job. A nil Err with a PostID is
// success; anything else is failure.
type Outcome struct {
	PostID *uuid.UUID
	Err    error
}

// Succeeded reports whether the outcome counts as a success.
func (o Outcome) Succeeded() bool {
	return o.Err == nil && o.PostID != nil
}

// Progress is a read-only snapshot of a batch.
type Progress struct {
	Status    models.BatchStatus `json:"status"`
	Total     int                `json:"total"`
	Processed int                `json:"processed"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
}

// String renders "N of M done, K failed".
func (p Progress) String() string {
	return fmt.Sprintf("%d of %d done, %d failed", p.Processed, p.Total, p.Failed)
}

// Service implements batch bookkeeping on top of a Store.
type Service struct {
	store Store
}

// NewService creates a batch service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// NormalizeKeywords trims keywords and drops blanks and case-insensitive
// duplicates, keeping first-seen order.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, k)
	}
	return out
}

// CreateBatch stores a pending batch with one pending job per keyword.
func (s *Service) CreateBatch(ctx context.Context, keywords []string, opts Options) (*models.KeywordBatch, error) {
	kws := NormalizeKeywords(keywords)
	if len(kws) == 0 {
		return nil, ErrNoKeywords
	}
	if len(kws) > MaxKeywords {
		return nil, ErrTooManyKeywords
	}
	if opts.ArticleRole != nil && !opts.ArticleRole.Valid() {
		return nil, fmt.Errorf("%w: unknown article role %q", models.ErrInvalidPillar, *opts.ArticleRole)
	}

	if opts.Language == "" {
		opts.Language = "en"
	}

	b := &models.KeywordBatch{
		SiteID:        opts.SiteID,
		PillarID:      opts.PillarID,
		ArticleRole:   opts.ArticleRole,
		MasterPrompt:  opts.MasterPrompt,
		Language:      opts.Language,
		TotalKeywords: len(kws),
		Status:        models.BatchPending,
	}
	if err := s.store.CreateBatch(ctx, b, kws); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}

	slog.Info("keyword batch created", "batch_id", b.ID, "site_id", b.SiteID, "keywords", b.TotalKeywords)
	return b, nil
}

// Get returns a batch or ErrNotFound.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.KeywordBatch, error) {
	b, err := s.store.FindBatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find batch: %w", err)
	}
	if b == nil {
		return nil, ErrNotFound
	}
	return b, nil
}

// List returns the batches of a site, newest first.
func (s *Service) List(ctx context.Context, siteID uuid.UUID, f models.BatchFilter) ([]models.KeywordBatch, error) {
	list, err := s.store.ListBatches(ctx, siteID, f)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return list, nil
}

// Jobs returns the jobs of a batch in position order.
func (s *Service) Jobs(ctx context.Context, id uuid.UUID) ([]models.KeywordJob, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	jobs, err := s.store.ListJobs(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// CancelBatch stops further dispatch. Jobs already processing finish and
// are still counted.
func (s *Service) CancelBatch(ctx context.Context, id uuid.UUID) (*models.KeywordBatch, error) {
	b, err := s.store.CancelBatch(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cancel batch: %w", err)
	}
	if b == nil {
		if _, err := s.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrBatchNotActive
	}
	slog.Info("keyword batch cancelled", "batch_id", id)
	return b, nil
}

// DeleteBatch removes a batch that is no longer active.
func (s *Service) DeleteBatch(ctx context.Context, id uuid.UUID) error {
	b, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if b.Status.IsActive() {
		return ErrBatchActive
	}
	ok, err := s.store.DeleteBatch(ctx, id)
	if err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if !ok {
		// Re-activated between the read and the delete.
		return ErrBatchActive
	}
	return nil
}

// RecordOutcome finalizes a job exactly once.
func (s *Service) RecordOutcome(ctx context.Context, jobID uuid.UUID, o Outcome) (*models.KeywordBatch, error) {
	var postID *uuid.UUID
	var msg string
	if o.Succeeded() {
		postID = o.PostID
	} else {
		msg = "generation returned no post"
		if o.Err != nil {
			msg = o.Err.Error()
		}
	}

	b, err := s.store.RecordJobOutcome(ctx, jobID, postID, msg)
	if err != nil {
		return nil, fmt.Errorf("record job outcome: %w", err)
	}
	if b == nil {
		return nil, ErrJobNotProcessing
	}
	if !b.Status.IsActive() && b.Status != models.BatchCancelled {
		slog.Info("keyword batch finished", "batch_id", b.ID, "status", b.Status,
			"succeeded", b.SuccessCount, "failed", b.FailedCount)
	}
	return b, nil
}

// Progress returns the counters of a batch.
func (s *Service) Progress(ctx context.Context, id uuid.UUID) (Progress, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return Progress{}, err
	}
	return Progress{
		Status:    b.Status,
		Total:     b.TotalKeywords,
		Processed: b.ProcessedCount,
		Succeeded: b.SuccessCount,
		Failed:    b.FailedCount,
	}, nil
}

// CancelForPillar cancels every active batch that targets a pillar.
func (s *Service) CancelForPillar(ctx context.Context, pillarID uuid.UUID) (int, error) {
	n, err := s.store.CancelPillarBatches(ctx, pillarID)
	if err != nil {
		return 0, fmt.Errorf("cancel pillar batches: %w", err)
	}
	if n > 0 {
		slog.Info("pillar batches cancelled", "pillar_id", pillarID, "count", n)
	}
	return n, nil
}
