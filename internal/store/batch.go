// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// BatchStore handles keyword batches and their jobs.
type BatchStore struct {
	db *sql.DB
}

// NewBatchStore creates a new BatchStore with the given database connection.
func NewBatchStore(db *sql.DB) *BatchStore {
	return &BatchStore{db: db}
}

var batchColumns = []string{
	"id", "site_id", "pillar_id", "article_role", "master_prompt", "language",
	"total_keywords", "processed_count", "success_count", "failed_count",
	"status", "created_at", "updated_at",
}

const jobColumns = "id, batch_id, keyword, position, status, post_id, error, created_at, updated_at"

func scanBatch(row scanner) (*models.KeywordBatch, error) {
	b := &models.KeywordBatch{}
	err := row.Scan(
		&b.ID, &b.SiteID, &b.PillarID, &b.ArticleRole, &b.MasterPrompt, &b.Language,
		&b.TotalKeywords, &b.ProcessedCount, &b.SuccessCount, &b.FailedCount,
		&b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func collectBatches(rows *sql.Rows) ([]models.KeywordBatch, error) {
	defer rows.Close()
	var out []models.KeywordBatch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// CreateBatch inserts the batch and one pending job per keyword.
func (s *BatchStore) CreateBatch(ctx context.Context, b *models.KeywordBatch, keywords []string) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.TotalKeywords = len(keywords)

	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO keyword_batches (id, site_id, pillar_id, article_role, master_prompt,
			                             language, total_keywords, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at
		`, b.ID, b.SiteID, b.PillarID, b.ArticleRole, b.MasterPrompt,
			b.Language, b.TotalKeywords, b.Status,
		).Scan(&b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert batch: %w", siteError(err))
		}

		ins := psql.Insert("keyword_jobs").Columns("batch_id", "keyword", "position")
		for i, k := range keywords {
			ins = ins.Values(b.ID, k, i)
		}
		query, args, err := ins.ToSql()
		if err != nil {
			return fmt.Errorf("build job insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert jobs: %w", err)
		}
		return nil
	})
}

// FindBatch returns a batch by ID. Returns nil if not found.
func (s *BatchStore) FindBatch(ctx context.Context, id uuid.UUID) (*models.KeywordBatch, error) {
	b, err := scanBatch(s.db.QueryRowContext(ctx,
		"SELECT "+strings.Join(batchColumns, ", ")+" FROM keyword_batches WHERE id = $1", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find batch: %w", err)
	}
	return b, nil
}

// ListBatches returns the batches of a site, newest first.
func (s *BatchStore) ListBatches(ctx context.Context, siteID uuid.UUID, f models.BatchFilter) ([]models.KeywordBatch, error) {
	q := psql.Select(batchColumns...).From("keyword_batches").
		Where(sq.Eq{"site_id": siteID}).
		OrderBy("created_at DESC", "id")
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.PillarID != nil {
		q = q.Where(sq.Eq{"pillar_id": *f.PillarID})
	}
	query, args, err := paginate(q, f.Limit, f.Offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build batch list: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return collectBatches(rows)
}

// ActiveBatches lists pending and processing batches of every site.
func (s *BatchStore) ActiveBatches(ctx context.Context) ([]models.KeywordBatch, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+strings.Join(batchColumns, ", ")+
		" FROM keyword_batches WHERE status IN ('pending', 'processing') ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("active batches: %w", err)
	}
	return collectBatches(rows)
}

// ListJobs returns the jobs of a batch by position.
func (s *BatchStore) ListJobs(ctx context.Context, batchID uuid.UUID) ([]models.KeywordJob, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+jobColumns+" FROM keyword_jobs WHERE batch_id = $1 ORDER BY position", batchID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []models.KeywordJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func scanJob(row scanner) (*models.KeywordJob, error) {
	j := &models.KeywordJob{}
	err := row.Scan(&j.ID, &j.BatchID, &j.Keyword, &j.Position, &j.Status,
		&j.PostID, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// QueueJobs moves pending jobs and jobs left processing by a dead loop to
// queued, and the batch to processing.
func (s *BatchStore) QueueJobs(ctx context.Context, batchID uuid.UUID) (int, error) {
	queued := 0
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var status models.BatchStatus
		err := tx.QueryRowContext(ctx,
			"SELECT status FROM keyword_batches WHERE id = $1 FOR UPDATE", batchID).Scan(&status)
		if err == sql.ErrNoRows || (err == nil && !status.IsActive()) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("lock batch: %w", err)
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE keyword_jobs SET status = 'queued', updated_at = NOW()
			WHERE batch_id = $1 AND status IN ('pending', 'processing')
		`, batchID)
		if err != nil {
			return fmt.Errorf("queue jobs: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		queued = int(n)

		if _, err := tx.ExecContext(ctx,
			"UPDATE keyword_batches SET status = 'processing', updated_at = NOW() WHERE id = $1", batchID); err != nil {
			return fmt.Errorf("start batch: %w", err)
		}
		return nil
	})
	return queued, err
}

// ClaimJob moves the lowest-position queued job to processing.
func (s *BatchStore) ClaimJob(ctx context.Context, batchID uuid.UUID) (*models.KeywordJob, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx, `
		UPDATE keyword_jobs SET status = 'processing', updated_at = NOW()
		WHERE id = (
			SELECT id FROM keyword_jobs
			WHERE batch_id = $1 AND status = 'queued'
			ORDER BY position
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+jobColumns, batchID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	return j, nil
}

// RecordJobOutcome finalizes a processing job, bumps the batch counters and
// settles the batch status in one transaction. The batch row lock
// serializes concurrent outcomes, so exactly one of them sees zero active
// jobs and settles the batch.
func (s *BatchStore) RecordJobOutcome(ctx context.Context, jobID uuid.UUID, postID *uuid.UUID, errMsg string) (*models.KeywordBatch, error) {
	var out *models.KeywordBatch
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		status, success, failed := models.JobCompleted, 1, 0
		var errCol *string
		if postID == nil {
			status, success, failed = models.JobFailed, 0, 1
			errCol = &errMsg
		}

		var batchID uuid.UUID
		err := tx.QueryRowContext(ctx, `
			UPDATE keyword_jobs SET status = $2, post_id = $3, error = $4, updated_at = NOW()
			WHERE id = $1 AND status = 'processing'
			RETURNING batch_id
		`, jobID, status, postID, errCol).Scan(&batchID)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("finish job: %w", err)
		}

		b, err := scanBatch(tx.QueryRowContext(ctx, `
			UPDATE keyword_batches
			SET processed_count = processed_count + 1,
			    success_count = success_count + $2,
			    failed_count = failed_count + $3,
			    updated_at = NOW()
			WHERE id = $1
			RETURNING `+strings.Join(batchColumns, ", "), batchID, success, failed))
		if err != nil {
			return fmt.Errorf("bump batch counters: %w", err)
		}

		var active int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM keyword_jobs
			WHERE batch_id = $1 AND status IN ('pending', 'queued', 'processing')
		`, batchID).Scan(&active); err != nil {
			return fmt.Errorf("count active jobs: %w", err)
		}

		if next := b.Settle(active); next != b.Status {
			if _, err := tx.ExecContext(ctx,
				"UPDATE keyword_batches SET status = $2 WHERE id = $1", batchID, next); err != nil {
				return fmt.Errorf("settle batch: %w", err)
			}
			b.Status = next
		}
		out = b
		return nil
	})
	return out, err
}

// CancelBatch cancels an active batch with its pending and queued jobs.
// Returns nil if the batch is missing or already settled.
func (s *BatchStore) CancelBatch(ctx context.Context, id uuid.UUID) (*models.KeywordBatch, error) {
	var out *models.KeywordBatch
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		b, err := scanBatch(tx.QueryRowContext(ctx, `
			UPDATE keyword_batches SET status = 'cancelled', updated_at = NOW()
			WHERE id = $1 AND status IN ('pending', 'processing')
			RETURNING `+strings.Join(batchColumns, ", "), id))
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("cancel batch: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE keyword_jobs SET status = 'cancelled', updated_at = NOW()
			WHERE batch_id = $1 AND status IN ('pending', 'queued')
		`, id); err != nil {
			return fmt.Errorf("cancel jobs: %w", err)
		}
		out = b
		return nil
	})
	return out, err
}

// CancelPillarBatches cancels the active batches tied to a pillar.
func (s *BatchStore) CancelPillarBatches(ctx context.Context, pillarID uuid.UUID) (int, error) {
	cancelled := 0
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE keyword_batches SET status = 'cancelled', updated_at = NOW()
			WHERE pillar_id = $1 AND status IN ('pending', 'processing')
		`, pillarID)
		if err != nil {
			return fmt.Errorf("cancel pillar batches: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		cancelled = int(n)
		if n == 0 {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE keyword_jobs SET status = 'cancelled', updated_at = NOW()
			WHERE status IN ('pending', 'queued') AND batch_id IN (
				SELECT id FROM keyword_batches WHERE pillar_id = $1 AND status = 'cancelled'
			)
		`, pillarID); err != nil {
			return fmt.Errorf("cancel pillar jobs: %w", err)
		}
		return nil
	})
	return cancelled, err
}

// DeleteBatch removes an inactive batch; its jobs go with it through
// ON DELETE CASCADE.
func (s *BatchStore) DeleteBatch(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM keyword_batches WHERE id = $1 AND status NOT IN ('pending', 'processing')", id)
	if err != nil {
		return false, fmt.Errorf("delete batch: %w", err)
	}
	return affected(res)
}
