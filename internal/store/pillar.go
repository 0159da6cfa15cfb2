// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/topology"
)

// PillarStore handles pillars, clusters and pillar articles.
type PillarStore struct {
	db *sql.DB
}

// NewPillarStore creates a new PillarStore with the given database connection.
func NewPillarStore(db *sql.DB) *PillarStore {
	return &PillarStore{db: db}
}

var pillarColumns = []string{
	"id", "site_id", "name", "description", "master_prompt",
	"target_article_count", "publish_schedule", "language",
	"default_publish_status", "pack_type", "custom_pack_config",
	"status", "last_error", "created_at", "updated_at",
}

var clusterColumns = "id, pillar_id, name, position, article_count, generated_count, created_at"

var articleColumns = []string{
	"id", "pillar_id", "cluster_id", "title", "keyword", "article_role",
	"status", "position", "article_type", "slug", "post_id", "error",
	"created_at", "updated_at",
}

// inPillar matches the hub and every cluster article of a pillar. It binds
// the pillar ID twice.
const inPillar = "(pillar_id = ? OR cluster_id IN (SELECT id FROM clusters WHERE pillar_id = ?))"

// inPillarArg is inPillar with a single $1 placeholder, for raw SQL.
const inPillarArg = "(pillar_id = $1 OR cluster_id IN (SELECT id FROM clusters WHERE pillar_id = $1))"

func scanPillar(row scanner) (*models.Pillar, error) {
	p := &models.Pillar{}
	var custom []byte
	err := row.Scan(
		&p.ID, &p.SiteID, &p.Name, &p.Description, &p.MasterPrompt,
		&p.TargetArticleCount, &p.PublishSchedule, &p.Language,
		&p.DefaultPublishStatus, &p.PackType, &custom,
		&p.Status, &p.LastError, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(custom) > 0 {
		p.CustomPack = &models.CustomPackConfig{}
		if err := json.Unmarshal(custom, p.CustomPack); err != nil {
			return nil, fmt.Errorf("decode custom pack of pillar %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func scanArticle(row scanner) (*models.PillarArticle, error) {
	a := &models.PillarArticle{}
	err := row.Scan(
		&a.ID, &a.PillarID, &a.ClusterID, &a.Title, &a.Keyword, &a.Role,
		&a.Status, &a.Position, &a.ArticleType, &a.Slug, &a.PostID, &a.Error,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func collectPillars(rows *sql.Rows) ([]models.Pillar, error) {
	defer rows.Close()
	var out []models.Pillar
	for rows.Next() {
		p, err := scanPillar(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pillar: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CreatePillar inserts p and fills its ID and timestamps.
func (s *PillarStore) CreatePillar(ctx context.Context, p *models.Pillar) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	var custom []byte
	if p.CustomPack != nil {
		b, err := json.Marshal(p.CustomPack)
		if err != nil {
			return fmt.Errorf("encode custom pack: %w", err)
		}
		custom = b
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO pillars (id, site_id, name, description, master_prompt,
		                     target_article_count, publish_schedule, language,
		                     default_publish_status, pack_type, custom_pack_config,
		                     status, last_error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`, p.ID, p.SiteID, p.Name, p.Description, p.MasterPrompt,
		p.TargetArticleCount, p.PublishSchedule, p.Language,
		p.DefaultPublishStatus, p.PackType, custom,
		p.Status, p.LastError,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert pillar: %w", siteError(err))
	}
	return nil
}

// FindPillar returns a pillar by ID. Returns nil if not found.
func (s *PillarStore) FindPillar(ctx context.Context, id uuid.UUID) (*models.Pillar, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+strings.Join(pillarColumns, ", ")+" FROM pillars WHERE id = $1", id)
	p, err := scanPillar(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find pillar: %w", err)
	}
	return p, nil
}

// ListPillars returns the pillars of a site, newest first.
func (s *PillarStore) ListPillars(ctx context.Context, siteID uuid.UUID, f models.PillarFilter) ([]models.Pillar, error) {
	q := psql.Select(pillarColumns...).From("pillars").
		Where(sq.Eq{"site_id": siteID}).
		OrderBy("created_at DESC", "id")
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	query, args, err := paginate(q, f.Limit, f.Offset).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pillar list: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pillars: %w", err)
	}
	return collectPillars(rows)
}

// PillarsInStatus lists the pillars of every site in one status.
func (s *PillarStore) PillarsInStatus(ctx context.Context, status models.PillarStatus) ([]models.Pillar, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+strings.Join(pillarColumns, ", ")+" FROM pillars WHERE status = $1 ORDER BY updated_at", status)
	if err != nil {
		return nil, fmt.Errorf("pillars in status: %w", err)
	}
	return collectPillars(rows)
}

// SetPillarStatus moves a pillar from one status to another only if it is
// still in from. Reports whether the swap happened.
func (s *PillarStore) SetPillarStatus(ctx context.Context, id uuid.UUID, from, to models.PillarStatus, lastError *string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pillars SET status = $3, last_error = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to, lastError)
	if err != nil {
		return false, fmt.Errorf("set pillar status: %w", err)
	}
	return affected(res)
}

// SetPillarTarget updates the target article count.
func (s *PillarStore) SetPillarTarget(ctx context.Context, id uuid.UUID, target int) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE pillars SET target_article_count = $2, updated_at = NOW() WHERE id = $1", id, target)
	if err != nil {
		return fmt.Errorf("set pillar target: %w", err)
	}
	return nil
}

// DeletePillar removes a pillar. Clusters and articles go with it through
// ON DELETE CASCADE; batches and posts keep their rows and lose the link.
func (s *PillarStore) DeletePillar(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM pillars WHERE id = $1", id)
	if err != nil {
		return false, fmt.Errorf("delete pillar: %w", err)
	}
	return affected(res)
}

// WipeMap removes every cluster and article of a pillar.
func (s *PillarStore) WipeMap(ctx context.Context, pillarID uuid.UUID) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM pillar_articles WHERE pillar_id = $1", pillarID); err != nil {
			return fmt.Errorf("delete hub: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM clusters WHERE pillar_id = $1", pillarID); err != nil {
			return fmt.Errorf("delete clusters: %w", err)
		}
		return nil
	})
}

// ListClusters returns the clusters of a pillar by position.
func (s *PillarStore) ListClusters(ctx context.Context, pillarID uuid.UUID) ([]models.Cluster, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+clusterColumns+" FROM clusters WHERE pillar_id = $1 ORDER BY position", pillarID)
	if err != nil {
		return nil, fmt.Errorf("list clusters: %w", err)
	}
	defer rows.Close()

	var out []models.Cluster
	for rows.Next() {
		var c models.Cluster
		if err := rows.Scan(&c.ID, &c.PillarID, &c.Name, &c.Position,
			&c.ArticleCount, &c.GeneratedCount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cluster: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListArticles returns the hub and cluster articles of a pillar by
// position.
func (s *PillarStore) ListArticles(ctx context.Context, pillarID uuid.UUID, f models.ArticleFilter) ([]models.PillarArticle, error) {
	q := psql.Select(articleColumns...).From("pillar_articles").
		Where(sq.Expr(inPillar, pillarID, pillarID)).
		OrderBy("position", "id")
	if f.Status != "" {
		q = q.Where(sq.Eq{"status": f.Status})
	}
	if f.Role != "" {
		q = q.Where(sq.Eq{"article_role": f.Role})
	}
	if f.ClusterID != nil {
		q = q.Where(sq.Eq{"cluster_id": *f.ClusterID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article list: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var out []models.PillarArticle
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// SaveSkeleton inserts the hub, new clusters and new articles and grows
// existing clusters in one transaction.
func (s *PillarStore) SaveSkeleton(ctx context.Context, pillarID uuid.UUID, sk *topology.Skeleton) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		// Serialize concurrent planning runs on the same pillar.
		if _, err := tx.ExecContext(ctx, "SELECT 1 FROM pillars WHERE id = $1 FOR UPDATE", pillarID); err != nil {
			return fmt.Errorf("lock pillar: %w", err)
		}

		if sk.Hub != nil {
			if err := insertArticles(ctx, tx, []models.PillarArticle{*sk.Hub}); err != nil {
				return fmt.Errorf("insert hub: %w", err)
			}
		}

		if len(sk.Clusters) > 0 {
			ins := psql.Insert("clusters").Columns("id", "pillar_id", "name", "position", "article_count")
			for _, c := range sk.Clusters {
				ins = ins.Values(c.ID, pillarID, c.Name, c.Position, c.ArticleCount)
			}
			query, args, err := ins.ToSql()
			if err != nil {
				return fmt.Errorf("build cluster insert: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert clusters: %w", err)
			}
		}

		for id, n := range sk.Grown {
			if _, err := tx.ExecContext(ctx,
				"UPDATE clusters SET article_count = article_count + $2 WHERE id = $1 AND pillar_id = $3",
				id, n, pillarID); err != nil {
				return fmt.Errorf("grow cluster: %w", err)
			}
		}

		if err := insertArticles(ctx, tx, sk.Articles); err != nil {
			return fmt.Errorf("insert articles: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "UPDATE pillars SET updated_at = NOW() WHERE id = $1", pillarID); err != nil {
			return fmt.Errorf("touch pillar: %w", err)
		}
		return nil
	})
}

func insertArticles(ctx context.Context, tx *sql.Tx, articles []models.PillarArticle) error {
	if len(articles) == 0 {
		return nil
	}
	ins := psql.Insert("pillar_articles").Columns(
		"id", "pillar_id", "cluster_id", "title", "keyword", "article_role",
		"status", "position", "article_type",
	)
	for _, a := range articles {
		ins = ins.Values(a.ID, a.PillarID, a.ClusterID, a.Title, a.Keyword, a.Role,
			a.Status, a.Position, a.ArticleType)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build article insert: %w", err)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// RequeueArticles moves a pillar's articles in status from back to pending.
func (s *PillarStore) RequeueArticles(ctx context.Context, pillarID uuid.UUID, from models.ArticleStatus) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pillar_articles SET status = 'pending', error = NULL, updated_at = NOW()
		WHERE status = $2 AND `+inPillarArg, pillarID, from)
	if err != nil {
		return 0, fmt.Errorf("requeue articles: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// ClaimArticle moves the lowest-position pending article to generating.
// Concurrent claimers skip rows another transaction holds.
func (s *PillarStore) ClaimArticle(ctx context.Context, pillarID uuid.UUID) (*models.PillarArticle, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE pillar_articles SET status = 'generating', updated_at = NOW()
		WHERE id = (
			SELECT id FROM pillar_articles
			WHERE status = 'pending' AND `+inPillarArg+`
			ORDER BY position, id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+strings.Join(articleColumns, ", "), pillarID)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim article: %w", err)
	}
	return a, nil
}

// CompleteArticle marks a generating article completed and bumps its
// cluster's generated count, never past the article count.
func (s *PillarStore) CompleteArticle(ctx context.Context, articleID, postID uuid.UUID, slug string) (bool, error) {
	done := false
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var clusterID *uuid.UUID
		err := tx.QueryRowContext(ctx, `
			UPDATE pillar_articles
			SET status = 'completed', post_id = $2, slug = $3, error = NULL, updated_at = NOW()
			WHERE id = $1 AND status = 'generating'
			RETURNING cluster_id
		`, articleID, postID, slug).Scan(&clusterID)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("complete article: %w", err)
		}
		done = true
		if clusterID == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE clusters SET generated_count = generated_count + 1
			WHERE id = $1 AND generated_count < article_count
		`, *clusterID); err != nil {
			return fmt.Errorf("bump cluster: %w", err)
		}
		return nil
	})
	return done, err
}

// FailArticle marks a generating article failed with a reason.
func (s *PillarStore) FailArticle(ctx context.Context, articleID uuid.UUID, reason string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pillar_articles SET status = 'failed', error = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'generating'
	`, articleID, reason)
	if err != nil {
		return false, fmt.Errorf("fail article: %w", err)
	}
	return affected(res)
}

// CountArticles returns the number of a pillar's articles per status.
func (s *PillarStore) CountArticles(ctx context.Context, pillarID uuid.UUID) (map[models.ArticleStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM pillar_articles WHERE "+inPillarArg+" GROUP BY status", pillarID)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}
	defer rows.Close()

	out := make(map[models.ArticleStatus]int)
	for rows.Next() {
		var st models.ArticleStatus
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, fmt.Errorf("scan article count: %w", err)
		}
		out[st] = n
	}
	return out, rows.Err()
}
