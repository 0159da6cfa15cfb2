// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

func cloneBatch(b *models.KeywordBatch) *models.KeywordBatch {
	c := *b
	c.PillarID = ptrCopy(b.PillarID)
	c.ArticleRole = ptrCopy(b.ArticleRole)
	return &c
}

func cloneJob(j *models.KeywordJob) models.KeywordJob {
	c := *j
	c.PostID = ptrCopy(j.PostID)
	c.Error = ptrCopy(j.Error)
	return c
}

// CreateBatch stores the batch and one pending job per keyword.
func (s *Store) CreateBatch(_ context.Context, b *models.KeywordBatch, keywords []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.stamp()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.TotalKeywords = len(keywords)
	b.CreatedAt, b.UpdatedAt = now, now
	s.batches[b.ID] = cloneBatch(b)
	for i, k := range keywords {
		j := &models.KeywordJob{
			ID:        uuid.New(),
			BatchID:   b.ID,
			Keyword:   k,
			Position:  i,
			Status:    models.JobPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.jobs[j.ID] = j
	}
	return nil
}

// FindBatch returns a copy of the batch or nil.
func (s *Store) FindBatch(_ context.Context, id uuid.UUID) (*models.KeywordBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, nil
	}
	return cloneBatch(b), nil
}

// ListBatches returns the batches of a site, newest first.
func (s *Store) ListBatches(_ context.Context, siteID uuid.UUID, f models.BatchFilter) ([]models.KeywordBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.KeywordBatch
	for _, b := range s.batches {
		if b.SiteID != siteID || (f.Status != "" && b.Status != f.Status) {
			continue
		}
		if f.PillarID != nil && (b.PillarID == nil || *b.PillarID != *f.PillarID) {
			continue
		}
		out = append(out, *cloneBatch(b))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}

// ActiveBatches lists pending and processing batches of every site.
func (s *Store) ActiveBatches(_ context.Context) ([]models.KeywordBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.KeywordBatch
	for _, b := range s.batches {
		if b.Status.IsActive() {
			out = append(out, *cloneBatch(b))
		}
	}
	return out, nil
}

// ListJobs returns the jobs of a batch by position.
func (s *Store) ListJobs(_ context.Context, batchID uuid.UUID) ([]models.KeywordJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.KeywordJob
	for _, j := range s.jobs {
		if j.BatchID == batchID {
			out = append(out, cloneJob(j))
		}
	}
	sortByPosition(out, func(j models.KeywordJob) int { return j.Position })
	return out, nil
}

// QueueJobs moves pending and stale processing jobs to queued and a
// pending batch to processing.
func (s *Store) QueueJobs(_ context.Context, batchID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[batchID]
	if !ok || !b.Status.IsActive() {
		return 0, nil
	}
	now := s.stamp()
	n := 0
	for _, j := range s.jobs {
		if j.BatchID == batchID && (j.Status == models.JobPending || j.Status == models.JobProcessing) {
			j.Status = models.JobQueued
			j.UpdatedAt = now
			n++
		}
	}
	b.Status = models.BatchProcessing
	b.UpdatedAt = now
	return n, nil
}

// ClaimJob moves the lowest-position queued job to processing.
func (s *Store) ClaimJob(_ context.Context, batchID uuid.UUID) (*models.KeywordJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pick *models.KeywordJob
	for _, j := range s.jobs {
		if j.BatchID != batchID || j.Status != models.JobQueued {
			continue
		}
		if pick == nil || j.Position < pick.Position {
			pick = j
		}
	}
	if pick == nil {
		return nil, nil
	}
	pick.Status = models.JobProcessing
	pick.UpdatedAt = s.stamp()
	out := cloneJob(pick)
	return &out, nil
}

// activeJobs counts the active jobs of a batch. Caller holds mu.
func (s *Store) activeJobs(batchID uuid.UUID) int {
	n := 0
	for _, j := range s.jobs {
		if j.BatchID == batchID && j.Status.IsActive() {
			n++
		}
	}
	return n
}

// RecordJobOutcome finalizes a processing job and moves the batch
// counters and status under one lock.
func (s *Store) RecordJobOutcome(_ context.Context, jobID uuid.UUID, postID *uuid.UUID, errMsg string) (*models.KeywordBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobID]
	if !ok || j.Status != models.JobProcessing {
		return nil, nil
	}
	b, ok := s.batches[j.BatchID]
	if !ok {
		return nil, nil
	}

	now := s.stamp()
	if postID != nil {
		j.Status = models.JobCompleted
		j.PostID = ptrCopy(postID)
		b.SuccessCount++
	} else {
		j.Status = models.JobFailed
		j.Error = &errMsg
		b.FailedCount++
	}
	j.UpdatedAt = now
	b.ProcessedCount++
	b.Status = b.Settle(s.activeJobs(b.ID))
	b.UpdatedAt = now
	return cloneBatch(b), nil
}

// CancelBatch cancels an active batch with its pending and queued jobs.
func (s *Store) CancelBatch(_ context.Context, id uuid.UUID) (*models.KeywordBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok || !b.Status.IsActive() {
		return nil, nil
	}
	s.cancel(b)
	return cloneBatch(b), nil
}

// cancel flips a batch and its unclaimed jobs to cancelled. Caller holds mu.
func (s *Store) cancel(b *models.KeywordBatch) {
	now := s.stamp()
	b.Status = models.BatchCancelled
	b.UpdatedAt = now
	for _, j := range s.jobs {
		if j.BatchID == b.ID && (j.Status == models.JobPending || j.Status == models.JobQueued) {
			j.Status = models.JobCancelled
			j.UpdatedAt = now
		}
	}
}

// CancelPillarBatches cancels the active batches tied to a pillar.
func (s *Store) CancelPillarBatches(_ context.Context, pillarID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.batches {
		if b.PillarID != nil && *b.PillarID == pillarID && b.Status.IsActive() {
			s.cancel(b)
			n++
		}
	}
	return n, nil
}

// DeleteBatch removes an inactive batch and its jobs.
func (s *Store) DeleteBatch(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[id]
	if !ok || b.Status.IsActive() {
		return false, nil
	}
	for jid, j := range s.jobs {
		if j.BatchID == id {
			delete(s.jobs, jid)
		}
	}
	delete(s.batches, id)
	return true, nil
}
