// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// BatchStatus is the aggregate state of a keyword batch.
type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
	BatchCancelled  BatchStatus = "cancelled"
)

// IsActive returns true while the batch may still dispatch work.
func (s BatchStatus) IsActive() bool {
	return s == BatchPending || s == BatchProcessing
}

// JobStatus is the state of a single keyword job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobCancelled  JobStatus = "cancelled"
)

// IsActive returns true for jobs that have not reached a final state.
func (s JobStatus) IsActive() bool {
	return s == JobPending || s == JobQueued || s == JobProcessing
}

// KeywordBatch groups the jobs of one bulk keyword import.
type KeywordBatch struct {
	ID             uuid.UUID    `json:"id"`
	SiteID         uuid.UUID    `json:"site_id"`
	PillarID       *uuid.UUID   `json:"pillar_id,omitempty"`
	ArticleRole    *ArticleRole `json:"article_role,omitempty"`
	MasterPrompt   string       `json:"master_prompt"`
	Language       string       `json:"language"`
	TotalKeywords  int          `json:"total_keywords"`
	ProcessedCount int          `json:"processed_count"`
	SuccessCount   int          `json:"success_count"`
	FailedCount    int          `json:"failed_count"`
	Status         BatchStatus  `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// KeywordJob is one unit of work inside a batch. A completed job maps to
// exactly one created post.
type KeywordJob struct {
	ID        uuid.UUID  `json:"id"`
	BatchID   uuid.UUID  `json:"batch_id"`
	Keyword   string     `json:"keyword"`
	Position  int        `json:"position"`
	Status    JobStatus  `json:"status"`
	PostID    *uuid.UUID `json:"post_id,omitempty"`
	Error     *string    `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Settle returns the status the batch should hold once the counters have
// moved, given how many of its jobs are still active. A cancelled batch
// stays cancelled; a batch whose every job has been recorded becomes
// completed, or failed when not a single job succeeded.
func (b *KeywordBatch) Settle(activeJobs int) BatchStatus {
	if b.Status == BatchCancelled || activeJobs > 0 || b.ProcessedCount < b.TotalKeywords {
		return b.Status
	}
	if b.SuccessCount == 0 {
		return BatchFailed
	}
	return BatchCompleted
}

// BatchFilter narrows batch listings.
type BatchFilter struct {
	Status   BatchStatus
	PillarID *uuid.UUID
	Limit    int
	Offset   int
}
