// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/batch"
	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

type createBatchRequest struct {
	Keywords     []string            `json:"keywords" validate:"dive,max=200"`
	PillarID     *uuid.UUID          `json:"pillar_id,omitempty"`
	ArticleRole  *models.ArticleRole `json:"article_role,omitempty"`
	MasterPrompt string              `json:"master_prompt" validate:"max=10000"`
	Language     string              `json:"language" validate:"omitempty,min=2,max=16"`
}

// batchResponse adds the human summary to a batch.
type batchResponse struct {
	*models.KeywordBatch
	Summary string `json:"summary"`
}

func newBatchResponse(b *models.KeywordBatch) batchResponse {
	p := batch.Progress{
		Status:    b.Status,
		Total:     b.TotalKeywords,
		Processed: b.ProcessedCount,
		Succeeded: b.SuccessCount,
		Failed:    b.FailedCount,
	}
	return batchResponse{KeywordBatch: b, Summary: p.String()}
}

// CreateBatch handles POST /api/sites/{siteID}/batches and starts the
// dispatch loop of the new batch.
func (a *API) CreateBatch(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathID(w, r, "siteID")
	if !ok {
		return
	}
	var req createBatchRequest
	if !decode(w, r, &req, false) {
		return
	}

	b, err := a.batches.CreateBatch(r.Context(), req.Keywords, batch.Options{
		SiteID:       siteID,
		PillarID:     req.PillarID,
		ArticleRole:  req.ArticleRole,
		MasterPrompt: req.MasterPrompt,
		Language:     req.Language,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	if a.runner != nil {
		a.runner.Start(b.ID)
	}
	writeJSON(w, http.StatusCreated, newBatchResponse(b))
}

// ListBatches handles GET /api/sites/{siteID}/batches with optional status
// and pillar_id filters.
func (a *API) ListBatches(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathID(w, r, "siteID")
	if !ok {
		return
	}
	limit, offset, err := page(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	f := models.BatchFilter{
		Status: models.BatchStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	}
	if v := r.URL.Query().Get("pillar_id"); v != "" {
		pid, err := uuid.Parse(v)
		if err != nil {
			fail(w, r, &ValidationError{Field: "pillar_id", Reason: "must be a valid id"})
			return
		}
		f.PillarID = &pid
	}

	batches, err := a.batches.List(r.Context(), siteID, f)
	if err != nil {
		fail(w, r, err)
		return
	}
	out := make([]batchResponse, len(batches))
	for i := range batches {
		out[i] = newBatchResponse(&batches[i])
	}
	writeJSON(w, http.StatusOK, list(out))
}

// GetBatch handles GET /api/batches/{id}.
func (a *API) GetBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b, err := a.batches.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBatchResponse(b))
}

// CancelBatch handles POST /api/batches/{id}/cancel.
func (a *API) CancelBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b, err := a.batches.CancelBatch(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBatchResponse(b))
}

// DeleteBatch handles DELETE /api/batches/{id}.
func (a *API) DeleteBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.batches.DeleteBatch(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Jobs handles GET /api/batches/{id}/jobs.
func (a *API) Jobs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	jobs, err := a.batches.Jobs(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(jobs))
}
