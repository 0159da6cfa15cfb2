// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/lifecycle"
	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/pack"
	"github.com/itwrites/BlogViraliy-sub002/internal/planner"
)

type createPillarRequest struct {
	Name                 string `json:"name" validate:"required,max=200"`
	Description          string `json:"description" validate:"max=2000"`
	MasterPrompt         string `json:"master_prompt" validate:"max=10000"`
	TargetArticleCount   int    `json:"target_article_count" validate:"gt=0,lte=1000"`
	PublishSchedule      string `json:"publish_schedule" validate:"omitempty,oneof=daily weekly biweekly monthly"`
	Language             string `json:"language" validate:"omitempty,min=2,max=16"`
	DefaultPublishStatus string `json:"default_publish_status" validate:"omitempty,oneof=draft published"`
	PackType             string `json:"pack_type" validate:"required,max=64"`
	// CustomPack is either a JSON object or a string holding a YAML
	// document.
	CustomPack json.RawMessage `json:"custom_pack_config,omitempty"`
}

type regenerateRequest struct {
	TargetArticleCount *int `json:"target_article_count,omitempty" validate:"omitempty,gt=0,lte=1000"`
}

type resetRequest struct {
	Wipe bool `json:"wipe"`
}

// pillarDetail is a pillar with the actions its status allows.
type pillarDetail struct {
	*models.Pillar
	Actions []lifecycle.Action `json:"allowed_actions"`
}

// progressResponse adds the human summary to a progress snapshot. Terminal
// tells pollers they can stop.
type progressResponse struct {
	planner.Progress
	Summary  string `json:"summary"`
	Terminal bool   `json:"terminal"`
}

// customPack decodes the optional custom pack of a create request.
func customPack(raw json.RawMessage) (*models.CustomPackConfig, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '"' {
		var doc string
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &ValidationError{Field: "custom_pack_config", Reason: err.Error()}
		}
		raw = []byte(doc)
	}
	return pack.ParseCustom(raw)
}

// CreatePillar handles POST /api/sites/{siteID}/pillars.
func (a *API) CreatePillar(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathID(w, r, "siteID")
	if !ok {
		return
	}
	var req createPillarRequest
	if !decode(w, r, &req, false) {
		return
	}
	cp, err := customPack(req.CustomPack)
	if err != nil {
		fail(w, r, err)
		return
	}

	p, err := a.pillars.CreatePillar(r.Context(), &models.Pillar{
		SiteID:               siteID,
		Name:                 req.Name,
		Description:          req.Description,
		MasterPrompt:         req.MasterPrompt,
		TargetArticleCount:   req.TargetArticleCount,
		PublishSchedule:      models.PublishSchedule(req.PublishSchedule),
		Language:             req.Language,
		DefaultPublishStatus: models.ContentStatus(req.DefaultPublishStatus),
		PackType:             req.PackType,
		CustomPack:           cp,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ListPillars handles GET /api/sites/{siteID}/pillars.
func (a *API) ListPillars(w http.ResponseWriter, r *http.Request) {
	siteID, ok := pathID(w, r, "siteID")
	if !ok {
		return
	}
	limit, offset, err := page(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	pillars, err := a.pillars.ListPillars(r.Context(), siteID, models.PillarFilter{
		Status: models.PillarStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(pillars))
}

// GetPillar handles GET /api/pillars/{id}.
func (a *API) GetPillar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := a.pillars.GetPillar(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	actions := lifecycle.Allowed(p.Status)
	if actions == nil {
		actions = []lifecycle.Action{}
	}
	writeJSON(w, http.StatusOK, pillarDetail{Pillar: p, Actions: actions})
}

// DeletePillar handles DELETE /api/pillars/{id}.
func (a *API) DeletePillar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.pillars.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// pillarAction runs a service call that takes only the pillar id and
// responds with the resulting pillar.
func pillarAction(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) (*models.Pillar, error)) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := fn(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GenerateMap handles POST /api/pillars/{id}/map.
func (a *API) GenerateMap(w http.ResponseWriter, r *http.Request) {
	pillarAction(w, r, a.pillars.GenerateMap)
}

// RegenerateMap handles POST /api/pillars/{id}/regenerate. The body may
// carry a new target article count.
func (a *API) RegenerateMap(w http.ResponseWriter, r *http.Request) {
	var req regenerateRequest
	if !decode(w, r, &req, true) {
		return
	}
	pillarAction(w, r, func(ctx context.Context, id uuid.UUID) (*models.Pillar, error) {
		return a.pillars.RegenerateMap(ctx, id, req.TargetArticleCount)
	})
}

// Reset handles POST /api/pillars/{id}/reset. {"wipe": true} removes the
// whole tree instead of requeueing failed articles.
func (a *API) Reset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !decode(w, r, &req, true) {
		return
	}
	pillarAction(w, r, func(ctx context.Context, id uuid.UUID) (*models.Pillar, error) {
		return a.pillars.ResetMap(ctx, id, req.Wipe)
	})
}

// StartGeneration handles POST /api/pillars/{id}/start.
func (a *API) StartGeneration(w http.ResponseWriter, r *http.Request) {
	pillarAction(w, r, a.pillars.StartGeneration)
}

// Pause handles POST /api/pillars/{id}/pause.
func (a *API) Pause(w http.ResponseWriter, r *http.Request) {
	pillarAction(w, r, a.pillars.Pause)
}

// Progress handles GET /api/pillars/{id}/progress.
func (a *API) Progress(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := a.pillars.Progress(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progressResponse{
		Progress: p,
		Summary:  p.String(),
		Terminal: lifecycle.IsTerminal(p.Status),
	})
}

// Graph handles GET /api/pillars/{id}/graph.
func (a *API) Graph(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	g, err := a.pillars.Graph(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// Articles handles GET /api/pillars/{id}/articles with optional status,
// role and cluster_id filters.
func (a *API) Articles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	q := r.URL.Query()
	f := models.ArticleFilter{
		Status: models.ArticleStatus(q.Get("status")),
		Role:   models.ArticleRole(q.Get("role")),
	}
	if f.Role != "" && !f.Role.Valid() {
		fail(w, r, &ValidationError{Field: "role", Reason: "unknown article role"})
		return
	}
	if v := q.Get("cluster_id"); v != "" {
		cid, err := uuid.Parse(v)
		if err != nil {
			fail(w, r, &ValidationError{Field: "cluster_id", Reason: "must be a valid id"})
			return
		}
		f.ClusterID = &cid
	}

	articles, err := a.pillars.Articles(r.Context(), id, f)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list(articles))
}
