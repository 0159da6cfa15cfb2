// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/itwrites/BlogViraliy-sub002/internal/layout"
	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

const espresso = `{"name":"Espresso Machines","target_article_count":7,"pack_type":"authority"}`

func TestCreatePillar(t *testing.T) {
	e := newTestEnv(t, false)
	p := e.createPillar(t, espresso)

	if p.Status != models.PillarDraft {
		t.Errorf("status: got %q, want draft", p.Status)
	}
	if p.SiteID != e.site {
		t.Errorf("site: got %s, want %s", p.SiteID, e.site)
	}
	if p.Language != "en" || p.PublishSchedule != models.ScheduleWeekly || p.DefaultPublishStatus != models.ContentStatusDraft {
		t.Errorf("defaults not applied: %+v", p)
	}
}

func TestCreatePillarCustomPackYAML(t *testing.T) {
	e := newTestEnv(t, false)
	body := `{"name":"Tea","target_article_count":4,"pack_type":"custom",` +
		`"custom_pack_config":"linking_rules:\n  - from_role: support\n    to_roles: [pillar]\n    anchor_pattern: \"{title}\"\n"}`
	p := e.createPillar(t, body)

	if p.CustomPack == nil || len(p.CustomPack.LinkingRules) != 1 {
		t.Fatalf("custom pack not parsed: %+v", p.CustomPack)
	}
	if got := p.CustomPack.LinkingRules[0].ToRoles; len(got) != 1 || got[0] != models.RolePillar {
		t.Errorf("to_roles: got %v", got)
	}
}

func TestCreatePillarInvalid(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing name", `{"target_article_count":3,"pack_type":"authority"}`, "name"},
		{"zero target", `{"name":"x","target_article_count":0,"pack_type":"authority"}`, "target_article_count"},
		{"bad schedule", `{"name":"x","target_article_count":3,"pack_type":"authority","publish_schedule":"hourly"}`, "publish_schedule"},
		{"bad publish status", `{"name":"x","target_article_count":3,"pack_type":"authority","default_publish_status":"live"}`, "default_publish_status"},
		{"custom without config", `{"name":"x","target_article_count":3,"pack_type":"custom"}`, "custom pack"},
		{"config without custom", `{"name":"x","target_article_count":3,"pack_type":"authority","custom_pack_config":{"linking_rules":[]}}`, "custom pack"},
		{"unknown role in rule", `{"name":"x","target_article_count":3,"pack_type":"custom","custom_pack_config":{"linking_rules":[{"from_role":"ghost","to_roles":["pillar"]}]}}`, "ghost"},
		{"malformed json", `{"name":`, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, false)
			rr := serve(e.api.CreatePillar, http.MethodPost, "/", tt.body,
				map[string]string{"siteID": e.site.String()})
			expectError(t, rr, http.StatusUnprocessableEntity, CodeValidation)
			if !strings.Contains(rr.Body.String(), tt.field) {
				t.Errorf("body %s does not mention %q", rr.Body.String(), tt.field)
			}
		})
	}
}

func TestListPillars(t *testing.T) {
	e := newTestEnv(t, false)
	for i := 0; i < 3; i++ {
		e.createPillar(t, espresso)
	}
	params := map[string]string{"siteID": e.site.String()}

	rr := serve(e.api.ListPillars, http.MethodGet, "/?limit=2", "", params)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	got := decodeAs[listResponse[models.Pillar]](t, rr)
	if got.Count != 2 || len(got.Items) != 2 {
		t.Errorf("page: got %d items, want 2", got.Count)
	}

	rr = serve(e.api.ListPillars, http.MethodGet, "/?status=mapped", "", params)
	if got := decodeAs[listResponse[models.Pillar]](t, rr); got.Count != 0 || got.Items == nil {
		t.Errorf("mapped filter: got %+v, want an empty list", got)
	}

	rr = serve(e.api.ListPillars, http.MethodGet, "/?limit=0", "", params)
	expectError(t, rr, http.StatusUnprocessableEntity, CodeValidation)
}

func TestPillarLifecycleOverHTTP(t *testing.T) {
	e := newTestEnv(t, false)
	p := e.createPillar(t, espresso)
	id := map[string]string{"id": p.ID.String()}

	// Generation needs a map first.
	rr := serve(e.api.StartGeneration, http.MethodPost, "/", "", id)
	expectError(t, rr, http.StatusConflict, CodeInvalidTransition)

	rr = serve(e.api.GenerateMap, http.MethodPost, "/", "", id)
	if rr.Code != http.StatusOK {
		t.Fatalf("map: status %d, body %s", rr.Code, rr.Body.String())
	}
	if got := decodeAs[models.Pillar](t, rr).Status; got != models.PillarMapped {
		t.Fatalf("after map: status %q", got)
	}

	rr = serve(e.api.Articles, http.MethodGet, "/", "", id)
	articles := decodeAs[listResponse[models.PillarArticle]](t, rr)
	if articles.Count != 7 {
		t.Fatalf("articles: got %d, want 7", articles.Count)
	}

	rr = serve(e.api.Articles, http.MethodGet, "/?role=pillar", "", id)
	if got := decodeAs[listResponse[models.PillarArticle]](t, rr); got.Count != 1 || !got.Items[0].IsHub() {
		t.Errorf("hub filter: got %+v", got)
	}

	rr = serve(e.api.Progress, http.MethodGet, "/", "", id)
	prog := decodeAs[progressResponse](t, rr)
	if prog.Summary != "0 of 7 done, 0 failed" || prog.Pending != 7 || prog.Terminal {
		t.Errorf("progress before start: %+v", prog)
	}

	rr = serve(e.api.StartGeneration, http.MethodPost, "/", "", id)
	if rr.Code != http.StatusOK {
		t.Fatalf("start: status %d, body %s", rr.Code, rr.Body.String())
	}
	e.pillars.Runner().Wait()

	rr = serve(e.api.Progress, http.MethodGet, "/", "", id)
	prog = decodeAs[progressResponse](t, rr)
	if prog.Status != models.PillarCompleted || prog.Completed != 7 || !prog.Terminal {
		t.Errorf("progress after run: %+v", prog)
	}

	rr = serve(e.api.Graph, http.MethodGet, "/", "", id)
	g := decodeAs[layout.Graph](t, rr)
	if len(g.Nodes) != 7 {
		t.Errorf("graph nodes: got %d, want 7", len(g.Nodes))
	}
	if len(g.Edges) == 0 {
		t.Error("graph has no edges")
	}

	// Completed pillars cannot be paused.
	rr = serve(e.api.Pause, http.MethodPost, "/", "", id)
	expectError(t, rr, http.StatusConflict, CodeInvalidTransition)
}

func TestGetPillarAllowedActions(t *testing.T) {
	e := newTestEnv(t, false)
	p := e.createPillar(t, espresso)
	id := map[string]string{"id": p.ID.String()}

	rr := serve(e.api.GetPillar, http.MethodGet, "/", "", id)
	if rr.Code != http.StatusOK {
		t.Fatalf("get: status %d", rr.Code)
	}
	got := decodeAs[struct {
		ID      string   `json:"id"`
		Actions []string `json:"allowed_actions"`
	}](t, rr)
	if got.ID != p.ID.String() {
		t.Errorf("id: got %q, want %s", got.ID, p.ID)
	}
	if len(got.Actions) != 1 || got.Actions[0] != "generate-map" {
		t.Errorf("draft actions: got %v, want [generate-map]", got.Actions)
	}
}

func TestRegenerateMap(t *testing.T) {
	e := newTestEnv(t, false)
	p := e.createPillar(t, espresso)
	id := map[string]string{"id": p.ID.String()}
	serve(e.api.GenerateMap, http.MethodPost, "/", "", id)

	rr := serve(e.api.RegenerateMap, http.MethodPost, "/", `{"target_article_count":0}`, id)
	expectError(t, rr, http.StatusUnprocessableEntity, CodeValidation)

	rr = serve(e.api.RegenerateMap, http.MethodPost, "/", `{"target_article_count":10}`, id)
	if rr.Code != http.StatusOK {
		t.Fatalf("regenerate: status %d, body %s", rr.Code, rr.Body.String())
	}
	if got := decodeAs[models.Pillar](t, rr).TargetArticleCount; got != 10 {
		t.Errorf("target: got %d, want 10", got)
	}

	// An empty body keeps the target.
	rr = serve(e.api.RegenerateMap, http.MethodPost, "/", "", id)
	if rr.Code != http.StatusOK {
		t.Fatalf("regenerate without body: status %d", rr.Code)
	}
	rr = serve(e.api.Articles, http.MethodGet, "/", "", id)
	if got := decodeAs[listResponse[models.PillarArticle]](t, rr).Count; got != 10 {
		t.Errorf("articles: got %d, want 10", got)
	}
}

func TestResetRequiresFailure(t *testing.T) {
	e := newTestEnv(t, false)
	p := e.createPillar(t, espresso)
	id := map[string]string{"id": p.ID.String()}

	rr := serve(e.api.Reset, http.MethodPost, "/", `{"wipe":true}`, id)
	expectError(t, rr, http.StatusConflict, CodeInvalidTransition)

	rr = serve(e.api.Reset, http.MethodPost, "/", `{"wipe":"yes"}`, id)
	expectError(t, rr, http.StatusUnprocessableEntity, CodeValidation)
}

func TestDeletePillar(t *testing.T) {
	e := newTestEnv(t, false)
	p := e.createPillar(t, espresso)
	id := map[string]string{"id": p.ID.String()}
	serve(e.api.GenerateMap, http.MethodPost, "/", "", id)

	rr := serve(e.api.DeletePillar, http.MethodDelete, "/", "", id)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rr.Code)
	}
	if pillars, clusters, articles := e.store.Counts(); pillars+clusters+articles != 0 {
		t.Errorf("leftovers: %d pillars, %d clusters, %d articles", pillars, clusters, articles)
	}

	rr = serve(e.api.GetPillar, http.MethodGet, "/", "", id)
	expectError(t, rr, http.StatusNotFound, CodeNotFound)
	rr = serve(e.api.DeletePillar, http.MethodDelete, "/", "", id)
	expectError(t, rr, http.StatusNotFound, CodeNotFound)
}

func TestArticlesInvalidFilters(t *testing.T) {
	e := newTestEnv(t, false)
	p := e.createPillar(t, espresso)
	id := map[string]string{"id": p.ID.String()}

	for _, q := range []string{"/?role=ghost", "/?cluster_id=nope"} {
		rr := serve(e.api.Articles, http.MethodGet, q, "", id)
		expectError(t, rr, http.StatusUnprocessableEntity, CodeValidation)
	}
}
