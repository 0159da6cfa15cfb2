// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"testing"

	"github.com/itwrites/BlogViraliy-sub002/internal/ai"
	"github.com/itwrites/BlogViraliy-sub002/internal/pack"
)

func TestPacks(t *testing.T) {
	e := newTestEnv(t, false)
	rr := serve(e.api.Packs, http.MethodGet, "/api/packs", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	got := decodeAs[listResponse[pack.Definition]](t, rr)
	if got.Count != len(pack.Catalogue()) {
		t.Fatalf("packs: got %d, want %d", got.Count, len(pack.Catalogue()))
	}
	for _, d := range got.Items {
		if d.Key == "" || len(d.Shape) == 0 {
			t.Errorf("pack %q is incomplete", d.Key)
		}
	}
}

func TestProviders(t *testing.T) {
	e := newTestEnv(t, false)

	rr := serve(e.api.Providers, http.MethodGet, "/api/providers", "", nil)
	got := decodeAs[providersResponse](t, rr)
	if got.Active != ai.OfflineName || len(got.Available) != 1 {
		t.Errorf("providers: got %+v", got)
	}

	rr = serve(e.api.SetProvider, http.MethodPut, "/api/providers/active", `{"name":"openai"}`, nil)
	expectError(t, rr, http.StatusUnprocessableEntity, CodeValidation)

	rr = serve(e.api.SetProvider, http.MethodPut, "/api/providers/active", `{}`, nil)
	expectError(t, rr, http.StatusUnprocessableEntity, CodeValidation)

	rr = serve(e.api.SetProvider, http.MethodPut, "/api/providers/active", `{"name":"offline"}`, nil)
	if rr.Code != http.StatusOK {
		t.Errorf("set offline: status %d, body %s", rr.Code, rr.Body.String())
	}
}
