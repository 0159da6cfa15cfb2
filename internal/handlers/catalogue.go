// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/itwrites/BlogViraliy-sub002/internal/pack"
)

// Packs handles GET /api/packs.
func (a *API) Packs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, list(pack.Catalogue()))
}

type providersResponse struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
}

type setProviderRequest struct {
	Name string `json:"name" validate:"required,max=32"`
}

// Providers handles GET /api/providers.
func (a *API) Providers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, providersResponse{
		Active:    a.providers.ActiveName(),
		Available: a.providers.Available(),
	})
}

// SetProvider handles PUT /api/providers/active. The provider must have an
// API key configured.
func (a *API) SetProvider(w http.ResponseWriter, r *http.Request) {
	var req setProviderRequest
	if !decode(w, r, &req, false) {
		return
	}
	if err := a.providers.SetActive(req.Name); err != nil {
		fail(w, r, err)
		return
	}
	a.Providers(w, r)
}
