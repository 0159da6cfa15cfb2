// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// planner API. Reads are open; endpoints that start or change work sit
// behind the per-client rate limiter.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itwrites/BlogViraliy-sub002/internal/handlers"
	"github.com/itwrites/BlogViraliy-sub002/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. limiter may be nil to disable rate limiting.
func New(api *handlers.API, limiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	control := func(h http.HandlerFunc) http.Handler {
		if limiter == nil {
			return h
		}
		return limiter.Middleware(h)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/packs", api.Packs)

		r.Get("/providers", api.Providers)
		r.Method(http.MethodPut, "/providers/active", control(api.SetProvider))

		r.Route("/sites/{siteID}", func(r chi.Router) {
			r.Get("/pillars", api.ListPillars)
			r.Method(http.MethodPost, "/pillars", control(api.CreatePillar))
			r.Get("/batches", api.ListBatches)
			r.Method(http.MethodPost, "/batches", control(api.CreateBatch))
		})

		r.Route("/pillars/{id}", func(r chi.Router) {
			r.Get("/", api.GetPillar)
			r.Method(http.MethodDelete, "/", control(api.DeletePillar))
			r.Get("/progress", api.Progress)
			r.Get("/graph", api.Graph)
			r.Get("/articles", api.Articles)

			r.Method(http.MethodPost, "/map", control(api.GenerateMap))
			r.Method(http.MethodPost, "/regenerate", control(api.RegenerateMap))
			r.Method(http.MethodPost, "/reset", control(api.Reset))
			r.Method(http.MethodPost, "/start", control(api.StartGeneration))
			r.Method(http.MethodPost, "/pause", control(api.Pause))
		})

		r.Route("/batches/{id}", func(r chi.Router) {
			r.Get("/", api.GetBatch)
			r.Method(http.MethodDelete, "/", control(api.DeleteBatch))
			r.Get("/jobs", api.Jobs)
			r.Method(http.MethodPost, "/cancel", control(api.CancelBatch))
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
