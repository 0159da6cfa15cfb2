// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers of the planner API.
// Handlers are grouped by concern (pillars, batches, catalogue) and
// receive their dependencies through the API struct.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/ai"
	"github.com/itwrites/BlogViraliy-sub002/internal/batch"
	"github.com/itwrites/BlogViraliy-sub002/internal/lifecycle"
	"github.com/itwrites/BlogViraliy-sub002/internal/models"
	"github.com/itwrites/BlogViraliy-sub002/internal/planner"
	"github.com/itwrites/BlogViraliy-sub002/internal/topology"
)

// Error codes of the API error envelope.
const (
	CodeValidation        = "validation_failed"
	CodeInvalidTransition = "invalid_transition"
	CodeBatchActive       = "batch_active"
	CodeBatchNotActive    = "batch_not_active"
	CodeNotFound          = "not_found"
	CodeInternal          = "internal"
)

// Listing bounds.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// maxBodyBytes caps request bodies. A full keyword batch fits comfortably.
const maxBodyBytes = 1 << 20

// BatchStarter launches the dispatch loop of a new batch.
type BatchStarter interface {
	Start(batchID uuid.UUID)
}

// API groups the planner HTTP handlers and their dependencies.
type API struct {
	pillars   *planner.Service
	batches   *batch.Service
	runner    BatchStarter
	providers *ai.Registry
}

// NewAPI creates the handler group. providers may be nil, in which case
// the provider endpoints report only the offline provider.
func NewAPI(pillars *planner.Service, batches *batch.Service, runner BatchStarter, providers *ai.Registry) *API {
	if providers == nil {
		providers = ai.NewRegistry(ai.OfflineName, nil)
	}
	return &API{
		pillars:   pillars,
		batches:   batches,
		runner:    runner,
		providers: providers,
	}
}

// listResponse wraps every collection the API returns.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func list[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Count: len(items)}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// fail maps a service error to the API error envelope. Unknown errors are
// logged and reported without detail.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, verr.Error())
	case errors.Is(err, planner.ErrNotFound), errors.Is(err, batch.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		writeError(w, http.StatusConflict, CodeInvalidTransition, err.Error())
	case errors.Is(err, batch.ErrBatchActive):
		writeError(w, http.StatusConflict, CodeBatchActive, err.Error())
	case errors.Is(err, batch.ErrBatchNotActive):
		writeError(w, http.StatusConflict, CodeBatchNotActive, err.Error())
	case errors.Is(err, models.ErrInvalidPillar),
		errors.Is(err, models.ErrUnknownSite),
		errors.Is(err, topology.ErrInvalidTarget),
		errors.Is(err, batch.ErrNoKeywords),
		errors.Is(err, batch.ErrTooManyKeywords),
		errors.Is(err, ai.ErrUnavailable):
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

// pathID parses a UUID route parameter. Malformed ids cannot name an
// existing resource, so they are reported as not found.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusNotFound, CodeNotFound, name+" is not a valid id")
		return uuid.Nil, false
	}
	return id, true
}

// decode reads a JSON body into dst and validates it. An empty body
// leaves dst at its zero value when optional is set.
func decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			writeError(w, http.StatusUnprocessableEntity, CodeValidation, "invalid JSON body: "+err.Error())
			return false
		}
	}
	if err := validate(dst); err != nil {
		fail(w, r, err)
		return false
	}
	return true
}

// page reads limit and offset query parameters.
func page(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	limit = defaultLimit
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxLimit {
			return 0, 0, &ValidationError{Field: "limit", Reason: "must be between 1 and " + strconv.Itoa(maxLimit)}
		}
	}
	if v := q.Get("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, &ValidationError{Field: "offset", Reason: "must be zero or positive"}
		}
	}
	return limit, offset, nil
}
