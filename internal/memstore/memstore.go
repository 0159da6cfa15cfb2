// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package memstore keeps pillars, batches and posts in process memory. It
// honours the same atomicity contracts as the PostgreSQL store by holding
// one mutex per call, and is used by tests and single-node demos.
package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// Store is an in-memory implementation of the planner, batch and post
// stores.
type Store struct {
	mu sync.Mutex

	pillars  map[uuid.UUID]*models.Pillar
	clusters map[uuid.UUID]*models.Cluster
	articles map[uuid.UUID]*models.PillarArticle
	batches  map[uuid.UUID]*models.KeywordBatch
	jobs     map[uuid.UUID]*models.KeywordJob
	posts    map[uuid.UUID]*models.Post

	now func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		pillars:  make(map[uuid.UUID]*models.Pillar),
		clusters: make(map[uuid.UUID]*models.Cluster),
		articles: make(map[uuid.UUID]*models.PillarArticle),
		batches:  make(map[uuid.UUID]*models.KeywordBatch),
		jobs:     make(map[uuid.UUID]*models.KeywordJob),
		posts:    make(map[uuid.UUID]*models.Post),
		now:      time.Now,
	}
}

// Counts reports the number of stored rows per kind, for tests.
func (s *Store) Counts() (pillars, clusters, articles int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pillars), len(s.clusters), len(s.articles)
}

func (s *Store) stamp() time.Time { return s.now().UTC() }

func ptrCopy[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sortByPosition[T any](xs []T, pos func(T) int) {
	sort.SliceStable(xs, func(i, j int) bool { return pos(xs[i]) < pos(xs[j]) })
}

func page[T any](xs []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(xs) {
			return xs[:0]
		}
		xs = xs[offset:]
	}
	if limit > 0 && limit < len(xs) {
		xs = xs[:limit]
	}
	return xs
}
