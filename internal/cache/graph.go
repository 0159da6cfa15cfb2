// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// graph.go caches computed pillar graph layouts in Valkey. A layout only
// changes when the pillar's articles do, so the planner invalidates the
// entry on every map change and article outcome.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/itwrites/BlogViraliy-sub002/internal/layout"
)

const (
	graphKeyPrefix = "graph:"

	// DefaultGraphTTL is how long a computed layout stays cached.
	DefaultGraphTTL = 10 * time.Minute
)

// GraphCache stores layouts as JSON keyed by pillar ID.
type GraphCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGraphCache creates a graph cache backed by the given Valkey client.
func NewGraphCache(client *redis.Client, ttl time.Duration) *GraphCache {
	if ttl == 0 {
		ttl = DefaultGraphTTL
	}
	return &GraphCache{client: client, ttl: ttl}
}

// GraphKey returns the cache key of a pillar's layout.
func GraphKey(pillarID uuid.UUID) string {
	return graphKeyPrefix + pillarID.String()
}

// Get returns the cached layout. Errors count as misses.
func (gc *GraphCache) Get(ctx context.Context, pillarID uuid.UUID) (*layout.Graph, bool) {
	val, err := gc.client.Get(ctx, GraphKey(pillarID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("graph cache get error", "pillar_id", pillarID, "error", err)
		return nil, false
	}
	var g layout.Graph
	if err := json.Unmarshal(val, &g); err != nil {
		slog.Warn("graph cache decode error", "pillar_id", pillarID, "error", err)
		return nil, false
	}
	slog.Debug("graph cache hit", "pillar_id", pillarID)
	return &g, true
}

// Set stores a layout with the configured TTL.
func (gc *GraphCache) Set(ctx context.Context, pillarID uuid.UUID, g *layout.Graph) {
	val, err := json.Marshal(g)
	if err != nil {
		slog.Warn("graph cache encode error", "pillar_id", pillarID, "error", err)
		return
	}
	if err := gc.client.Set(ctx, GraphKey(pillarID), val, gc.ttl).Err(); err != nil {
		slog.Warn("graph cache set error", "pillar_id", pillarID, "error", err)
	}
}

// Invalidate drops a pillar's layout.
func (gc *GraphCache) Invalidate(ctx context.Context, pillarID uuid.UUID) {
	if err := gc.client.Del(ctx, GraphKey(pillarID)).Err(); err != nil {
		slog.Warn("graph cache invalidate error", "pillar_id", pillarID, "error", err)
		return
	}
	slog.Debug("graph cache invalidated", "pillar_id", pillarID)
}

// InvalidateAll removes every cached layout by scanning for the prefix.
// Used at startup when the layout code may have changed.
func (gc *GraphCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, next, err := gc.client.Scan(ctx, cursor, graphKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("graph cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := gc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("graph cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("graph cache cleared", "deleted", deleted)
	}
}
