// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/itwrites/BlogViraliy-sub002/internal/dispatch"
	"github.com/itwrites/BlogViraliy-sub002/internal/layout"
	"github.com/itwrites/BlogViraliy-sub002/internal/models"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{graphKeyPrefix + "*", lockKeyPrefix + "*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(context.Background(), host, port, os.Getenv("VALKEY_PASSWORD"), 15)
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	pong, err := client.Ping(context.Background()).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func sampleGraph() *layout.Graph {
	a, b := uuid.New(), uuid.New()
	return &layout.Graph{
		Nodes: []layout.PlacedNode{
			{Node: layout.Node{ID: a, Title: "Hub", Role: models.RolePillar}, X: 400, Y: 300, Radius: 28},
			{Node: layout.Node{ID: b, Title: "Support", Role: models.RoleSupport}, X: 520, Y: 300, Radius: 18},
		},
		Edges: []layout.Segment{{From: b, To: a, FromRole: models.RoleSupport, ToRole: models.RolePillar, X1: 502, Y1: 300, X2: 428, Y2: 300}},
	}
}

func TestGraphCacheSetGetInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	gc := NewGraphCache(client, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	if _, ok := gc.Get(ctx, id); ok {
		t.Fatal("expected cache miss")
	}

	g := sampleGraph()
	gc.Set(ctx, id, g)
	got, ok := gc.Get(ctx, id)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got.Nodes) != 2 || len(got.Edges) != 1 || got.Nodes[0].ID != g.Nodes[0].ID || got.Edges[0].X1 != 502 {
		t.Errorf("round trip mismatch: %+v", got)
	}

	gc.Invalidate(ctx, id)
	if _, ok := gc.Get(ctx, id); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestGraphCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	gc := NewGraphCache(client, time.Minute)
	ctx := context.Background()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for _, id := range ids {
		gc.Set(ctx, id, sampleGraph())
	}
	gc.InvalidateAll(ctx)
	for _, id := range ids {
		if _, ok := gc.Get(ctx, id); ok {
			t.Errorf("expected miss for %s after InvalidateAll", id)
		}
	}
}

func TestGraphCacheCorruptEntryIsMiss(t *testing.T) {
	client := testValkeyClient(t)
	gc := NewGraphCache(client, time.Minute)
	ctx := context.Background()
	id := uuid.New()

	client.Set(ctx, GraphKey(id), "not json", time.Minute)
	if _, ok := gc.Get(ctx, id); ok {
		t.Error("corrupt entry should be a miss")
	}
}

func TestGraphKey(t *testing.T) {
	id := uuid.MustParse("6f1c1a55-5d6b-4f0e-9c55-3c2e8a1f0b7d")
	if got := GraphKey(id); got != "graph:6f1c1a55-5d6b-4f0e-9c55-3c2e8a1f0b7d" {
		t.Errorf("GraphKey: got %q", got)
	}
}

func TestNewGraphCacheDefaultTTL(t *testing.T) {
	gc := NewGraphCache(nil, 0)
	if gc.ttl != DefaultGraphTTL {
		t.Errorf("expected DefaultGraphTTL (%v), got %v", DefaultGraphTTL, gc.ttl)
	}
}

func TestLockerExclusive(t *testing.T) {
	client := testValkeyClient(t)
	l := NewLocker(client, 2*time.Second)
	ctx := context.Background()
	key := dispatch.PillarKey(uuid.NewString())

	lease, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if _, err := l.Acquire(ctx, key); !errors.Is(err, dispatch.ErrLocked) {
		t.Errorf("second Acquire err = %v, want ErrLocked", err)
	}

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	// Releasing twice is a no-op.
	if err := lease.Release(ctx); err != nil {
		t.Errorf("second Release: %v", err)
	}

	again, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	again.Release(ctx)
}

func TestLockerRefreshKeepsLease(t *testing.T) {
	client := testValkeyClient(t)
	l := NewLocker(client, 300*time.Millisecond)
	ctx := context.Background()
	key := dispatch.BatchKey(uuid.NewString())

	lease, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lease.Release(ctx)

	// Well past the TTL the refresher must still hold the key.
	time.Sleep(time.Second)
	if _, err := l.Acquire(ctx, key); !errors.Is(err, dispatch.ErrLocked) {
		t.Errorf("Acquire after TTL err = %v, want ErrLocked", err)
	}
}

func TestLockerReleaseKeepsForeignLock(t *testing.T) {
	client := testValkeyClient(t)
	l := NewLocker(client, time.Minute)
	ctx := context.Background()
	key := dispatch.PillarKey(uuid.NewString())

	lease, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	// Someone else took over after expiry.
	client.Set(ctx, lockKeyPrefix+key, "other-token", time.Minute)

	if err := lease.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	val, err := client.Get(ctx, lockKeyPrefix+key).Result()
	if err != nil || val != "other-token" {
		t.Errorf("foreign lock = %q, %v; release must not delete it", val, err)
	}
}
