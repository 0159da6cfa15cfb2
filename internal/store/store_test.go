// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/itwrites/BlogViraliy-sub002/internal/batch"
	"github.com/itwrites/BlogViraliy-sub002/internal/database"
	"github.com/itwrites/BlogViraliy-sub002/internal/generation"
	"github.com/itwrites/BlogViraliy-sub002/internal/planner"
)

var (
	_ planner.Store        = (*PillarStore)(nil)
	_ batch.Store          = (*BatchStore)(nil)
	_ generation.PostStore = (*PostStore)(nil)
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "planner")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "planner")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testSite creates a throwaway site and removes it, with everything it
// owns, when the test ends.
func testSite(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	host := "test-" + uuid.NewString() + ".local"
	id, err := database.EnsureSite(context.Background(), db, "Test Site", host)
	if err != nil {
		t.Fatalf("create test site: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM sites WHERE id = $1", id)
	})
	return id
}
