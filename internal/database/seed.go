// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Default site created by Seed for local development.
const (
	DefaultSiteName     = "Default Site"
	DefaultSiteHostname = "localhost"
)

// Seed makes sure the default site exists and returns its ID. Pillars and
// batches need an owning site; there is no site CRUD beyond this.
func Seed(ctx context.Context, db *sql.DB) (uuid.UUID, error) {
	return EnsureSite(ctx, db, DefaultSiteName, DefaultSiteHostname)
}

// EnsureSite returns the ID of the site with hostname, creating it if
// needed.
func EnsureSite(ctx context.Context, db *sql.DB, name, hostname string) (uuid.UUID, error) {
	var id uuid.UUID
	var inserted bool
	err := db.QueryRowContext(ctx, `
		INSERT INTO sites (name, hostname)
		VALUES ($1, $2)
		ON CONFLICT (hostname) DO UPDATE SET hostname = EXCLUDED.hostname
		RETURNING id, (xmax = 0)
	`, name, hostname).Scan(&id, &inserted)
	if err != nil {
		return uuid.Nil, fmt.Errorf("seed site: %w", err)
	}
	if inserted {
		slog.Info("site created", "site_id", id, "hostname", hostname)
	} else {
		slog.Debug("site already present", "site_id", id, "hostname", hostname)
	}
	return id, nil
}
