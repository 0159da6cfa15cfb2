// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the topical authority planner.
// "serve" runs the HTTP API with the generation runners; "migrate"
// applies or reports schema migrations.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/itwrites/BlogViraliy-sub002/internal/config"
)

var (
	// cfg is loaded once before any subcommand runs.
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "planner",
		Short: "Plan and generate topical authority content trees",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			// Structured logger at the configured level.
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			})))
			slog.Info("configuration loaded",
				"env", cfg.Env,
				"addr", cfg.Addr(),
				"store", cfg.StoreBackend,
			)
			return nil
		},
		SilenceUsage: true,
	}
)

func main() {
	// SIGINT or SIGTERM cancels the command context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(serveCmd, migrateCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
