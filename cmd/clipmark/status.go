// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/clipmark/clipmark/internal/store"
)

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check database connectivity and schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			databaseURL := os.Getenv("DATABASE_URL")
			if databaseURL == "" {
				return oops.Code("CONFIG_INVALID").Errorf("DATABASE_URL environment variable is required")
			}

			pool, err := store.Connect(cmd.Context(), databaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			cmd.Println("database: reachable")

			return withMigrator(func(m *store.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				if dirty {
					cmd.Printf("schema version: %d (dirty)\n", version)
				} else {
					cmd.Printf("schema version: %d\n", version)
				}
				return nil
			})
		},
	}
}
