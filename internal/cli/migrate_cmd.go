// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/tracepoint/internal/config"
	"github.com/tomtom215/tracepoint/internal/metastore"
)

func newMigrateCmd() *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending metastore migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			mc := cfg.Metastore
			mc.AutoMigrate = false

			store, err := metastore.Open(&mc)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			pending, err := store.HasPendingMigrations()
			if err != nil {
				return fmt.Errorf("read migration status: %w", err)
			}
			out := cmd.OutOrStdout()
			if statusOnly {
				if pending {
					_, err = fmt.Fprintln(out, "pending")
				} else {
					_, err = fmt.Fprintln(out, "up to date")
				}
				return err
			}
			if !pending {
				_, err = fmt.Fprintf(out, "metastore %s is up to date\n", mc.Path)
				return err
			}
			if err := store.Migrate(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "metastore %s migrated\n", mc.Path)
			return err
		},
	}
	cmd.Flags().BoolVar(&statusOnly, "status", false, "Only report whether migrations are pending")
	return cmd
}
