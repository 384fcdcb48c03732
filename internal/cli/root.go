// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

// Package cli implements tracepointctl, the operator tool for the
// metastore, demo data and API tokens. Every command reads the same
// configuration as the server (defaults, config.yaml, environment).
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/tracepoint/internal/logging"
)

var version = "dev"

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "tracepointctl",
		Short:         "Tracepoint administration",
		Long:          "Administrative commands for a Tracepoint deployment: migrations, demo data and API tokens.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logCfg := logging.DefaultConfig()
			logCfg.Level = logLevel
			logCfg.Format = "console"
			logging.Init(logCfg)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newTokenCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the tracepointctl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "tracepointctl version %s\n", version)
			return err
		},
	}
}
