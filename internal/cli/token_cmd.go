// Tracepoint - Product Analytics Event API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tracepoint

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/tracepoint/internal/auth"
	"github.com/tomtom215/tracepoint/internal/config"
)

func newTokenCmd() *cobra.Command {
	var (
		teamID int64
		userID int64
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the events API",
		Long:  "Signs a team-scoped HS256 token with JWT_SECRET. A zero --ttl issues a token without expiry.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if teamID <= 0 {
				return errors.New("--team must be a positive team id")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			manager, err := auth.NewJWTManager(&cfg.Security)
			if err != nil {
				return err
			}
			token, err := manager.GenerateToken(teamID, userID, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().Int64Var(&teamID, "team", 0, "Team id the token is scoped to")
	cmd.Flags().Int64Var(&userID, "user", 0, "User id recorded when a recording is viewed")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
