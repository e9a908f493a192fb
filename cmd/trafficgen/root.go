// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package main

import (
	"github.com/spf13/cobra"
)

// newRootCommand builds the trafficgen CLI. "run" is the default action
// when no subcommand is given, matching the teacher's single-binary,
// env-configured daemon shape.
func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "trafficgen",
		Short:         "Synthetic web-traffic generator for a Matomo analytics backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRun,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start live traffic generation (replays a backfill window first if enabled)",
		RunE:  runRun,
	}

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Replay the configured historical window once and exit",
		RunE:  runBackfill,
	}

	root.AddCommand(runCmd, backfillCmd)
	return root
}
