// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package main

import (
	"os"

	"github.com/tomtom215/trafficinator/internal/logging"
)

func main() {
	root := newRootCommand()
	err := root.Execute()
	if err != nil {
		logging.Error().Err(err).Msg("trafficinator exiting with error")
	}
	os.Exit(exitCodeFor(err))
}
