// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

/*
Package supervisor provides process supervision for Trafficinator using suture v4.

This package implements a hierarchical supervisor tree that manages the
lifecycle of the generator's long-running services. It provides
Erlang/OTP-style supervision with automatic restart, failure isolation, and
graceful shutdown.

# Overview

	RootSupervisor ("trafficinator")
	├── PaceSupervisor ("pace-layer")
	├── SessionsSupervisor ("sessions-layer")
	│   ├── engine.Pool (the visit engine's worker pool, one Service)
	│   └── statusline.Reporter (periodic status lines)
	└── BackfillSupervisor ("backfill-layer")

cmd/trafficgen adds services to the sessions layer only; the pace and
backfill layers are created empty. The pace controller is a plain
collaborator of engine.Pool rather than a Service, and a backfill replay
runs to completion before the tree is started. Each layer is its own
supervisor, so a service that keeps failing in one layer does not take down
the others.

# Key Features

Automatic Restart:
  - Crashed services are automatically restarted
  - Exponential backoff prevents restart storms
  - Configurable failure thresholds and decay rates

Graceful Shutdown:
  - Context cancellation triggers orderly shutdown
  - Configurable shutdown timeout per service
  - UnstoppedServiceReport for debugging hangs

Structured Logging:
  - Integration with slog for structured events via sutureslog

# Usage Example

	logger := slog.Default()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    log.Fatal(err)
	}

	tree.AddSessionService(pool)
	tree.AddSessionService(reporter)

	ctx := context.Background()
	if err := tree.Serve(ctx); err != nil {
	    log.Printf("Supervisor stopped: %v", err)
	}

# Service Interface

All services must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return nil on clean stop; return an error to request a restart; on context
cancellation, return promptly (ctx.Err() is acceptable).

# Debugging Shutdown Issues

	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    log.Printf("Service didn't stop: %v", svc)
	}
*/
package supervisor
