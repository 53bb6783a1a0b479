// Sugoi - Anime Catalog and Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sugoi

/*
Package supervisor runs the long-lived parts of the server under a suture
supervision tree.

The tree has two layers below the root:

	sugoi
	├── data-layer   audit logger, scheduled watch-event dedupe
	└── api-layer    HTTP server

A service that returns an error or panics is restarted by its layer with
exponential backoff. Failures in the data layer do not stop the API layer
from serving requests.

Supervisor events (restarts, backoff, panics) are logged through sutureslog
using the slog bridge from the logging package, so they share the format and
level of the rest of the application log.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(auditLogger)
	tree.AddDataService(services.NewDedupeService(db, dedupeCfg, logging.Logger()))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)
*/
package supervisor
