// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

/*
Package supervisor runs toolhub's long-lived services under a suture/v4
supervisor tree.

	toolhub (root)
	├── model-layer    services.TrainerService
	├── events-layer   services.EventsService (when events.enabled)
	└── api-layer      services.HTTPServerService

A service that returns an error is restarted by its layer supervisor. When
failures exceed FailureThreshold (decaying with FailureDecay) the layer
backs off for FailureBackoff. Supervisor events are logged through
sutureslog into the zerolog pipeline:

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddModelService(services.NewTrainerService(engine, trainerCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err := tree.Serve(ctx)

Cancel ctx (SIGINT/SIGTERM via signal.NotifyContext) to shut down; every
service gets ShutdownTimeout to stop.
*/
package supervisor
