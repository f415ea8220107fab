// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

/*
Package main is the entry point for the Toolhub recommendation server.

Toolhub serves product recommendations for a tool storefront. It reads the
catalog and shopper interactions from DuckDB, trains a content model and an
interaction matrix, and answers recommendation requests over HTTP.

# Application Architecture

	toolhub
	├── model-layer   trainer: snapshot restore, startup and periodic training
	├── events-layer  Watermill router (optional, EVENTS_ENABLED=true)
	└── api-layer     HTTP server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Database: DuckDB storefront store, optionally seeded with a demo catalog
 4. Engine: recommend.Engine behind a gobreaker circuit breaker
 5. Snapshots: BadgerDB model store (optional, SNAPSHOT_ENABLED=true)
 6. Events: memory, NATS or embedded NATS transport (optional)
 7. HTTP: chi router with rate limiting, CORS and Prometheus metrics

# Configuration

Common environment variables:

	HTTP_PORT                 listen port (default 8080)
	DUCKDB_PATH               storefront database (default /data/toolhub.duckdb)
	SEED_DEMO_DATA            load the demo catalog into an empty database
	RECOMMEND_TRAIN_INTERVAL  retrain period (default 15m, 0 disables)
	RECOMMEND_ANONYMOUS_POLICY empty, newest or featured
	SNAPSHOT_ENABLED          persist trained models and warm start from them
	EVENTS_ENABLED            consume catalog.changed and interaction.recorded
	EVENTS_TRANSPORT          memory, nats or embedded

# Signal Handling

SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
in-flight requests for up to HTTP_SHUTDOWN_TIMEOUT, then the event
transport, snapshot store and database are closed in that order.
*/
package main
