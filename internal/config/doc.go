// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

/*
Package config provides centralized configuration management for Toolhub.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - Optional YAML file: CONFIG_PATH, ./config.yaml or /etc/toolhub/config.yaml
  - Environment variables, mapped explicitly in envMappings

Unknown environment variables are ignored so unrelated process settings
never leak into the configuration.

# Configuration Structure

  - ServerConfig: HTTP server (host, port, timeouts, environment)
  - DatabaseConfig: DuckDB storefront database
  - LoggingConfig: zerolog level, format and caller
  - RecommendConfig: engine weights, policies and training schedule
  - SnapshotConfig: BadgerDB model snapshots
  - EventsConfig: Watermill transport (memory, nats, embedded)
  - BreakerConfig: circuit breaker around the data store
  - SecurityConfig: rate limiting and CORS

# Example config.yaml

	server:
	  port: 8080
	database:
	  path: /data/toolhub.duckdb
	  read_only: true
	recommend:
	  content_similarity: tfidf
	  tie_break: recency
	  seed_weights:
	    cart: 2.0
	events:
	  enabled: true
	  transport: embedded

# Validation

LoadWithKoanf validates the merged configuration and returns the first
problem found, naming the environment variable that controls the field.
*/
package config
