// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

/*
Package database provides the DuckDB-backed storefront data store.

DB owns the schema (categories, products, interaction_events, cart_items)
and implements recommend.DataProvider with read-only queries. Writes are
the storefront's responsibility; the helpers in writes.go and the demo
seed exist for local development, the evaluation CLI and tests.

# Resilience

CircuitBreakerProvider wraps any DataProvider with sony/gobreaker. Once
the failure ratio over the measurement interval reaches the configured
threshold the breaker opens and every call fails fast until the timeout
elapses and a limited number of probe requests succeed. Breaker state and
per-call latency are exported through internal/metrics.

# Usage

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	provider := database.NewCircuitBreakerProvider(db, &cfg.Breaker)
	engine.SetDataProvider(provider)

# Thread Safety

DB is safe for concurrent use; database/sql pools the DuckDB connections.
*/
package database
