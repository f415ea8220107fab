// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

/*
Package metrics provides Prometheus metrics collection and export for observability.

Metrics are exposed at /metrics in the Prometheus text format.

# Available Metrics

HTTP:
  - toolhub_api_requests_total{method, endpoint, status_code}
  - toolhub_api_request_duration_seconds{method, endpoint}
  - toolhub_api_active_requests
  - toolhub_api_rate_limit_hits_total{endpoint}

Recommendation engine (EngineCollector, read from the engine at scrape time):
  - toolhub_recommend_requests_total{tier}
  - toolhub_recommend_cache_hits_total, toolhub_recommend_cache_misses_total
  - toolhub_recommend_errors_total
  - toolhub_recommend_trainings_total, toolhub_recommend_matrix_refreshes_total
  - toolhub_recommend_products_indexed, toolhub_recommend_model_version
  - toolhub_recommend_last_training_duration_seconds
  - toolhub_recommend_training_in_progress, toolhub_recommend_trained
  - toolhub_recommend_matrix_users, toolhub_recommend_matrix_products

Recommendation engine (recorded by callers):
  - toolhub_recommend_latency_seconds{operation, tier}
  - toolhub_recommend_training_duration_seconds
  - toolhub_recommend_training_runs_total{trigger, result}

Data store:
  - toolhub_duckdb_query_duration_seconds{operation}
  - toolhub_duckdb_query_errors_total{operation, error_type}

Circuit breaker:
  - toolhub_circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - toolhub_circuit_breaker_requests_total{name, result}
  - toolhub_circuit_breaker_consecutive_failures{name}
  - toolhub_circuit_breaker_state_transitions_total{name, from_state, to_state}

Events:
  - toolhub_events_processed_total{topic, result}

# Example Alert Expression

The data store breaker has been open for two minutes:

	min_over_time(toolhub_circuit_breaker_state{name="duckdb"}[2m]) == 2
*/
package metrics
