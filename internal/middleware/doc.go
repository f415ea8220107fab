// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

/*
Package middleware holds the chi middleware shared by the HTTP API.

  - RequestID: honours or assigns X-Request-ID and seeds the logging context
    with request and correlation IDs
  - PrometheusMetrics: request counters and latency histograms labelled by
    chi route pattern
  - LatencyMonitor: sliding-window latency percentiles per route, served by
    the latency report endpoint, with slow-request warnings

Route patterns are read after the inner handler returns, so these must wrap
the chi router (r.Use) rather than sit in front of it.

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(monitor.Middleware)
*/
package middleware
