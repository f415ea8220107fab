// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

/*
Package api exposes the recommendation engine over HTTP with chi.

# Endpoints

	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	GET  /api/v1/health/latency
	GET  /api/v1/recommendations?top_n=&exclude=     (user from X-User-ID)
	GET  /api/v1/recommendations/user/{userID}?top_n=&exclude=
	GET  /api/v1/products/{productID}/similar?top_n=
	GET  /api/v1/products/{productID}/related?top_n=
	POST /api/v1/recommendations/train[?wait=true]
	GET  /api/v1/recommendations/status
	GET  /metrics

Every JSON response uses the models.APIResponse envelope. Errors carry a
code from this set:

	VALIDATION_ERROR       400  bad path or query parameter
	NOT_FOUND              404
	METHOD_NOT_ALLOWED     405
	TRAINING_IN_PROGRESS   409  a training run holds the lock
	RATE_LIMIT_EXCEEDED    429
	SERVICE_UNAVAILABLE    503  data store unreachable or circuit open
	TRAINING_FAILED        503  synchronous training failed

# Middleware

Global: request ID, panic recovery, Prometheus, latency monitor, CORS, gzip.
Health routes get a permissive 1000/min limit; recommendation routes get the
configured security.rate_limit_reqs per security.rate_limit_window, keyed on
the client address. Forwarding headers are trusted only from
security.trusted_proxies.
*/
package api
