// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package api

import (
	"context"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/toolhub/internal/middleware"
	"github.com/tomtom215/toolhub/internal/recommend"
)

const readinessTimeout = 2 * time.Second

// Pinger checks data store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthDeps are the components the probes report on. Nil fields are
// reported as absent and do not affect readiness, except DB.
type HealthDeps struct {
	DB     Pinger
	Engine interface {
		GetStatus() recommend.TrainingStatus
	}
	BreakerState func() gobreaker.State
	EventsActive func() bool
	Monitor      *middleware.LatencyMonitor
}

// HealthHandler serves the liveness, readiness and latency probes.
type HealthHandler struct {
	deps      HealthDeps
	startTime time.Time
}

// NewHealthHandler records the start time used for uptime.
func NewHealthHandler(deps HealthDeps) *HealthHandler {
	return &HealthHandler{deps: deps, startTime: time.Now()}
}

// Live handles GET /api/v1/health/live. It only proves the process serves HTTP.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, successResponse(r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}))
}

// Ready handles GET /api/v1/health/ready.
//
// The service is ready when the data store answers and the circuit breaker
// in front of it is not open. An untrained model does not block readiness:
// the engine serves cold-start lists until the first run completes.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	dbConnected := h.deps.DB != nil && h.deps.DB.Ping(ctx) == nil

	breaker := "absent"
	breakerOpen := false
	if h.deps.BreakerState != nil {
		state := h.deps.BreakerState()
		breaker = state.String()
		breakerOpen = state == gobreaker.StateOpen
	}

	data := map[string]interface{}{
		"database_connected": dbConnected,
		"circuit_breaker":    breaker,
		"uptime":             time.Since(h.startTime).Seconds(),
	}
	if h.deps.Engine != nil {
		status := h.deps.Engine.GetStatus()
		data["model_trained"] = status.Trained
		data["model_version"] = status.ModelVersion
		data["training"] = status.IsTraining
	}
	if h.deps.EventsActive != nil {
		data["events_running"] = h.deps.EventsActive()
	}

	ready := dbConnected && !breakerOpen
	data["ready_to_serve"] = ready

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	resp := successResponse(r, data)
	resp.Status = status
	respondJSON(w, statusCode, resp)
}

// Latency handles GET /api/v1/health/latency: per-route percentiles over
// the recent request window.
func (h *HealthHandler) Latency(w http.ResponseWriter, r *http.Request) {
	if h.deps.Monitor == nil {
		respondError(w, r, http.StatusNotFound, codeNotFound, "Latency monitoring is disabled", nil)
		return
	}
	respondJSON(w, http.StatusOK, successResponse(r, h.deps.Monitor.Stats()))
}
