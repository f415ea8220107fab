// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/toolhub/internal/middleware"
)

// Router assembles the handlers and middleware into a chi mux.
type Router struct {
	recommend *RecommendHandler
	health    *HealthHandler
	chi       *ChiMiddleware
	monitor   *middleware.LatencyMonitor
}

// NewRouter returns a router. recommend may be nil when the recommendation
// endpoints are disabled; monitor may be nil.
func NewRouter(recommend *RecommendHandler, health *HealthHandler, mw *ChiMiddleware, monitor *middleware.LatencyMonitor) *Router {
	return &Router{recommend: recommend, health: health, chi: mw, monitor: monitor}
}

// Handler builds the route tree.
func (router *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	if router.monitor != nil {
		r.Use(router.monitor.Middleware)
	}
	r.Use(router.chi.CORS())
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, codeNotFound, "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, codeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chi.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.health.Live)
		r.Get("/ready", router.health.Ready)
		r.Get("/latency", router.health.Latency)
	})

	if router.recommend != nil {
		r.Group(func(r chi.Router) {
			r.Use(router.chi.RateLimit())
			r.Use(APISecurityHeaders())

			r.Route("/api/v1/recommendations", func(r chi.Router) {
				r.Get("/", router.recommend.Recommendations)
				r.Get("/user/{userID}", router.recommend.UserRecommendations)
				r.Post("/train", router.recommend.TriggerTraining)
				r.Get("/status", router.recommend.Status)
			})
			r.Route("/api/v1/products/{productID}", func(r chi.Router) {
				r.Get("/similar", router.recommend.SimilarProducts)
				r.Get("/related", router.recommend.RelatedProducts)
			})
		})
	}

	r.Handle("/metrics", promhttp.Handler())

	return r
}
