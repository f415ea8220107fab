// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/toolhub/internal/logging"
	"github.com/tomtom215/toolhub/internal/metrics"
	"github.com/tomtom215/toolhub/internal/recommend"
	"github.com/tomtom215/toolhub/internal/validation"
)

// UserIDHeader carries the authenticated user, set by the upstream auth layer.
const UserIDHeader = "X-User-ID"

const defaultRequestTimeout = 10 * time.Second

// Recommender is the engine surface the HTTP layer uses.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Similar(ctx context.Context, productID string, topN int) (*recommend.Response, error)
	Related(ctx context.Context, productID string, topN int) (*recommend.Response, error)
	Train(ctx context.Context) (recommend.TrainResult, error)
	GetStatus() recommend.TrainingStatus
	GetMetrics() recommend.Metrics
}

// RecommendHandler serves the recommendation endpoints.
type RecommendHandler struct {
	engine         Recommender
	requestTimeout time.Duration
	trainTimeout   time.Duration
}

// NewRecommendHandler wraps engine. trainTimeout bounds API-triggered runs.
func NewRecommendHandler(engine Recommender, trainTimeout time.Duration) *RecommendHandler {
	if trainTimeout <= 0 {
		trainTimeout = 5 * time.Minute
	}
	return &RecommendHandler{
		engine:         engine,
		requestTimeout: defaultRequestTimeout,
		trainTimeout:   trainTimeout,
	}
}

// recommendationData is the payload of every list endpoint.
type recommendationData struct {
	UserID    string `json:"user_id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	*recommend.Response
}

// Recommendations handles GET /api/v1/recommendations.
// The caller is taken from X-User-ID; without it the request is anonymous.
func (h *RecommendHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	h.recommend(w, r, r.Header.Get(UserIDHeader))
}

// UserRecommendations handles GET /api/v1/recommendations/user/{userID}.
func (h *RecommendHandler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	h.recommend(w, r, chi.URLParam(r, "userID"))
}

func (h *RecommendHandler) recommend(w http.ResponseWriter, r *http.Request, userID string) {
	topN, ok := getIntParam(r, "top_n", 0)
	if !ok {
		respondError(w, r, http.StatusBadRequest, codeValidation, "top_n must be an integer", nil)
		return
	}

	req := validation.RecommendationRequest{
		UserID:  userID,
		TopN:    topN,
		Exclude: parseCommaSeparated(r.URL.Query()["exclude"]),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := h.engine.Recommend(ctx, recommend.Request{
		UserID:    req.UserID,
		TopN:      req.TopN,
		Exclude:   req.Exclude,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	metrics.RecordRecommendation("user", string(resp.Tier), time.Since(start))

	h.respondList(w, r, &recommendationData{UserID: req.UserID, Response: resp})
}

// SimilarProducts handles GET /api/v1/products/{productID}/similar.
func (h *RecommendHandler) SimilarProducts(w http.ResponseWriter, r *http.Request) {
	h.productList(w, r, "similar", h.engine.Similar)
}

// RelatedProducts handles GET /api/v1/products/{productID}/related,
// products in the same category newest first.
func (h *RecommendHandler) RelatedProducts(w http.ResponseWriter, r *http.Request) {
	h.productList(w, r, "related", h.engine.Related)
}

type productQuery func(ctx context.Context, productID string, topN int) (*recommend.Response, error)

func (h *RecommendHandler) productList(w http.ResponseWriter, r *http.Request, operation string, query productQuery) {
	topN, ok := getIntParam(r, "top_n", 0)
	if !ok {
		respondError(w, r, http.StatusBadRequest, codeValidation, "top_n must be an integer", nil)
		return
	}

	req := validation.ProductRequest{ProductID: chi.URLParam(r, "productID"), TopN: topN}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	start := time.Now()
	resp, err := query(ctx, req.ProductID, req.TopN)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	metrics.RecordRecommendation(operation, string(resp.Tier), time.Since(start))

	h.respondList(w, r, &recommendationData{ProductID: req.ProductID, Response: resp})
}

func (h *RecommendHandler) respondList(w http.ResponseWriter, r *http.Request, data *recommendationData) {
	out := successResponse(r, data)
	out.Metadata.QueryTimeMS = data.LatencyMS
	out.Metadata.Cached = data.Cached
	respondJSON(w, http.StatusOK, out)
}

// respondEngineError maps engine errors. Every failure other than a
// training conflict comes from the data store.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrTrainingInProgress):
		respondError(w, r, http.StatusConflict, codeTrainingInProgress, "Training is already in progress", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusServiceUnavailable, codeServiceUnavailable, "Recommendation timed out", err)
	default:
		respondError(w, r, http.StatusServiceUnavailable, codeServiceUnavailable, "Recommendations are temporarily unavailable", err)
	}
}

// TriggerTraining handles POST /api/v1/recommendations/train.
//
// By default the run starts in the background and 202 is returned.
// With ?wait=true the handler blocks and returns the TrainResult.
// A run already in progress yields 409.
func (h *RecommendHandler) TriggerTraining(w http.ResponseWriter, r *http.Request) {
	if h.engine.GetStatus().IsTraining {
		respondError(w, r, http.StatusConflict, codeTrainingInProgress, "Training is already in progress", nil)
		return
	}

	// Detached from the request so the run outlives the response, keeping
	// the request and correlation IDs for its logs.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.trainTimeout)

	if r.URL.Query().Get("wait") != "true" {
		go func() {
			defer cancel()
			h.train(ctx)
		}()
		respondJSON(w, http.StatusAccepted, successResponse(r, map[string]string{
			"message": "Training started",
		}))
		return
	}

	defer cancel()
	result, err := h.train(ctx)
	switch {
	case errors.Is(err, recommend.ErrTrainingInProgress):
		respondError(w, r, http.StatusConflict, codeTrainingInProgress, "Training is already in progress", nil)
	case err != nil:
		respondError(w, r, http.StatusServiceUnavailable, codeTrainingFailed, "Training failed", err)
	default:
		respondJSON(w, http.StatusOK, successResponse(r, result))
	}
}

func (h *RecommendHandler) train(ctx context.Context) (recommend.TrainResult, error) {
	start := time.Now()
	result, err := h.engine.Train(ctx)
	metrics.RecordTraining("api", metrics.TrainOutcome(result, err), time.Since(start))

	logger := logging.Ctx(ctx)
	switch {
	case errors.Is(err, recommend.ErrTrainingInProgress):
		logger.Info().Msg("Training request skipped, run in progress")
	case err != nil:
		logger.Error().Err(err).Msg("Recommendation training failed")
	default:
		logger.Info().
			Bool("trained", result.Trained).
			Int("products", result.ProductsIndexed).
			Int64("model_version", result.ModelVersion).
			Int64("duration_ms", result.DurationMS).
			Msg("Recommendation training completed")
	}
	return result, err
}

// Status handles GET /api/v1/recommendations/status.
func (h *RecommendHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, successResponse(r, map[string]interface{}{
		"training": h.engine.GetStatus(),
		"metrics":  h.engine.GetMetrics(),
	}))
}
