// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/toolhub/internal/recommend"
)

var errStoreDown = errors.New("duckdb: connection refused")

// mockEngine is a Recommender with scripted results.
type mockEngine struct {
	mu sync.Mutex

	recommendErr error
	productErr   error
	trainErr     error
	training     bool

	lastRequest recommend.Request
	lastProduct string
	lastTopN    int
	trainCalls  int
	trained     chan struct{}
}

func newMockEngine() *mockEngine {
	return &mockEngine{trained: make(chan struct{}, 4)}
}

func (m *mockEngine) Recommend(_ context.Context, req recommend.Request) (*recommend.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRequest = req
	if m.recommendErr != nil {
		return nil, m.recommendErr
	}
	if req.UserID == "" {
		return &recommend.Response{ProductIDs: []string{"p-new"}, Tier: recommend.TierAnonymous}, nil
	}
	return &recommend.Response{
		ProductIDs: []string{"p3", "p1"},
		Tier:       recommend.TierHybrid,
		Seeds:      2,
		Cached:     true,
		LatencyMS:  3,
	}, nil
}

func (m *mockEngine) productResponse(productID string, topN int, tier recommend.Tier) (*recommend.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastProduct = productID
	m.lastTopN = topN
	if m.productErr != nil {
		return nil, m.productErr
	}
	return &recommend.Response{ProductIDs: []string{"p2"}, Tier: tier}, nil
}

func (m *mockEngine) Similar(_ context.Context, productID string, topN int) (*recommend.Response, error) {
	return m.productResponse(productID, topN, recommend.TierSimilar)
}

func (m *mockEngine) Related(_ context.Context, productID string, topN int) (*recommend.Response, error) {
	return m.productResponse(productID, topN, recommend.TierCategory)
}

func (m *mockEngine) Train(context.Context) (recommend.TrainResult, error) {
	m.mu.Lock()
	m.trainCalls++
	err := m.trainErr
	m.mu.Unlock()

	m.trained <- struct{}{}
	if err != nil {
		return recommend.TrainResult{}, err
	}
	return recommend.TrainResult{Trained: true, ProductsIndexed: 3, ModelVersion: 7}, nil
}

func (m *mockEngine) GetStatus() recommend.TrainingStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return recommend.TrainingStatus{IsTraining: m.training, Trained: true, ModelVersion: 7}
}

func (m *mockEngine) GetMetrics() recommend.Metrics {
	return recommend.Metrics{RequestCount: 12}
}

// mockPinger reports err from Ping.
type mockPinger struct{ err error }

func (p mockPinger) Ping(context.Context) error { return p.err }

type envelope struct {
	Status   string                 `json:"status"`
	Data     map[string]interface{} `json:"data"`
	Metadata struct {
		RequestID   string `json:"request_id"`
		QueryTimeMS int64  `json:"query_time_ms"`
		Cached      bool   `json:"cached"`
	} `json:"metadata"`
	Error *struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}

func testRouter(engine Recommender, deps HealthDeps, cfg *ChiMiddlewareConfig) http.Handler {
	if cfg == nil {
		cfg = &ChiMiddlewareConfig{RateLimitDisabled: true, CORSAllowedOrigins: []string{"https://shop.example.com"}}
	}
	var rh *RecommendHandler
	if engine != nil {
		rh = NewRecommendHandler(engine, time.Minute)
	}
	return NewRouter(rh, NewHealthHandler(deps), NewChiMiddleware(cfg), deps.Monitor).Handler()
}

func serve(h http.Handler, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
