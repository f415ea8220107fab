// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/toolhub/internal/recommend"
)

func TestRecommendations_UserFromHeader(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	h := testRouter(engine, HealthDeps{}, nil)

	rec := serve(h, http.MethodGet, "/api/v1/recommendations?top_n=2&exclude=p9,p8&exclude=p7",
		map[string]string{UserIDHeader: "alice"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	if env.Data["user_id"] != "alice" {
		t.Errorf("user_id = %v, want alice", env.Data["user_id"])
	}
	if env.Data["tier"] != string(recommend.TierHybrid) {
		t.Errorf("tier = %v, want hybrid", env.Data["tier"])
	}
	if !env.Metadata.Cached || env.Metadata.QueryTimeMS != 3 {
		t.Errorf("metadata = %+v, want cached with 3ms", env.Metadata)
	}
	if env.Metadata.RequestID == "" {
		t.Error("metadata.request_id is empty")
	}

	engine.mu.Lock()
	got := engine.lastRequest
	engine.mu.Unlock()
	if got.UserID != "alice" || got.TopN != 2 {
		t.Errorf("engine request = %+v", got)
	}
	if fmt.Sprint(got.Exclude) != "[p9 p8 p7]" {
		t.Errorf("exclude = %v, want [p9 p8 p7]", got.Exclude)
	}
	if got.RequestID == "" {
		t.Error("request id not passed to the engine")
	}
}

func TestRecommendations_Anonymous(t *testing.T) {
	t.Parallel()

	h := testRouter(newMockEngine(), HealthDeps{}, nil)
	rec := serve(h, http.MethodGet, "/api/v1/recommendations", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if tier := decodeEnvelope(t, rec).Data["tier"]; tier != string(recommend.TierAnonymous) {
		t.Errorf("tier = %v, want anonymous", tier)
	}
}

func TestUserRecommendations_PathParam(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	h := testRouter(engine, HealthDeps{}, nil)

	rec := serve(h, http.MethodGet, "/api/v1/recommendations/user/bob@example.com", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.lastRequest.UserID != "bob@example.com" {
		t.Errorf("UserID = %q", engine.lastRequest.UserID)
	}
}

func TestRecommendations_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  string
		headers map[string]string
	}{
		{"non-numeric top_n", "/api/v1/recommendations?top_n=ten", nil},
		{"negative top_n", "/api/v1/recommendations?top_n=-1", nil},
		{"top_n above wire limit", "/api/v1/recommendations?top_n=5000", nil},
		{"malformed user header", "/api/v1/recommendations", map[string]string{UserIDHeader: "bad user"}},
		{"malformed exclude", "/api/v1/recommendations?exclude=ok,-bad", nil},
		{"malformed product", "/api/v1/products/.hidden/similar", nil},
		{"product top_n", "/api/v1/products/p1/related?top_n=1001", nil},
	}

	h := testRouter(newMockEngine(), HealthDeps{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(h, http.MethodGet, tt.target, tt.headers)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body %s", rec.Code, rec.Body.String())
			}
			env := decodeEnvelope(t, rec)
			if env.Status != "error" || env.Error == nil || env.Error.Code != codeValidation {
				t.Errorf("envelope = %+v, want VALIDATION_ERROR", env)
			}
		})
	}
}

func TestRecommendations_StoreFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"query error", fmt.Errorf("load user inputs: %w", errStoreDown)},
		{"circuit open", fmt.Errorf("get cart: %w", gobreaker.ErrOpenState)},
		{"provider missing", recommend.ErrProviderNotSet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine := newMockEngine()
			engine.recommendErr = tt.err
			engine.productErr = tt.err
			h := testRouter(engine, HealthDeps{}, nil)

			for _, target := range []string{
				"/api/v1/recommendations/user/alice",
				"/api/v1/products/p1/similar",
				"/api/v1/products/p1/related",
			} {
				rec := serve(h, http.MethodGet, target, nil)
				if rec.Code != http.StatusServiceUnavailable {
					t.Errorf("%s: status = %d, want 503", target, rec.Code)
					continue
				}
				env := decodeEnvelope(t, rec)
				if env.Error == nil || env.Error.Code != codeServiceUnavailable {
					t.Errorf("%s: error = %+v", target, env.Error)
				}
			}
		})
	}
}

func TestProductEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		target   string
		wantTier recommend.Tier
	}{
		{"/api/v1/products/p-drill-18v/similar?top_n=4", recommend.TierSimilar},
		{"/api/v1/products/p-drill-18v/related?top_n=4", recommend.TierCategory},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()
			engine := newMockEngine()
			h := testRouter(engine, HealthDeps{}, nil)

			rec := serve(h, http.MethodGet, tt.target, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			env := decodeEnvelope(t, rec)
			if env.Data["product_id"] != "p-drill-18v" || env.Data["tier"] != string(tt.wantTier) {
				t.Errorf("data = %v", env.Data)
			}
			engine.mu.Lock()
			defer engine.mu.Unlock()
			if engine.lastProduct != "p-drill-18v" || engine.lastTopN != 4 {
				t.Errorf("engine got (%q, %d)", engine.lastProduct, engine.lastTopN)
			}
		})
	}
}

func TestTriggerTraining(t *testing.T) {
	t.Parallel()

	t.Run("conflict while training", func(t *testing.T) {
		t.Parallel()
		engine := newMockEngine()
		engine.training = true
		rec := serve(testRouter(engine, HealthDeps{}, nil), http.MethodPost, "/api/v1/recommendations/train", nil)
		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Error == nil || env.Error.Code != codeTrainingInProgress {
			t.Errorf("error = %+v", env.Error)
		}
		if engine.trainCalls != 0 {
			t.Errorf("Train called %d times", engine.trainCalls)
		}
	})

	t.Run("async", func(t *testing.T) {
		t.Parallel()
		engine := newMockEngine()
		rec := serve(testRouter(engine, HealthDeps{}, nil), http.MethodPost, "/api/v1/recommendations/train", nil)
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", rec.Code)
		}
		select {
		case <-engine.trained:
		case <-time.After(5 * time.Second):
			t.Fatal("background training did not run")
		}
	})

	t.Run("wait", func(t *testing.T) {
		t.Parallel()
		engine := newMockEngine()
		rec := serve(testRouter(engine, HealthDeps{}, nil), http.MethodPost, "/api/v1/recommendations/train?wait=true", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env.Data["trained"] != true || env.Data["model_version"] != float64(7) {
			t.Errorf("data = %v", env.Data)
		}
	})

	t.Run("wait loses race", func(t *testing.T) {
		t.Parallel()
		engine := newMockEngine()
		engine.trainErr = recommend.ErrTrainingInProgress
		rec := serve(testRouter(engine, HealthDeps{}, nil), http.MethodPost, "/api/v1/recommendations/train?wait=true", nil)
		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want 409", rec.Code)
		}
	})

	t.Run("wait fails", func(t *testing.T) {
		t.Parallel()
		engine := newMockEngine()
		engine.trainErr = errStoreDown
		rec := serve(testRouter(engine, HealthDeps{}, nil), http.MethodPost, "/api/v1/recommendations/train?wait=true", nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Error == nil || env.Error.Code != codeTrainingFailed {
			t.Errorf("error = %+v", env.Error)
		}
	})
}

func TestStatus(t *testing.T) {
	t.Parallel()

	rec := serve(testRouter(newMockEngine(), HealthDeps{}, nil), http.MethodGet, "/api/v1/recommendations/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	training, ok := env.Data["training"].(map[string]interface{})
	if !ok || training["model_version"] != float64(7) {
		t.Errorf("training = %v", env.Data["training"])
	}
	if m, ok := env.Data["metrics"].(map[string]interface{}); !ok || m["request_count"] != float64(12) {
		t.Errorf("metrics = %v", env.Data["metrics"])
	}
}
