// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package main

import (
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/toolhub/internal/config"
	"github.com/tomtom215/toolhub/internal/recommend"
)

func defaultRecommendSection() config.RecommendConfig {
	return config.RecommendConfig{
		Enabled:           true,
		TrainOnStartup:    true,
		TrainInterval:     15 * time.Minute,
		TrainingTimeout:   5 * time.Minute,
		MatrixMaxAge:      5 * time.Minute,
		DefaultTopN:       8,
		MaxTopN:           100,
		KNeighbors:        5,
		ContentSimilarity: "jaccard",
		TieBreak:          "recency",
		AnonymousPolicy:   "featured",
		RecentViewWindow:  30 * 24 * time.Hour,
		Weights: config.WeightsConfig{
			SearchMatch:   1,
			CartAdd:       1,
			OrderComplete: 2,
			ProductView:   1,
		},
		SeedWeights: config.SeedWeightsConfig{
			Cart:               2.0,
			Order:              2.0,
			View:               1.5,
			SearchMatch:        1.0,
			SearchTextDiscount: 0.8,
		},
		CacheTTL:  30 * time.Second,
		CacheSize: 10000,
	}
}

func TestBuildEngineConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Recommend: defaultRecommendSection()}
	got := buildEngineConfig(cfg)

	if err := got.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if want := recommend.DefaultConfig(); !reflect.DeepEqual(got, want) {
		t.Errorf("buildEngineConfig() = %+v\nwant %+v", got, want)
	}
}

func TestBuildEngineConfig_Overrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(rc *config.RecommendConfig)
		check  func(t *testing.T, got *recommend.Config)
	}{
		{
			name:   "zero cache ttl disables cache",
			mutate: func(rc *config.RecommendConfig) { rc.CacheTTL = 0 },
			check: func(t *testing.T, got *recommend.Config) {
				if got.Cache.Enabled {
					t.Error("Cache.Enabled = true, want false")
				}
			},
		},
		{
			name: "tfidf scorer",
			mutate: func(rc *config.RecommendConfig) {
				rc.ContentSimilarity = "tfidf"
				rc.TFIDFMaxFeatures = 500
				rc.TFIDFStopWords = true
			},
			check: func(t *testing.T, got *recommend.Config) {
				if got.ContentSimilarity != "tfidf" || got.TFIDF.MaxFeatures != 500 || !got.TFIDF.StopWords {
					t.Errorf("tfidf settings = %q %+v", got.ContentSimilarity, got.TFIDF)
				}
			},
		},
		{
			name: "policies",
			mutate: func(rc *config.RecommendConfig) {
				rc.TieBreak = "id"
				rc.AnonymousPolicy = "newest"
			},
			check: func(t *testing.T, got *recommend.Config) {
				if got.TieBreak != recommend.TieBreakID {
					t.Errorf("TieBreak = %q, want id", got.TieBreak)
				}
				if got.AnonymousPolicy != recommend.AnonymousNewest {
					t.Errorf("AnonymousPolicy = %q, want newest", got.AnonymousPolicy)
				}
			},
		},
		{
			name:   "order weight",
			mutate: func(rc *config.RecommendConfig) { rc.Weights.OrderComplete = 3 },
			check: func(t *testing.T, got *recommend.Config) {
				if got.Weights.OrderComplete != 3 {
					t.Errorf("Weights.OrderComplete = %v, want 3", got.Weights.OrderComplete)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := &config.Config{Recommend: defaultRecommendSection()}
			tt.mutate(&cfg.Recommend)
			got := buildEngineConfig(cfg)
			if err := got.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			tt.check(t, got)
		})
	}
}

func TestBuildEngineConfig_InvalidPolicy(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{Recommend: defaultRecommendSection()}
	cfg.Recommend.AnonymousPolicy = "random"
	if err := buildEngineConfig(cfg).Validate(); err == nil {
		t.Error("Validate() accepted anonymous_policy=random")
	}
}
