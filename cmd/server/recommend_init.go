// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomtom215/toolhub/internal/config"
	"github.com/tomtom215/toolhub/internal/database"
	"github.com/tomtom215/toolhub/internal/logging"
	"github.com/tomtom215/toolhub/internal/metrics"
	"github.com/tomtom215/toolhub/internal/recommend"
	"github.com/tomtom215/toolhub/internal/recommend/storage"
)

// RecommendComponents holds the engine and the resources it owns.
type RecommendComponents struct {
	Engine   *recommend.Engine
	Breaker  *database.CircuitBreakerProvider
	Snapshot *storage.BadgerStore
}

// Close releases the snapshot store.
func (c *RecommendComponents) Close() error {
	if c == nil || c.Snapshot == nil {
		return nil
	}
	return c.Snapshot.Close()
}

// initRecommend builds the engine over db behind a circuit breaker and,
// when enabled, attaches the BadgerDB snapshot store. The engine collector
// is registered with reg.
func initRecommend(cfg *config.Config, db *database.DB, reg prometheus.Registerer) (*RecommendComponents, error) {
	engine, err := recommend.NewEngine(buildEngineConfig(cfg), logging.WithComponent("recommend"))
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}

	breaker := database.NewCircuitBreakerProvider(db, &cfg.Breaker)
	engine.SetDataProvider(breaker)

	components := &RecommendComponents{Engine: engine, Breaker: breaker}

	if cfg.Snapshot.Enabled {
		store, err := storage.Open(storage.Options{
			Path:   cfg.Snapshot.Path,
			Retain: cfg.Snapshot.Retain,
		})
		if err != nil {
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
		engine.SetSnapshotStore(store)
		components.Snapshot = store
		logging.Info().Str("path", cfg.Snapshot.Path).Int("retain", cfg.Snapshot.Retain).Msg("Model snapshots enabled")
	}

	if reg != nil {
		if err := reg.Register(metrics.NewEngineCollector(engine)); err != nil {
			_ = components.Close()
			return nil, fmt.Errorf("register engine collector: %w", err)
		}
	}

	logging.Info().
		Str("content_similarity", cfg.Recommend.ContentSimilarity).
		Str("anonymous_policy", cfg.Recommend.AnonymousPolicy).
		Int("k_neighbors", cfg.Recommend.KNeighbors).
		Dur("train_interval", cfg.Recommend.TrainInterval).
		Msg("Recommendation engine initialized")

	return components, nil
}

// buildEngineConfig maps the recommend configuration section onto the
// engine settings.
func buildEngineConfig(cfg *config.Config) *recommend.Config {
	rc := &cfg.Recommend

	return &recommend.Config{
		Weights: recommend.InteractionWeights{
			SearchMatch:   rc.Weights.SearchMatch,
			SearchText:    rc.Weights.SearchText,
			CartAdd:       rc.Weights.CartAdd,
			OrderComplete: rc.Weights.OrderComplete,
			ProductView:   rc.Weights.ProductView,
		},
		SeedWeights: recommend.SeedWeights{
			Cart:               rc.SeedWeights.Cart,
			Order:              rc.SeedWeights.Order,
			View:               rc.SeedWeights.View,
			SearchMatch:        rc.SeedWeights.SearchMatch,
			SearchTextDiscount: rc.SeedWeights.SearchTextDiscount,
		},
		ContentSimilarity: rc.ContentSimilarity,
		TieBreak:          recommend.TieBreak(rc.TieBreak),
		AnonymousPolicy:   recommend.AnonymousPolicy(rc.AnonymousPolicy),
		KNeighbors:        rc.KNeighbors,
		RecentViewWindow:  rc.RecentViewWindow,
		InteractionWindow: rc.InteractionWindow,
		MatrixMaxAge:      rc.MatrixMaxAge,
		TFIDF: recommend.TFIDFConfig{
			MaxFeatures: rc.TFIDFMaxFeatures,
			StopWords:   rc.TFIDFStopWords,
		},
		Limits: recommend.LimitsConfig{
			DefaultTopN: rc.DefaultTopN,
			MaxTopN:     rc.MaxTopN,
		},
		Cache: recommend.CacheConfig{
			Enabled:    rc.CacheTTL > 0,
			TTL:        rc.CacheTTL,
			MaxEntries: rc.CacheSize,
		},
		TrainingTimeout: rc.TrainingTimeout,
	}
}
