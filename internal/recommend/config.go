// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package recommend

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/toolhub/internal/models"
	"github.com/tomtom215/toolhub/internal/recommend/algorithms"
	"github.com/tomtom215/toolhub/internal/recommend/similarity"
)

// TieBreak selects how equally scored products are ordered.
type TieBreak string

const (
	// TieBreakRecency orders newer products first, then by id.
	TieBreakRecency TieBreak = "recency"

	// TieBreakID orders by product id ascending.
	TieBreakID TieBreak = "id"
)

// AnonymousPolicy selects what anonymous callers receive.
type AnonymousPolicy string

const (
	// AnonymousEmpty returns an empty list.
	AnonymousEmpty AnonymousPolicy = "empty"

	// AnonymousNewest returns the newest products.
	AnonymousNewest AnonymousPolicy = "newest"

	// AnonymousFeatured returns featured products newest first, padded with
	// the newest products.
	AnonymousFeatured AnonymousPolicy = "featured"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Weights are the interaction matrix increments per event kind.
	Weights InteractionWeights `json:"weights"`

	// SeedWeights are the anchor weights per seed source.
	SeedWeights SeedWeights `json:"seed_weights"`

	// ContentSimilarity names the content scorer ("jaccard" or "tfidf").
	ContentSimilarity string `json:"content_similarity"`

	// TieBreak orders equally scored products.
	TieBreak TieBreak `json:"tie_break"`

	// AnonymousPolicy decides what anonymous callers receive.
	AnonymousPolicy AnonymousPolicy `json:"anonymous_policy"`

	// KNeighbors is the neighbor count for collaborative queries.
	// Clamped to the available profiles at query time.
	KNeighbors int `json:"k_neighbors"`

	// RecentViewWindow bounds how old a view can be to count as a seed.
	// Zero counts every view.
	RecentViewWindow time.Duration `json:"recent_view_window"`

	// InteractionWindow bounds the events fed to the matrix. Zero uses
	// the whole history.
	InteractionWindow time.Duration `json:"interaction_window"`

	// MatrixMaxAge is the staleness bound of the interaction matrix. A
	// request finding an older matrix rebuilds it. Zero disables lazy
	// rebuilds; the matrix then only changes on Train.
	MatrixMaxAge time.Duration `json:"matrix_max_age"`

	// TFIDF configures the content feature space.
	TFIDF TFIDFConfig `json:"tfidf"`

	// Limits contains request limits.
	Limits LimitsConfig `json:"limits"`

	// Cache contains response cache parameters.
	Cache CacheConfig `json:"cache"`

	// TrainingTimeout bounds a single Train run.
	TrainingTimeout time.Duration `json:"training_timeout"`
}

// InteractionWeights are the per-kind score increments of the interaction
// matrix.
type InteractionWeights struct {
	SearchMatch   float64 `json:"search_match"`
	SearchText    float64 `json:"search_text"`
	CartAdd       float64 `json:"cart_add"`
	OrderComplete float64 `json:"order_complete"`
	ProductView   float64 `json:"product_view"`
}

// Table converts the weights to an algorithms.WeightTable.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w InteractionWeights) Table() algorithms.WeightTable {
	return algorithms.WeightTable{
		models.SourceSearchMatch:   w.SearchMatch,
		models.SourceSearchText:    w.SearchText,
		models.SourceCartAdd:       w.CartAdd,
		models.SourceOrderComplete: w.OrderComplete,
		models.SourceProductView:   w.ProductView,
	}
}

// SeedWeights are the anchor weights per seed source.
type SeedWeights struct {
	// Cart applies to products in the active cart. Default: 2.0.
	Cart float64 `json:"cart"`

	// Order applies to products of completed orders. Default: 2.0.
	Order float64 `json:"order"`

	// View applies to recently viewed products. Default: 1.5.
	View float64 `json:"view"`

	// SearchMatch applies to searches that matched a product. Default: 1.0.
	SearchMatch float64 `json:"search_match"`

	// SearchTextDiscount multiplies the similarity of the best catalog match
	// of a free-text search. Default: 0.8.
	SearchTextDiscount float64 `json:"search_text_discount"`
}

// TFIDFConfig configures the content vectorizer.
type TFIDFConfig struct {
	// MaxFeatures caps the vocabulary. Zero keeps every term.
	MaxFeatures int `json:"max_features"`

	// StopWords removes common English words.
	StopWords bool `json:"stop_words"`
}

// Options converts the config to vectorizer options.
func (c TFIDFConfig) Options() similarity.TFIDFOptions {
	return similarity.TFIDFOptions{StopWords: c.StopWords, MaxFeatures: c.MaxFeatures}
}

// LimitsConfig contains request limits.
type LimitsConfig struct {
	// DefaultTopN is used when a request does not specify TopN.
	// Default: 8.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN caps TopN.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`
}

// CacheConfig contains response cache parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 30s.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached users.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`
}

// DefaultConfig returns a Config with the storefront defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: InteractionWeights{
			SearchMatch:   1,
			SearchText:    0,
			CartAdd:       1,
			OrderComplete: 2,
			ProductView:   1,
		},
		SeedWeights: SeedWeights{
			Cart:               2.0,
			Order:              2.0,
			View:               1.5,
			SearchMatch:        1.0,
			SearchTextDiscount: 0.8,
		},
		ContentSimilarity: similarity.NameJaccard,
		TieBreak:          TieBreakRecency,
		AnonymousPolicy:   AnonymousFeatured,
		KNeighbors:        5,
		RecentViewWindow:  30 * 24 * time.Hour,
		MatrixMaxAge:      5 * time.Minute,
		TFIDF: TFIDFConfig{
			MaxFeatures: 0,
			StopWords:   false,
		},
		Limits: LimitsConfig{
			DefaultTopN: 8,
			MaxTopN:     100,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        30 * time.Second,
			MaxEntries: 10000,
		},
		TrainingTimeout: 5 * time.Minute,
	}
}

// Validate checks the configuration for errors.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	weights := map[string]float64{
		"weights.search_match":              c.Weights.SearchMatch,
		"weights.search_text":               c.Weights.SearchText,
		"weights.cart_add":                  c.Weights.CartAdd,
		"weights.order_complete":            c.Weights.OrderComplete,
		"weights.product_view":              c.Weights.ProductView,
		"seed_weights.cart":                 c.SeedWeights.Cart,
		"seed_weights.order":                c.SeedWeights.Order,
		"seed_weights.view":                 c.SeedWeights.View,
		"seed_weights.search_match":         c.SeedWeights.SearchMatch,
		"seed_weights.search_text_discount": c.SeedWeights.SearchTextDiscount,
	}
	for name, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("%s must be finite and non-negative, got %f", name, w)
		}
	}
	if c.SeedWeights.SearchTextDiscount > 1 {
		return fmt.Errorf("seed_weights.search_text_discount must be in [0, 1], got %f", c.SeedWeights.SearchTextDiscount)
	}

	if !similarity.ValidName(c.ContentSimilarity) {
		return fmt.Errorf("content_similarity must be %q or %q, got %q", similarity.NameJaccard, similarity.NameTFIDF, c.ContentSimilarity)
	}

	switch c.TieBreak {
	case TieBreakRecency, TieBreakID:
	default:
		return fmt.Errorf("tie_break must be %q or %q, got %q", TieBreakRecency, TieBreakID, c.TieBreak)
	}

	switch c.AnonymousPolicy {
	case AnonymousEmpty, AnonymousNewest, AnonymousFeatured:
	default:
		return fmt.Errorf("anonymous_policy must be one of empty, newest, featured; got %q", c.AnonymousPolicy)
	}

	if c.KNeighbors < 1 {
		return fmt.Errorf("k_neighbors must be positive, got %d", c.KNeighbors)
	}
	if c.RecentViewWindow < 0 || c.InteractionWindow < 0 || c.MatrixMaxAge < 0 {
		return fmt.Errorf("recent_view_window, interaction_window and matrix_max_age must be non-negative")
	}
	if c.TFIDF.MaxFeatures < 0 {
		return fmt.Errorf("tfidf.max_features must be non-negative, got %d", c.TFIDF.MaxFeatures)
	}

	if c.Limits.DefaultTopN < 1 {
		return fmt.Errorf("limits.default_top_n must be positive, got %d", c.Limits.DefaultTopN)
	}
	if c.Limits.MaxTopN < c.Limits.DefaultTopN {
		return fmt.Errorf("limits.max_top_n must be >= limits.default_top_n, got %d < %d", c.Limits.MaxTopN, c.Limits.DefaultTopN)
	}

	if c.Cache.Enabled && (c.Cache.TTL <= 0 || c.Cache.MaxEntries < 1) {
		return fmt.Errorf("cache.ttl and cache.max_entries must be positive when the cache is enabled")
	}
	if c.TrainingTimeout <= 0 {
		return fmt.Errorf("training_timeout must be positive, got %v", c.TrainingTimeout)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	// All nested structs contain only value types
	clone := *c
	return &clone
}
