// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package recommend

import (
	"sort"
	"time"

	"github.com/tomtom215/toolhub/internal/models"
	"github.com/tomtom215/toolhub/internal/recommend/algorithms"
)

// Seed is one anchor of a user's current interest.
type Seed struct {
	// ProductID is the anchor product.
	ProductID string `json:"product_id"`

	// Weight is the confidence of the anchor. Always finite and >= 0.
	Weight float64 `json:"weight"`

	// Source is the signal that produced the winning weight.
	Source models.SourceKind `json:"source"`
}

// SeedSet maps product id to seed. A product recurring across sources keeps
// only its maximum weight; weights are a priority signal, not additive.
type SeedSet map[string]Seed

// Add records a seed, keeping the larger weight when productID is already
// present. Non-positive weights are ignored.
func (s SeedSet) Add(productID string, weight float64, source models.SourceKind) {
	if productID == "" || weight <= 0 {
		return
	}
	if cur, ok := s[productID]; ok && cur.Weight >= weight {
		return
	}
	s[productID] = Seed{ProductID: productID, Weight: weight, Source: source}
}

// Sorted returns the seeds by weight descending, ties by product id.
func (s SeedSet) Sorted() []Seed {
	out := make([]Seed, 0, len(s))
	for _, seed := range s {
		out = append(out, seed)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// Tier identifies which stage of the ranking pipeline produced a response.
type Tier string

// Ranking tiers, from most to least personalized.
const (
	TierHybrid    Tier = "hybrid"     // collaborative candidates scored against seeds
	TierContent   Tier = "content"    // full catalog scored against seeds
	TierColdStart Tier = "cold_start" // no seeds, newest products
	TierAnonymous Tier = "anonymous"  // anonymous policy list
	TierSimilar   Tier = "similar"    // item-to-item
	TierCategory  Tier = "category"   // same-category products
	TierNewest    Tier = "newest"     // newest catalog products
	TierEmpty     Tier = "empty"      // nothing to recommend
)

// AllTiers returns every tier, for metrics registration.
func AllTiers() []Tier {
	return []Tier{TierHybrid, TierContent, TierColdStart, TierAnonymous, TierSimilar, TierCategory, TierNewest, TierEmpty}
}

// Request is a personalized recommendation request.
type Request struct {
	// UserID identifies the user. Empty means anonymous.
	UserID string `json:"user_id"`

	// TopN is the number of products wanted. Zero uses the configured default.
	TopN int `json:"top_n"`

	// Exclude adds product ids to the exclusion set (the active cart is
	// always excluded).
	Exclude []string `json:"exclude,omitempty"`

	// RequestID is propagated to logs.
	RequestID string `json:"request_id,omitempty"`

	// SkipCache forces a fresh computation.
	SkipCache bool `json:"skip_cache,omitempty"`
}

// Response is a ranked recommendation list with diagnostics.
type Response struct {
	// ProductIDs is the ranked list: no duplicates, no exclusions, len <= TopN.
	ProductIDs []string `json:"product_ids"`

	// Tier is the pipeline stage that produced the head of the list.
	Tier Tier `json:"tier"`

	// Fallbacks lists the degraded conditions met along the way.
	Fallbacks []string `json:"fallbacks,omitempty"`

	// Seeds is the number of seeds used.
	Seeds int `json:"seeds"`

	// Candidates is the size of the scored candidate pool.
	Candidates int `json:"candidates"`

	// Padded is the number of trailing products added by recency padding.
	Padded int `json:"padded"`

	// Cached is true when served from the response cache.
	Cached bool `json:"cached"`

	// ModelVersion is the snapshot version used.
	ModelVersion int64 `json:"model_version"`

	// LatencyMS is the end-to-end latency.
	LatencyMS int64 `json:"latency_ms"`
}

// TrainResult reports the outcome of a Train call.
type TrainResult struct {
	// Trained is false when the catalog was empty.
	Trained bool `json:"trained"`

	// ProductsIndexed is the number of products in the feature space.
	ProductsIndexed int `json:"products_indexed"`

	// VocabularySize is the number of TF-IDF terms.
	VocabularySize int `json:"vocabulary_size"`

	// MatrixUsers and MatrixProducts size the interaction matrix.
	MatrixUsers    int `json:"matrix_users"`
	MatrixProducts int `json:"matrix_products"`

	// Matrix reports how interaction events were applied.
	Matrix algorithms.BuildStats `json:"matrix"`

	// ModelVersion is the version of the swapped-in snapshot.
	ModelVersion int64 `json:"model_version"`

	// DurationMS is how long training took.
	DurationMS int64 `json:"duration_ms"`
}

// TrainingStatus represents the current training state.
type TrainingStatus struct {
	// IsTraining indicates whether training is currently in progress.
	IsTraining bool `json:"is_training"`

	// Trained is true when a non-empty model is being served.
	Trained bool `json:"trained"`

	// LastTrainedAt is when training last completed.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// LastTrainingDurationMS is how long the last training took.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError contains the last training error, if any.
	LastError string `json:"last_error,omitempty"`

	// ProductsIndexed is the number of products in the feature space.
	ProductsIndexed int `json:"products_indexed"`

	// MatrixUsers and MatrixProducts size the current interaction matrix.
	MatrixUsers    int `json:"matrix_users"`
	MatrixProducts int `json:"matrix_products"`

	// MatrixBuiltAt is when the interaction matrix was last rebuilt.
	MatrixBuiltAt time.Time `json:"matrix_built_at"`

	// ModelVersion is the current snapshot version.
	ModelVersion int64 `json:"model_version"`

	// Restored is true when the feature space was loaded from a snapshot.
	Restored bool `json:"restored"`
}

// Metrics contains recommendation engine counters for observability.
type Metrics struct {
	RequestCount    int64 `json:"request_count"`
	CacheHits       int64 `json:"cache_hits"`
	CacheMisses     int64 `json:"cache_misses"`
	ErrorCount      int64 `json:"error_count"`
	TrainingCount   int64 `json:"training_count"`
	MatrixRefreshes int64 `json:"matrix_refreshes"`

	// TierCounts counts responses per tier.
	TierCounts map[Tier]int64 `json:"tier_counts"`

	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`
	ProductsIndexed        int   `json:"products_indexed"`
	ModelVersion           int64 `json:"model_version"`
}

// Fallback reasons reported in Response.Fallbacks.
const (
	FallbackAnonymous      = "anonymous"
	FallbackEmptyCatalog   = "empty_catalog"
	FallbackNoSeeds        = "no_seeds"
	FallbackPopularity     = "popularity"
	FallbackFullCatalog    = "full_catalog"
	FallbackPadded         = "padded"
	FallbackUnknownProduct = "unknown_product"
	FallbackNoNeighbors    = "no_neighbors"
)
