// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package config

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateLogging,
		c.validateRecommend,
		c.validateSnapshot,
		c.validateEvents,
		c.validateBreaker,
		c.validateSecurity,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	if c.Database.ReadOnly && c.Database.SeedDemo {
		return fmt.Errorf("SEED_DEMO_DATA cannot be used with DUCKDB_READ_ONLY")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be trace, debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

//nolint:gocyclo // validation needs to check many fields
func (c *Config) validateRecommend() error {
	r := &c.Recommend
	if !r.Enabled {
		return nil
	}

	if r.TrainInterval < 0 || r.MatrixMaxAge < 0 || r.RecentViewWindow < 0 || r.InteractionWindow < 0 || r.CacheTTL < 0 {
		return fmt.Errorf("recommend durations must be non-negative")
	}
	if r.TrainingTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_TRAINING_TIMEOUT must be positive, got %v", r.TrainingTimeout)
	}
	if r.DefaultTopN < 1 || r.MaxTopN < r.DefaultTopN {
		return fmt.Errorf("recommend top_n limits invalid: default %d, max %d", r.DefaultTopN, r.MaxTopN)
	}
	if r.KNeighbors < 1 {
		return fmt.Errorf("RECOMMEND_K_NEIGHBORS must be positive, got %d", r.KNeighbors)
	}
	if r.CacheTTL > 0 && r.CacheSize < 1 {
		return fmt.Errorf("RECOMMEND_CACHE_SIZE must be positive when the cache is enabled, got %d", r.CacheSize)
	}
	if r.TFIDFMaxFeatures < 0 {
		return fmt.Errorf("RECOMMEND_TFIDF_MAX_FEATURES must be non-negative, got %d", r.TFIDFMaxFeatures)
	}

	switch r.ContentSimilarity {
	case "jaccard", "tfidf":
	default:
		return fmt.Errorf("RECOMMEND_CONTENT_SIMILARITY must be jaccard or tfidf, got %q", r.ContentSimilarity)
	}
	switch r.TieBreak {
	case "recency", "id":
	default:
		return fmt.Errorf("RECOMMEND_TIE_BREAK must be recency or id, got %q", r.TieBreak)
	}
	switch r.AnonymousPolicy {
	case "empty", "newest", "featured":
	default:
		return fmt.Errorf("RECOMMEND_ANONYMOUS_POLICY must be empty, newest or featured, got %q", r.AnonymousPolicy)
	}

	weights := []float64{
		r.Weights.SearchMatch, r.Weights.SearchText, r.Weights.CartAdd, r.Weights.OrderComplete, r.Weights.ProductView,
		r.SeedWeights.Cart, r.SeedWeights.Order, r.SeedWeights.View, r.SeedWeights.SearchMatch, r.SeedWeights.SearchTextDiscount,
	}
	for _, w := range weights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("recommend weights must be finite and non-negative, got %v", w)
		}
	}
	if r.SeedWeights.SearchTextDiscount > 1 {
		return fmt.Errorf("RECOMMEND_SEED_SEARCH_TEXT_DISCOUNT must be at most 1, got %v", r.SeedWeights.SearchTextDiscount)
	}
	return nil
}

func (c *Config) validateSnapshot() error {
	if !c.Snapshot.Enabled {
		return nil
	}
	if c.Snapshot.Path == "" {
		return fmt.Errorf("SNAPSHOT_PATH is required when SNAPSHOT_ENABLED=true")
	}
	if c.Snapshot.Retain < 1 {
		return fmt.Errorf("SNAPSHOT_RETAIN must be positive, got %d", c.Snapshot.Retain)
	}
	return nil
}

func (c *Config) validateEvents() error {
	e := &c.Events
	if !e.Enabled {
		return nil
	}

	switch e.Transport {
	case "memory":
	case "nats":
		if err := validateNATSURL(e.NATSURL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
	case "embedded":
		if e.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required for the embedded transport")
		}
		if e.Port < 1 || e.Port > 65535 {
			return fmt.Errorf("NATS_PORT must be between 1 and 65535, got %d", e.Port)
		}
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be memory, nats or embedded, got %q", e.Transport)
	}

	if e.CatalogTopic == "" || e.InteractionTopic == "" {
		return fmt.Errorf("event topics must not be empty")
	}
	if e.RetryCount < 0 {
		return fmt.Errorf("EVENTS_RETRY_COUNT must be non-negative, got %d", e.RetryCount)
	}
	if e.MatrixDebounce < 0 {
		return fmt.Errorf("EVENTS_MATRIX_DEBOUNCE must be non-negative, got %v", e.MatrixDebounce)
	}
	return nil
}

func (c *Config) validateBreaker() error {
	b := &c.Breaker
	if b.FailureRatio <= 0 || b.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got %v", b.FailureRatio)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive, got %v", b.Timeout)
	}
	if b.MaxRequests < 1 {
		return fmt.Errorf("BREAKER_MAX_REQUESTS must be positive")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

// ShouldWarnAboutCORS reports a wildcard CORS origin in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.IsProduction() {
		return false
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// validateNATSURL validates that the NATS URL is properly formatted
// Supports: nats://, tls://, and ws:// schemes with IP addresses/hostnames and optional ports
func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222)")
	}

	return nil
}
