// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/toolhub/config.yaml",
	"/etc/toolhub/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/toolhub.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
			ReadOnly:  false,
			SeedDemo:  false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
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
			InteractionWindow: 0,
			Weights: WeightsConfig{
				SearchMatch:   1,
				SearchText:    0,
				CartAdd:       1,
				OrderComplete: 2,
				ProductView:   1,
			},
			SeedWeights: SeedWeightsConfig{
				Cart:               2.0,
				Order:              2.0,
				View:               1.5,
				SearchMatch:        1.0,
				SearchTextDiscount: 0.8,
			},
			CacheTTL:         30 * time.Second,
			CacheSize:        10000,
			TFIDFMaxFeatures: 0,
			TFIDFStopWords:   false,
		},
		Snapshot: SnapshotConfig{
			Enabled: false,
			Path:    "/data/snapshots",
			Retain:  3,
		},
		Events: EventsConfig{
			Enabled:              false,
			Transport:            "memory",
			NATSURL:              "nats://127.0.0.1:4222",
			StoreDir:             "/data/nats",
			Host:                 "127.0.0.1",
			Port:                 4222,
			CatalogTopic:         "catalog.changed",
			InteractionTopic:     "interaction.recorded",
			DurableName:          "toolhub-recommend",
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			CloseTimeout:         30 * time.Second,
			MatrixDebounce:       10 * time.Second,
		},
		Breaker: BreakerConfig{
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			FailureRatio: 0.6,
			MinRequests:  10,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Database mappings
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"duckdb_read_only":  "database.read_only",
	"seed_demo_data":    "database.seed_demo",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendation engine mappings
	"recommend_enabled":            "recommend.enabled",
	"recommend_train_on_startup":   "recommend.train_on_startup",
	"recommend_train_interval":     "recommend.train_interval",
	"recommend_training_timeout":   "recommend.training_timeout",
	"recommend_matrix_max_age":     "recommend.matrix_max_age",
	"recommend_default_top_n":      "recommend.default_top_n",
	"recommend_max_top_n":          "recommend.max_top_n",
	"recommend_k_neighbors":        "recommend.k_neighbors",
	"recommend_content_similarity": "recommend.content_similarity",
	"recommend_tie_break":          "recommend.tie_break",
	"recommend_anonymous_policy":   "recommend.anonymous_policy",
	"recommend_recent_view_window": "recommend.recent_view_window",
	"recommend_interaction_window": "recommend.interaction_window",
	"recommend_cache_ttl":          "recommend.cache_ttl",
	"recommend_cache_size":         "recommend.cache_size",
	"recommend_tfidf_max_features": "recommend.tfidf_max_features",
	"recommend_tfidf_stop_words":   "recommend.tfidf_stop_words",
	// Interaction matrix weights
	"recommend_weight_search_match":   "recommend.weights.search_match",
	"recommend_weight_search_text":    "recommend.weights.search_text",
	"recommend_weight_cart_add":       "recommend.weights.cart_add",
	"recommend_weight_order_complete": "recommend.weights.order_complete",
	"recommend_weight_product_view":   "recommend.weights.product_view",
	// Seed weights
	"recommend_seed_cart":                 "recommend.seed_weights.cart",
	"recommend_seed_order":                "recommend.seed_weights.order",
	"recommend_seed_view":                 "recommend.seed_weights.view",
	"recommend_seed_search_match":         "recommend.seed_weights.search_match",
	"recommend_seed_search_text_discount": "recommend.seed_weights.search_text_discount",

	// Snapshot mappings
	"snapshot_enabled": "snapshot.enabled",
	"snapshot_path":    "snapshot.path",
	"snapshot_retain":  "snapshot.retain",

	// Event transport mappings
	"events_enabled":           "events.enabled",
	"events_transport":         "events.transport",
	"nats_url":                 "events.nats_url",
	"nats_store_dir":           "events.store_dir",
	"nats_host":                "events.host",
	"nats_port":                "events.port",
	"events_catalog_topic":     "events.catalog_topic",
	"events_interaction_topic": "events.interaction_topic",
	"events_durable_name":      "events.durable_name",
	"events_retry_count":       "events.retry_count",
	"events_retry_interval":    "events.retry_initial_interval",
	"events_close_timeout":     "events.close_timeout",
	"events_matrix_debounce":   "events.matrix_debounce",

	// Circuit breaker mappings
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_failure_ratio": "breaker.failure_ratio",
	"breaker_min_requests":  "breaker.min_requests",

	// Security mappings
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - DUCKDB_PATH -> database.path
//   - HTTP_PORT -> server.port
//   - RECOMMEND_TIE_BREAK -> recommend.tie_break
//
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
