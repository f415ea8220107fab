// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Configuration Categories:
//
//  1. Infrastructure:
//     - Database: DuckDB store holding the catalog and interaction events
//     - Server: HTTP server configuration
//     - Events: Watermill transport for catalog and interaction notifications
//     - Breaker: Circuit breaker around the data store
//
//  2. Recommendation:
//     - Recommend: Engine weights, neighbor counts, policies and schedules
//     - Snapshot: BadgerDB persistence of trained content models
//
//  3. API & Security:
//     - Security: Rate limiting and CORS
//
//  4. Observability:
//     - Logging: Log levels and output formats
//
// Thread Safety:
// Config is immutable after LoadWithKoanf() and safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Snapshot  SnapshotConfig  `koanf:"snapshot"`
	Events    EventsConfig    `koanf:"events"`
	Breaker   BreakerConfig   `koanf:"breaker"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`   // 0 = use NumCPU
	ReadOnly  bool   `koanf:"read_only"` // Open the storefront database without write access
	SeedDemo  bool   `koanf:"seed_demo"` // Load the demo catalog into an empty database
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds recommendation engine settings.
//
// Environment Variables:
//   - RECOMMEND_ENABLED: Enable the engine (default: true)
//   - RECOMMEND_TRAIN_INTERVAL: Periodic retrain interval (default: 15m)
//   - RECOMMEND_MATRIX_MAX_AGE: Interaction matrix staleness bound (default: 5m)
//   - RECOMMEND_CONTENT_SIMILARITY: jaccard or tfidf (default: jaccard)
//   - RECOMMEND_TIE_BREAK: recency or id (default: recency)
//   - RECOMMEND_ANONYMOUS_POLICY: empty, newest or featured (default: featured)
type RecommendConfig struct {
	// Enabled controls whether the recommendation endpoints are served.
	Enabled bool `koanf:"enabled"`

	// TrainOnStartup trains once before the HTTP server accepts traffic.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// TrainInterval is how often the models are rebuilt. Zero disables
	// periodic training.
	// Default: 15m
	TrainInterval time.Duration `koanf:"train_interval"`

	// TrainingTimeout bounds a single training run.
	// Default: 5m
	TrainingTimeout time.Duration `koanf:"training_timeout"`

	// MatrixMaxAge is the staleness bound of the interaction matrix.
	// Default: 5m
	MatrixMaxAge time.Duration `koanf:"matrix_max_age"`

	DefaultTopN int `koanf:"default_top_n"` // Default: 8
	MaxTopN     int `koanf:"max_top_n"`     // Default: 100
	KNeighbors  int `koanf:"k_neighbors"`   // Default: 5

	ContentSimilarity string `koanf:"content_similarity"`
	TieBreak          string `koanf:"tie_break"`
	AnonymousPolicy   string `koanf:"anonymous_policy"`

	// RecentViewWindow bounds how old a view can be to seed recommendations.
	// Default: 720h (30 days)
	RecentViewWindow time.Duration `koanf:"recent_view_window"`

	// InteractionWindow bounds the events fed to the matrix. Zero uses all.
	InteractionWindow time.Duration `koanf:"interaction_window"`

	Weights     WeightsConfig     `koanf:"weights"`
	SeedWeights SeedWeightsConfig `koanf:"seed_weights"`

	// CacheTTL is how long a user's response is cached. Zero disables the cache.
	// Default: 30s
	CacheTTL  time.Duration `koanf:"cache_ttl"`
	CacheSize int           `koanf:"cache_size"`

	TFIDFMaxFeatures int  `koanf:"tfidf_max_features"`
	TFIDFStopWords   bool `koanf:"tfidf_stop_words"`
}

// WeightsConfig holds the interaction matrix increment per event kind.
type WeightsConfig struct {
	SearchMatch   float64 `koanf:"search_match"`
	SearchText    float64 `koanf:"search_text"`
	CartAdd       float64 `koanf:"cart_add"`
	OrderComplete float64 `koanf:"order_complete"`
	ProductView   float64 `koanf:"product_view"`
}

// SeedWeightsConfig holds the anchor weight per seed source.
type SeedWeightsConfig struct {
	Cart               float64 `koanf:"cart"`
	Order              float64 `koanf:"order"`
	View               float64 `koanf:"view"`
	SearchMatch        float64 `koanf:"search_match"`
	SearchTextDiscount float64 `koanf:"search_text_discount"`
}

// SnapshotConfig holds BadgerDB model snapshot settings.
type SnapshotConfig struct {
	// Enabled persists every trained model and restores the latest one on
	// startup.
	Enabled bool `koanf:"enabled"`

	// Path is the BadgerDB directory.
	// Default: /data/snapshots
	Path string `koanf:"path"`

	// Retain is the number of snapshots kept.
	// Default: 3
	Retain int `koanf:"retain"`
}

// EventsConfig holds the Watermill event transport settings.
//
// Transports:
//   - memory: in-process GoChannel (single instance)
//   - nats: external NATS JetStream server at NATSURL
//   - embedded: NATS JetStream server started in-process
type EventsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Transport string `koanf:"transport"`
	NATSURL   string `koanf:"nats_url"`

	// Embedded server settings
	StoreDir string `koanf:"store_dir"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`

	CatalogTopic     string `koanf:"catalog_topic"`
	InteractionTopic string `koanf:"interaction_topic"`
	DurableName      string `koanf:"durable_name"`

	// Router middleware
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`

	// MatrixDebounce is the minimum gap between interaction matrix
	// invalidations caused by interaction events.
	// Default: 10s
	MatrixDebounce time.Duration `koanf:"matrix_debounce"`
}

// BreakerConfig holds circuit breaker settings for the data store.
type BreakerConfig struct {
	MaxRequests  uint32        `koanf:"max_requests"` // Requests allowed in half-open state
	Interval     time.Duration `koanf:"interval"`     // Count reset period in closed state
	Timeout      time.Duration `koanf:"timeout"`      // Open state duration before half-open
	FailureRatio float64       `koanf:"failure_ratio"`
	MinRequests  uint32        `koanf:"min_requests"`
}

// SecurityConfig holds rate limiting and CORS settings. Authentication is
// performed upstream; the user id arrives in the X-User-ID header.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
