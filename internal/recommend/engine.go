// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/toolhub/internal/cache"
	"github.com/tomtom215/toolhub/internal/models"
	"github.com/tomtom215/toolhub/internal/recommend/algorithms"
	"github.com/tomtom215/toolhub/internal/recommend/similarity"
	"github.com/tomtom215/toolhub/internal/recommend/storage"
)

// SnapshotStore persists trained content models for warm starts.
// Implemented by storage.BadgerStore.
type SnapshotStore interface {
	Save(ctx context.Context, snap *storage.Snapshot) (*storage.Metadata, error)
	Load(ctx context.Context) (*storage.Snapshot, *storage.Metadata, error)
}

// Engine is the hybrid recommender. It owns the current model snapshot and
// answers ranking queries against it. It is safe for concurrent use.
type Engine struct {
	config atomic.Pointer[Config]
	logger zerolog.Logger

	// Model snapshot, swapped atomically
	model   atomic.Pointer[model]
	version atomic.Int64

	// Training and matrix refresh
	trainMu     sync.Mutex
	refreshMu   sync.Mutex
	matrixDirty atomic.Bool

	statusMu sync.RWMutex
	status   TrainingStatus

	// Per-user response cache
	cache *cache.LRU[string, cachedResponse]

	// Metrics
	requestCount    atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
	errorCount      atomic.Int64
	trainingCount   atomic.Int64
	matrixRefreshes atomic.Int64
	tierMu          sync.Mutex
	tierCounts      map[Tier]int64

	dataProvider DataProvider
	snapshots    SnapshotStore

	now func() time.Time
}

// cachedResponse is a response remembered for one user.
type cachedResponse struct {
	topN     int
	inputs   uint64 // userInputs fingerprint
	response Response
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	maxEntries := cfg.Cache.MaxEntries
	if maxEntries < 1 {
		maxEntries = 1
	}

	e := &Engine{
		logger:     logger.With().Str("component", "recommend").Logger(),
		cache:      cache.NewLRU[string, cachedResponse](maxEntries, cfg.Cache.TTL),
		tierCounts: make(map[Tier]int64),
		now:        time.Now,
	}
	e.config.Store(cfg.Clone())

	return e, nil
}

// SetDataProvider sets the data provider for training and prediction.
func (e *Engine) SetDataProvider(dp DataProvider) {
	e.dataProvider = dp
}

// SetSnapshotStore enables snapshot persistence after each training run.
func (e *Engine) SetSnapshotStore(store SnapshotStore) {
	e.snapshots = store
}

// RecommendForUser returns up to topN product ids for a user. An empty
// userID is anonymous and receives the configured anonymous list.
func (e *Engine) RecommendForUser(ctx context.Context, userID string, topN int) ([]string, error) {
	resp, err := e.Recommend(ctx, Request{UserID: userID, TopN: topN})
	if err != nil {
		return nil, err
	}
	return resp.ProductIDs, nil
}

// Recommend ranks products for a user.
//
// The result never contains duplicates or excluded products and holds at
// most TopN ids. It is shorter only when the catalog runs out of eligible
// products. Data-store failures are returned; every other degraded
// condition falls through to the next tier and is reported in
// Response.Fallbacks.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := e.now()
	e.requestCount.Add(1)

	if e.dataProvider == nil {
		e.errorCount.Add(1)
		return nil, ErrProviderNotSet
	}

	cfg := e.config.Load()
	req = e.prepareRequest(req, cfg)
	logger := e.createRequestLogger(req)

	snap, err := e.snapshot(ctx)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	if req.UserID == "" {
		logger.Debug().Err(ErrInvalidCaller).Str("policy", string(cfg.AnonymousPolicy)).Msg("anonymous request")
		return e.finish(e.anonymous(snap, req, cfg), snap, start), nil
	}

	if !snap.trained() {
		logger.Debug().Err(ErrEmptyInput).Msg("no catalog, returning empty list")
		return e.finish(&Response{ProductIDs: []string{}, Tier: TierEmpty, Fallbacks: []string{FallbackEmptyCatalog}}, snap, start), nil
	}

	// Events and cart are always read; the cache only saves ranking work.
	in, err := e.loadUserInputs(ctx, req.UserID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	inputs := in.fingerprint()

	cacheable := cfg.Cache.Enabled && !req.SkipCache && len(req.Exclude) == 0
	if cacheable {
		if resp := e.tryGetCachedResponse(req, snap, inputs, start); resp != nil {
			logger.Debug().Msg("cache hit")
			return resp, nil
		}
	}

	seeds := extractSeeds(snap, in, cfg, e.now(), logger)
	excluded := toSet(in.cart, req.Exclude)

	var resp *Response
	if len(seeds) == 0 {
		resp = &Response{
			ProductIDs: snap.newest(req.TopN, excluded),
			Tier:       TierColdStart,
			Fallbacks:  []string{FallbackNoSeeds},
		}
	} else {
		resp = e.rank(snap, req, cfg, seeds, excluded, logger)
	}

	resp = e.finish(resp, snap, start)
	if cacheable {
		e.cache.Add(req.UserID, cachedResponse{topN: req.TopN, inputs: inputs, response: *resp})
	}

	logger.Debug().
		Str("tier", string(resp.Tier)).
		Int("seeds", resp.Seeds).
		Int("candidates", resp.Candidates).
		Int("returned", len(resp.ProductIDs)).
		Int64("latency_ms", resp.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// rank runs the hybrid pipeline for a user with seeds.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) rank(snap *model, req Request, cfg *Config, seeds SeedSet, excluded map[string]struct{}, logger zerolog.Logger) *Response {
	sorted := seeds.Sorted()
	pool := buildCandidatePool(snap, req.UserID, sorted, excluded, cfg.KNeighbors, req.TopN)

	resp := &Response{Tier: TierHybrid, Seeds: len(sorted), Candidates: len(pool.ids)}
	if pool.popularity {
		logger.Debug().Err(ErrDegenerateNeighborRequest).Int("k", cfg.KNeighbors).Msg("too few users, using popularity")
		resp.Fallbacks = append(resp.Fallbacks, FallbackPopularity)
	}
	if !pool.collaborative {
		resp.Tier = TierContent
		resp.Fallbacks = append(resp.Fallbacks, FallbackFullCatalog)
	}

	ranked := rankScored(snap, scoreCandidates(snap, sorted, pool.ids), cfg.TieBreak)
	resp.ProductIDs, resp.Padded = padNewest(snap, ranked, excluded, req.TopN)
	if resp.Padded > 0 {
		resp.Fallbacks = append(resp.Fallbacks, FallbackPadded)
	}
	return resp
}

// anonymous applies the anonymous policy. Anonymous users never receive
// personalized results.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) anonymous(snap *model, req Request, cfg *Config) *Response {
	resp := &Response{Tier: TierAnonymous, Fallbacks: []string{FallbackAnonymous}}
	excluded := toSet(req.Exclude)

	switch cfg.AnonymousPolicy {
	case AnonymousNewest:
		resp.ProductIDs = snap.newest(req.TopN, excluded)
	case AnonymousFeatured:
		featured := snap.newestMatching(req.TopN, excluded, func(p *models.Product) bool { return p.Featured })
		resp.ProductIDs, resp.Padded = padNewest(snap, featured, excluded, req.TopN)
	default:
		resp.ProductIDs = []string{}
	}
	return resp
}

// SimilarProducts returns up to topN product ids similar to productID.
func (e *Engine) SimilarProducts(ctx context.Context, productID string, topN int) ([]string, error) {
	resp, err := e.Similar(ctx, productID, topN)
	if err != nil {
		return nil, err
	}
	return resp.ProductIDs, nil
}

// Similar is SimilarProducts with diagnostics.
//
// Products are ordered by ascending distance in the content feature space.
// When the space is untrained or yields fewer than topN related products,
// the list is completed with products of the same category and then with
// the newest products. The product itself is never included.
func (e *Engine) Similar(ctx context.Context, productID string, topN int) (*Response, error) {
	start := e.now()
	e.requestCount.Add(1)

	if e.dataProvider == nil {
		e.errorCount.Add(1)
		return nil, ErrProviderNotSet
	}

	cfg := e.config.Load()
	topN = e.clampTopN(topN, cfg)

	snap, err := e.snapshot(ctx)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	product, ok, err := e.lookupProduct(ctx, snap, productID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	if !ok {
		return e.finish(&Response{ProductIDs: []string{}, Tier: TierEmpty, Fallbacks: []string{FallbackUnknownProduct}}, snap, start), nil
	}

	resp := &Response{Tier: TierSimilar}
	ids := make([]string, 0, topN)
	for _, nb := range snap.features.Neighbors(productID, topN) {
		if nb.Similarity() <= 0 {
			break
		}
		if _, inCatalog := snap.product(nb.Key); inCatalog {
			ids = append(ids, nb.Key)
		}
	}

	if len(ids) < topN {
		if len(ids) == 0 {
			resp.Tier = TierCategory
			resp.Fallbacks = append(resp.Fallbacks, FallbackNoNeighbors)
		}
		skip := toSet(ids, []string{productID})
		if product.CategoryID != "" {
			sameCategory := snap.newestMatching(topN-len(ids), skip, func(p *models.Product) bool {
				return p.CategoryID == product.CategoryID
			})
			ids = append(ids, sameCategory...)
			for _, id := range sameCategory {
				skip[id] = struct{}{}
			}
		}
		if len(ids) == 0 {
			resp.Tier = TierNewest
		}
		padding := snap.newest(topN-len(ids), skip)
		ids = append(ids, padding...)
		resp.Padded = len(padding)
		if resp.Padded > 0 {
			resp.Fallbacks = append(resp.Fallbacks, FallbackPadded)
		}
	}

	resp.ProductIDs = ids
	resp.Candidates = snap.features.Len()
	return e.finish(resp, snap, start), nil
}

// RelatedInCategory returns up to topN products sharing productID's
// category, newest first, excluding the product itself.
func (e *Engine) RelatedInCategory(ctx context.Context, productID string, topN int) ([]string, error) {
	resp, err := e.Related(ctx, productID, topN)
	if err != nil {
		return nil, err
	}
	return resp.ProductIDs, nil
}

// Related is RelatedInCategory with diagnostics. The category listing is
// read from the data provider, so it reflects catalog changes made after
// the last training run.
func (e *Engine) Related(ctx context.Context, productID string, topN int) (*Response, error) {
	start := e.now()
	e.requestCount.Add(1)

	if e.dataProvider == nil {
		e.errorCount.Add(1)
		return nil, ErrProviderNotSet
	}

	topN = e.clampTopN(topN, e.config.Load())

	snap, err := e.snapshot(ctx)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}

	product, ok, err := e.lookupProduct(ctx, snap, productID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, err
	}
	if !ok || product.CategoryID == "" {
		return e.finish(&Response{ProductIDs: []string{}, Tier: TierEmpty, Fallbacks: []string{FallbackUnknownProduct}}, snap, start), nil
	}

	products, err := e.dataProvider.ProductsByCategory(ctx, product.CategoryID)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("get category products: %w", err)
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].NewerThan(&products[j])
	})

	ids := make([]string, 0, topN)
	for i := range products {
		if len(ids) >= topN {
			break
		}
		if products[i].ID != productID {
			ids = append(ids, products[i].ID)
		}
	}

	resp := &Response{ProductIDs: ids, Tier: TierCategory, Candidates: len(products)}
	return e.finish(resp, snap, start), nil
}

// lookupProduct finds a product in the snapshot, falling back to the data
// provider for products added since the last training run.
func (e *Engine) lookupProduct(ctx context.Context, snap *model, productID string) (*models.Product, bool, error) {
	if p, ok := snap.product(productID); ok {
		return p, true, nil
	}

	p, ok, err := e.dataProvider.GetProduct(ctx, productID)
	if err != nil {
		return nil, false, fmt.Errorf("get product: %w", err)
	}
	if !ok {
		e.logger.Debug().Str("product_id", productID).Err(ErrUnresolvableReference).Msg("unknown product")
		return nil, false, nil
	}
	return &p, true, nil
}

// Train rebuilds the content feature space and the interaction matrix from
// the current catalog and events, then swaps in the new snapshot.
// Returns ErrTrainingInProgress if another run holds the lock.
//
// An empty catalog is not an error: the engine is left untrained and the
// result reports Trained=false.
func (e *Engine) Train(ctx context.Context) (TrainResult, error) {
	if !e.trainMu.TryLock() {
		return TrainResult{}, ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	if e.dataProvider == nil {
		return TrainResult{}, ErrProviderNotSet
	}

	cfg := e.config.Load()
	start := e.now()
	e.setTraining()
	e.logger.Info().Msg("starting model training")

	trainCtx, cancel := context.WithTimeout(ctx, cfg.TrainingTimeout)
	defer cancel()

	result, err := e.train(trainCtx, cfg)
	result.DurationMS = e.now().Sub(start).Milliseconds()
	e.finishTraining(result, err)

	if err != nil {
		e.logger.Error().Err(err).Msg("model training failed")
		return result, err
	}

	e.logger.Info().
		Bool("trained", result.Trained).
		Int("products", result.ProductsIndexed).
		Int("users", result.MatrixUsers).
		Int64("version", result.ModelVersion).
		Int64("duration_ms", result.DurationMS).
		Msg("model training complete")

	return result, nil
}

func (e *Engine) train(ctx context.Context, cfg *Config) (TrainResult, error) {
	products, err := e.dataProvider.ListProducts(ctx)
	if err != nil {
		return TrainResult{}, fmt.Errorf("list products: %w", err)
	}

	if len(products) == 0 {
		empty := emptyModel()
		empty.version = e.version.Add(1)
		empty.trainedAt = e.now()
		e.model.Store(empty)
		e.cache.Clear()
		e.logger.Warn().Err(ErrEmptyInput).Msg("catalog is empty, engine left untrained")
		return TrainResult{Trained: false, ModelVersion: empty.version}, nil
	}

	features, err := algorithms.BuildFeatureSpace(ctx, products, cfg.TFIDF.Options())
	if err != nil {
		return TrainResult{}, fmt.Errorf("build feature space: %w", err)
	}

	base, err := newCatalogModel(products, features, cfg.ContentSimilarity, cfg.TFIDF.Options())
	if err != nil {
		return TrainResult{}, fmt.Errorf("build catalog model: %w", err)
	}

	matrix, stats, err := e.buildMatrix(ctx, base, cfg)
	if err != nil {
		return TrainResult{}, err
	}

	next := base.withMatrix(matrix, stats, e.now())
	next.version = e.version.Add(1)
	next.trainedAt = e.now()

	e.model.Store(next)
	e.matrixDirty.Store(false)
	e.cache.Clear()
	e.persist(ctx, next, cfg)

	return TrainResult{
		Trained:         true,
		ProductsIndexed: features.Len(),
		VocabularySize:  features.Vectorizer().VocabularySize(),
		MatrixUsers:     len(matrix.Users()),
		MatrixProducts:  len(matrix.Products()),
		Matrix:          stats,
		ModelVersion:    next.version,
	}, nil
}

// buildMatrix loads interaction events and aggregates them against the
// snapshot catalog.
func (e *Engine) buildMatrix(ctx context.Context, snap *model, cfg *Config) (*algorithms.InteractionMatrix, algorithms.BuildStats, error) {
	since := time.Time{}
	if cfg.InteractionWindow > 0 {
		since = e.now().Add(-cfg.InteractionWindow)
	}

	events, err := e.dataProvider.InteractionEvents(ctx, since)
	if err != nil {
		return nil, algorithms.BuildStats{}, fmt.Errorf("get interaction events: %w", err)
	}

	matrix, stats := algorithms.BuildMatrix(events, snap.products, cfg.Weights.Table())
	if stats.Unresolved > 0 {
		e.logger.Debug().
			Int("unresolved", stats.Unresolved).
			Err(ErrUnresolvableReference).
			Msg("dropped events referencing unknown products")
	}
	return matrix, stats, nil
}

// persist writes the trained content model to the snapshot store. Failures
// are logged; the in-memory model is already live.
func (e *Engine) persist(ctx context.Context, m *model, cfg *Config) {
	if e.snapshots == nil {
		return
	}

	meta, err := e.snapshots.Save(ctx, &storage.Snapshot{
		Version:           m.version,
		TrainedAt:         m.trainedAt,
		ContentSimilarity: cfg.ContentSimilarity,
		Products:          m.products,
		Features:          m.features.State(),
	})
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to persist model snapshot")
		return
	}

	e.logger.Debug().
		Int64("version", meta.Version).
		Int64("size_bytes", meta.SizeBytes).
		Msg("model snapshot saved")
}

// Restore loads the latest persisted snapshot when the engine has no model
// yet. The interaction matrix is rebuilt on the next request. Returns false
// when there is nothing to restore or the snapshot was built with different
// content settings.
func (e *Engine) Restore(ctx context.Context) (bool, error) {
	if e.snapshots == nil {
		return false, nil
	}

	snap, meta, err := e.snapshots.Load(ctx)
	if errors.Is(err, storage.ErrNoSnapshot) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}

	cfg := e.config.Load()
	if snap.Features == nil || snap.ContentSimilarity != cfg.ContentSimilarity || snap.Features.Options != cfg.TFIDF.Options() {
		e.logger.Info().
			Int64("version", meta.Version).
			Msg("snapshot built with different content settings, ignoring")
		return false, nil
	}

	features := algorithms.FeatureSpaceFromState(snap.Features)
	restored, err := newCatalogModel(snap.Products, features, cfg.ContentSimilarity, cfg.TFIDF.Options())
	if err != nil {
		return false, fmt.Errorf("rebuild catalog model: %w", err)
	}

	if snap.Version > e.version.Load() {
		e.version.Store(snap.Version)
	}
	restored.version = e.version.Add(1)
	restored.trainedAt = snap.TrainedAt
	restored.restored = true

	if !e.model.CompareAndSwap(nil, restored) {
		return false, nil
	}
	e.matrixDirty.Store(true)

	e.statusMu.Lock()
	e.status.Restored = true
	e.status.Trained = restored.trained()
	e.status.LastTrainedAt = snap.TrainedAt
	e.status.ProductsIndexed = features.Len()
	e.status.ModelVersion = restored.version
	e.statusMu.Unlock()

	e.logger.Info().
		Int64("version", restored.version).
		Int("products", len(snap.Products)).
		Time("trained_at", snap.TrainedAt).
		Msg("restored model snapshot")

	return true, nil
}

// snapshot returns the model to serve a request with. The first request of
// an untrained engine trains synchronously; a stale matrix is refreshed
// copy-on-write.
func (e *Engine) snapshot(ctx context.Context) (*model, error) {
	snap := e.model.Load()
	if snap == nil {
		if _, err := e.Train(ctx); err != nil && !errors.Is(err, ErrTrainingInProgress) {
			return nil, err
		}
		snap = e.model.Load()
		if snap == nil {
			// Another caller is training; serve an empty model meanwhile.
			return emptyModel(), nil
		}
	}

	if e.matrixStale(snap) {
		snap = e.refreshMatrix(ctx, snap)
	}
	return snap, nil
}

// matrixStale reports whether the snapshot's matrix must be rebuilt.
func (e *Engine) matrixStale(snap *model) bool {
	if !snap.trained() {
		return false
	}
	if e.matrixDirty.Load() {
		return true
	}
	maxAge := e.config.Load().MatrixMaxAge
	return maxAge > 0 && e.now().Sub(snap.matrixBuiltAt) > maxAge
}

// refreshMatrix rebuilds the interaction matrix of snap and swaps in the
// result. Only one refresh runs at a time; concurrent callers keep using
// the stale snapshot. A failed refresh is logged and the stale snapshot is
// served.
func (e *Engine) refreshMatrix(ctx context.Context, snap *model) *model {
	if !e.refreshMu.TryLock() {
		return snap
	}
	defer e.refreshMu.Unlock()

	base := e.model.Load()
	if base == nil {
		return snap
	}
	if base != snap && !e.matrixStale(base) {
		return base
	}

	e.matrixDirty.Store(false)
	matrix, stats, err := e.buildMatrix(ctx, base, e.config.Load())
	if err != nil {
		e.matrixDirty.Store(true)
		e.logger.Warn().Err(err).Msg("matrix refresh failed, serving stale matrix")
		return base
	}

	next := base.withMatrix(matrix, stats, e.now())
	next.version = e.version.Add(1)
	if !e.model.CompareAndSwap(base, next) {
		// Train swapped in a fresher model meanwhile
		return e.model.Load()
	}
	e.matrixRefreshes.Add(1)

	e.statusMu.Lock()
	e.status.MatrixUsers = len(matrix.Users())
	e.status.MatrixProducts = len(matrix.Products())
	e.status.MatrixBuiltAt = next.matrixBuiltAt
	e.status.ModelVersion = next.version
	e.statusMu.Unlock()

	e.logger.Debug().
		Int("users", len(matrix.Users())).
		Int("products", len(matrix.Products())).
		Int64("version", next.version).
		Msg("interaction matrix refreshed")

	return next
}

// InvalidateMatrix marks the interaction matrix stale. The next request
// rebuilds it.
func (e *Engine) InvalidateMatrix() {
	e.matrixDirty.Store(true)
}

// InvalidateUser drops the cached response of a user.
func (e *Engine) InvalidateUser(userID string) {
	e.cache.Remove(userID)
}

// InvalidateCache drops every cached response.
func (e *Engine) InvalidateCache() {
	e.cache.Clear()
}

// IsTrained reports whether a non-empty model is being served.
func (e *Engine) IsTrained() bool {
	return e.model.Load().trained()
}

// setTraining marks training as started.
func (e *Engine) setTraining() {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.status.IsTraining = true
	e.status.LastError = ""
}

// finishTraining records the outcome of a training run.
//
//nolint:gocritic // hugeParam: result passed by value for immutability
func (e *Engine) finishTraining(result TrainResult, err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.status.IsTraining = false
	e.status.LastTrainingDurationMS = result.DurationMS
	if err != nil {
		e.status.LastError = err.Error()
		return
	}

	e.trainingCount.Add(1)
	e.status.Trained = result.Trained
	e.status.Restored = false
	e.status.LastTrainedAt = e.now()
	e.status.ProductsIndexed = result.ProductsIndexed
	e.status.MatrixUsers = result.MatrixUsers
	e.status.MatrixProducts = result.MatrixProducts
	e.status.MatrixBuiltAt = e.status.LastTrainedAt
	e.status.ModelVersion = result.ModelVersion
}

// GetStatus returns the current training status.
func (e *Engine) GetStatus() TrainingStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()
	return e.status
}

// GetMetrics returns the current engine metrics.
func (e *Engine) GetMetrics() Metrics {
	status := e.GetStatus()

	m := Metrics{
		RequestCount:           e.requestCount.Load(),
		CacheHits:              e.cacheHits.Load(),
		CacheMisses:            e.cacheMisses.Load(),
		ErrorCount:             e.errorCount.Load(),
		TrainingCount:          e.trainingCount.Load(),
		MatrixRefreshes:        e.matrixRefreshes.Load(),
		LastTrainingDurationMS: status.LastTrainingDurationMS,
		ProductsIndexed:        status.ProductsIndexed,
		ModelVersion:           status.ModelVersion,
		TierCounts:             make(map[Tier]int64),
	}

	e.tierMu.Lock()
	for tier, n := range e.tierCounts {
		m.TierCounts[tier] = n
	}
	e.tierMu.Unlock()

	return m
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Load().Clone()
}

// UpdateConfig replaces the engine configuration. Cached responses are
// dropped. Changes to the content settings take effect at the next Train.
func (e *Engine) UpdateConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	e.config.Store(cfg.Clone())
	e.cache.Clear()
	e.logger.Info().Msg("configuration updated")

	return nil
}

// prepareRequest applies defaults and generates a request ID if needed.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request, cfg *Config) Request {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	req.TopN = e.clampTopN(req.TopN, cfg)
	return req
}

func (e *Engine) clampTopN(topN int, cfg *Config) int {
	if topN <= 0 {
		topN = cfg.Limits.DefaultTopN
	}
	if topN > cfg.Limits.MaxTopN {
		topN = cfg.Limits.MaxTopN
	}
	return topN
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID).
		Int("top_n", req.TopN).
		Logger()
}

// tryGetCachedResponse returns a copy of the user's cached response when it
// was computed for the same TopN and user inputs against the current
// snapshot.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(req Request, snap *model, inputs uint64, start time.Time) *Response {
	entry, ok := e.cache.Get(req.UserID)
	if !ok || entry.topN != req.TopN || entry.inputs != inputs || entry.response.ModelVersion != snap.version {
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	resp := entry.response
	resp.ProductIDs = append([]string(nil), entry.response.ProductIDs...)
	resp.Fallbacks = append([]string(nil), entry.response.Fallbacks...)
	resp.Cached = true
	resp.LatencyMS = e.now().Sub(start).Milliseconds()
	e.countTier(resp.Tier)
	return &resp
}

// finish stamps a response and records its tier.
func (e *Engine) finish(resp *Response, snap *model, start time.Time) *Response {
	if resp.ProductIDs == nil {
		resp.ProductIDs = []string{}
	}
	resp.ModelVersion = snap.version
	resp.LatencyMS = e.now().Sub(start).Milliseconds()
	e.countTier(resp.Tier)
	return resp
}

func (e *Engine) countTier(tier Tier) {
	e.tierMu.Lock()
	e.tierCounts[tier]++
	e.tierMu.Unlock()
}

// emptyModel returns an untrained snapshot with no catalog.
func emptyModel() *model {
	// The Jaccard scorer cannot fail on an empty corpus.
	m, _ := newCatalogModel(nil, nil, similarity.NameJaccard, similarity.TFIDFOptions{}) //nolint:errcheck // see above
	return m
}
