// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

// Package recommend implements the hybrid product recommender of the
// storefront.
//
// # Architecture
//
// A request flows through a fixed pipeline against one immutable model
// snapshot:
//
//   - Seeds: anchor products from the active cart, completed orders, recent
//     views and searches, each source with its own weight
//   - Candidates: user-based neighbor recommendations unioned with the item
//     neighbors of every seed, or the whole catalog when both are empty
//   - Scoring: max over seeds of seed weight times the larger of content
//     similarity and item-item cosine
//   - Padding: the newest eligible products fill any remaining slots
//
// Users without seeds receive the newest products. Anonymous callers
// receive the list selected by Config.AnonymousPolicy.
//
// # Determinism
//
// Identical catalog, events and configuration produce identical output.
// Equal scores are ordered by Config.TieBreak.
//
// # Freshness
//
// Train rebuilds the content feature space and the interaction matrix.
// Between runs the matrix is rebuilt lazily once InvalidateMatrix is called
// or Config.MatrixMaxAge has passed. Per-user inputs (events, cart) are
// always read fresh.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//	engine.SetDataProvider(store)
//
//	ids, err := engine.RecommendForUser(ctx, userID, 8)
//
// # Thread Safety
//
// The engine is safe for concurrent use. Readers load the current snapshot
// pointer without locking; Train and matrix refreshes build a new snapshot
// and swap it in atomically. Concurrent Train calls fail fast with
// ErrTrainingInProgress.
package recommend
