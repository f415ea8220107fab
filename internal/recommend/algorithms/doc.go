// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

// Package algorithms implements the models behind the hybrid product
// recommender.
//
// # Components
//
//   - InteractionMatrix / BuildMatrix: sparse user x product scores aggregated
//     from behavioral events through a configurable WeightTable
//   - NeighborIndex: cosine k-nearest-neighbor index over matrix rows (users)
//     or columns (products), with k clamping and a popularity fallback
//   - FeatureSpace: TF-IDF vectors of catalog text with a cosine neighbor index
//   - Popularity: column-sum ranking
//
// # Determinism
//
// Every ranking breaks ties by key ascending, and matrix keys are kept
// sorted, so identical inputs always produce identical outputs.
//
// # Thread Safety
//
// Models are built once and never mutated afterwards. Concurrent reads are
// safe; a refresh builds a new model and the caller swaps the reference.
//
// # Usage Example
//
//	m, stats := algorithms.BuildMatrix(events, catalog, algorithms.DefaultWeightTable())
//	users := algorithms.NewNeighborIndex(m, algorithms.AxisUsers)
//	res := users.Recommend("42", 3, 16)
//	if res.Popularity {
//	    // too few users to compare; res.ProductIDs is the popularity ranking
//	}
package algorithms
