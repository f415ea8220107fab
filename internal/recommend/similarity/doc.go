// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

// Package similarity provides text tokenization and pairwise text similarity.
//
// Two interchangeable strategies implement Scorer:
//
//   - JaccardScorer: lower-cased whitespace token sets, |a∩b| / |a∪b|.
//     No stemming and no stop-word removal.
//   - TFIDFScorer: smoothed TF-IDF term vectors compared by cosine.
//
// Use New to select a strategy by name:
//
//	scorer, err := similarity.New(similarity.NameTFIDF, corpus, similarity.TFIDFOptions{})
//	sim := scorer.Similarity("drill power tool", "drill bit set")
package similarity
