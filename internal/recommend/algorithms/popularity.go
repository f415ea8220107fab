// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package algorithms

// Popularity ranks products by their column sum in the interaction matrix.
// It is the substitute for neighbor similarity when there are too few rows
// to compare against.
//
//	score(product) = sum over users of matrix[user][product]
//
// Ties are broken by product ID ascending. n < 0 returns every product.
func Popularity(m *InteractionMatrix, n int) []string {
	if m == nil || m.IsEmpty() || n == 0 {
		return []string{}
	}
	return topIDs(sortScored(m.ColumnSums()), n)
}

// PopularityScores returns products with their column sums, most popular first.
func PopularityScores(m *InteractionMatrix) []ScoredID {
	if m == nil || m.IsEmpty() {
		return []ScoredID{}
	}
	return sortScored(m.ColumnSums())
}
