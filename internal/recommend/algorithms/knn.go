// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package algorithms

import (
	"github.com/tomtom215/toolhub/internal/recommend/similarity"
)

// Axis selects which profiles a NeighborIndex compares.
type Axis int

const (
	// AxisUsers indexes matrix rows (user-based collaborative filtering).
	AxisUsers Axis = iota

	// AxisProducts indexes matrix columns (item-based collaborative filtering).
	AxisProducts
)

// String returns the axis name.
func (a Axis) String() string {
	if a == AxisProducts {
		return "products"
	}
	return "users"
}

// NeighborIndex is a cosine nearest-neighbor index over the rows or the
// columns of an interaction matrix.
//
// Cosine is used exclusively: interaction vectors are sparse and what
// matters is relative co-occurrence, not magnitude.
//
// An index is immutable after construction and safe for concurrent use.
type NeighborIndex struct {
	axis   Axis
	matrix *InteractionMatrix
	space  vectorSpace
}

// NewNeighborIndex fits an index over m along axis. A nil matrix is treated
// as empty.
func NewNeighborIndex(m *InteractionMatrix, axis Axis) *NeighborIndex {
	if m == nil {
		m = NewInteractionMatrix()
	}

	ix := &NeighborIndex{axis: axis, matrix: m}
	if axis == AxisProducts {
		ix.space = newVectorSpace(m.Products(), m.cols)
	} else {
		ix.space = newVectorSpace(m.Users(), m.rows)
	}
	return ix
}

// Axis returns the indexed axis.
func (ix *NeighborIndex) Axis() Axis {
	return ix.axis
}

// Len returns the number of indexed profiles.
func (ix *NeighborIndex) Len() int {
	return len(ix.space.keys)
}

// Has reports whether key is indexed.
func (ix *NeighborIndex) Has(key string) bool {
	_, ok := ix.space.vectors[key]
	return ok
}

// ClampK limits a requested neighbor count to the number of other profiles
// (available - 1). A result below 1 means no neighbor query is possible.
func (ix *NeighborIndex) ClampK(k int) int {
	return ix.space.clampK(k)
}

// Query returns the k nearest profiles to key by cosine distance, excluding
// key itself, sorted by ascending distance with ties by key ascending.
// k is clamped to the available profiles. An empty index or an unknown key
// yields an empty list.
func (ix *NeighborIndex) Query(key string, k int) []Neighbor {
	vec, ok := ix.space.vectors[key]
	if !ok {
		return []Neighbor{}
	}
	return ix.space.nearest(vec, key, ix.ClampK(k))
}

// QueryVector returns the k profiles nearest to an arbitrary vector.
func (ix *NeighborIndex) QueryVector(vec similarity.Vector, k int) []Neighbor {
	if k > ix.Len() {
		k = ix.Len()
	}
	return ix.space.nearest(vec, "", k)
}

// Similarity returns the cosine similarity between two indexed profiles.
// The second return value is false when either key is unknown.
func (ix *NeighborIndex) Similarity(a, b string) (float64, bool) {
	return ix.space.similarity(a, b)
}

// CollaborativeResult is the output of Recommend.
type CollaborativeResult struct {
	// ProductIDs is the ranked recommendation list.
	ProductIDs []string

	// K is the neighbor count actually used after clamping.
	K int

	// Popularity is true when clamping left no neighbors and the list is the
	// popularity ranking instead.
	Popularity bool
}

// Recommend returns up to n products favoured by the user's nearest
// neighbors and not yet interacted with by the user. The neighbors' rows
// are summed; products with a zero sum are dropped.
//
// The index must be fitted on AxisUsers. An empty matrix or an unknown
// user yields an empty result. When fewer than k+1 users exist k is
// clamped to (users - 1); if that leaves no neighbor the column-sum
// popularity ranking is returned.
func (ix *NeighborIndex) Recommend(user string, k, n int) CollaborativeResult {
	if ix.axis != AxisUsers || ix.matrix.IsEmpty() || !ix.Has(user) {
		return CollaborativeResult{ProductIDs: []string{}}
	}

	k = ix.ClampK(k)
	if k < 1 {
		return CollaborativeResult{ProductIDs: Popularity(ix.matrix, n), Popularity: true}
	}

	own, _ := ix.matrix.Row(user)
	scores := make(map[string]float64)
	for _, nb := range ix.Query(user, k) {
		row, _ := ix.matrix.Row(nb.Key)
		for product, v := range row {
			if own[product] > 0 {
				continue
			}
			scores[product] += v
		}
	}

	for product, v := range scores {
		if v <= 0 {
			delete(scores, product)
		}
	}

	return CollaborativeResult{ProductIDs: topIDs(sortScored(scores), n), K: k}
}
