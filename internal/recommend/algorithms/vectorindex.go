// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package algorithms

import (
	"github.com/tomtom215/toolhub/internal/recommend/similarity"
)

// VectorIndex is a brute-force cosine neighbor index over arbitrary keyed
// vectors. It backs offline evaluation, where the indexed set is a training
// split rather than the full catalog.
type VectorIndex struct {
	space vectorSpace
}

// NewVectorIndex indexes vectors. The map is retained and must not be
// modified afterwards.
func NewVectorIndex(vectors map[string]similarity.Vector) *VectorIndex {
	keys := make([]string, 0, len(vectors))
	for k := range vectors {
		keys = append(keys, k)
	}
	return &VectorIndex{space: newVectorSpace(keys, vectors)}
}

// Len returns the number of indexed vectors.
func (ix *VectorIndex) Len() int {
	return len(ix.space.keys)
}

// Nearest returns up to k indexed entries closest to query, by ascending
// cosine distance with ties broken by key.
func (ix *VectorIndex) Nearest(query similarity.Vector, k int) []Neighbor {
	return ix.space.nearest(query, "", min(k, len(ix.space.keys)))
}
