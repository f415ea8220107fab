// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package algorithms

import (
	"context"
	"sort"

	"github.com/tomtom215/toolhub/internal/recommend/similarity"
)

// Neighbor is a nearby row, column or document with its cosine distance.
type Neighbor struct {
	// Key is the user or product identifier.
	Key string `json:"key"`

	// Distance is 1 - cosine similarity, in [0, 2].
	Distance float64 `json:"distance"`
}

// Similarity returns 1 - Distance.
func (n Neighbor) Similarity() float64 {
	return 1 - n.Distance
}

// ScoredID pairs an identifier with a score.
type ScoredID struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// vectorSpace is a brute-force cosine index over sparse vectors.
type vectorSpace struct {
	keys    []string // sorted
	vectors map[string]similarity.Vector
	norms   map[string]float64
}

func newVectorSpace(keys []string, vectors map[string]similarity.Vector) vectorSpace {
	sorted := make([]string, len(keys))
	copy(sorted, keys)
	sort.Strings(sorted)

	norms := make(map[string]float64, len(vectors))
	for _, k := range sorted {
		norms[k] = vectors[k].Norm()
	}
	return vectorSpace{keys: sorted, vectors: vectors, norms: norms}
}

// clampK limits k to the number of other entries in the space.
func (s *vectorSpace) clampK(k int) int {
	if available := len(s.keys) - 1; k > available {
		k = available
	}
	if k < 0 {
		k = 0
	}
	return k
}

// similarity returns the cosine similarity between two stored entries.
func (s *vectorSpace) similarity(a, b string) (float64, bool) {
	va, okA := s.vectors[a]
	vb, okB := s.vectors[b]
	if !okA || !okB {
		return 0, false
	}
	return similarity.CosineWithNorms(va, vb, s.norms[a], s.norms[b]), true
}

// nearest returns up to k entries closest to query, skipping exclude.
// Results are sorted by ascending distance, ties by key ascending.
func (s *vectorSpace) nearest(query similarity.Vector, exclude string, k int) []Neighbor {
	if k <= 0 || len(s.keys) == 0 {
		return []Neighbor{}
	}

	queryNorm := query.Norm()
	all := make([]Neighbor, 0, len(s.keys))
	for _, key := range s.keys {
		if key == exclude {
			continue
		}
		sim := similarity.CosineWithNorms(query, s.vectors[key], queryNorm, s.norms[key])
		all = append(all, Neighbor{Key: key, Distance: 1 - sim})
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Distance != all[j].Distance {
			return all[i].Distance < all[j].Distance
		}
		return all[i].Key < all[j].Key
	})

	if len(all) > k {
		all = all[:k]
	}
	return all
}

// sortScored orders scores descending, ties by ID ascending.
func sortScored(scores map[string]float64) []ScoredID {
	out := make([]ScoredID, 0, len(scores))
	for id, score := range scores {
		out = append(out, ScoredID{ID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// topIDs returns the IDs of the first n scored entries.
func topIDs(scored []ScoredID, n int) []string {
	if n >= 0 && len(scored) > n {
		scored = scored[:n]
	}
	ids := make([]string, len(scored))
	for i, s := range scored {
		ids[i] = s.ID
	}
	return ids
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
