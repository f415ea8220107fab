// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package similarity

import (
	"math"
	"sort"
)

// Vector is a sparse vector keyed by dimension name (a term or an id).
type Vector map[string]float64

// Dot returns the dot product of v and other.
func (v Vector) Dot(other Vector) float64 {
	// Iterate the smaller map
	a, b := v, other
	if len(b) < len(a) {
		a, b = b, a
	}

	terms := make([]float64, 0, len(a))
	for k, x := range a {
		if y, ok := b[k]; ok {
			terms = append(terms, x*y)
		}
	}
	return sumSorted(terms)
}

// Norm returns the Euclidean norm of v.
func (v Vector) Norm() float64 {
	squares := make([]float64, 0, len(v))
	for _, x := range v {
		squares = append(squares, x*x)
	}
	return math.Sqrt(sumSorted(squares))
}

// sumSorted adds values in ascending order so the result does not depend
// on map iteration order.
func sumSorted(values []float64) float64 {
	sort.Float64s(values)
	var sum float64
	for _, x := range values {
		sum += x
	}
	return sum
}

// Cosine returns the cosine similarity between a and b.
// Zero vectors have similarity 0 with everything.
func Cosine(a, b Vector) float64 {
	return CosineWithNorms(a, b, a.Norm(), b.Norm())
}

// CosineWithNorms is Cosine with precomputed norms.
func CosineWithNorms(a, b Vector, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := a.Dot(b) / (normA * normB)
	// Clamp floating point drift
	if sim > 1 {
		return 1
	}
	if sim < -1 {
		return -1
	}
	return sim
}

// CosineDistance returns 1 - cosine similarity.
func CosineDistance(a, b Vector) float64 {
	return 1 - Cosine(a, b)
}
