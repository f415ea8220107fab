// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package algorithms

import (
	"context"

	"github.com/tomtom215/toolhub/internal/models"
	"github.com/tomtom215/toolhub/internal/recommend/similarity"
)

// FeatureSpace is the vectorized catalog used for content-based neighbor
// search. Every product's FeatureText is turned into a TF-IDF vector and a
// brute-force cosine index is fitted over the vectors.
//
// A FeatureSpace is immutable once built and safe for concurrent use.
// Rebuild it after the catalog changes.
type FeatureSpace struct {
	vectorizer *similarity.Vectorizer
	space      vectorSpace
}

// FeatureSpaceState is the serializable form of a FeatureSpace.
type FeatureSpaceState struct {
	Options   similarity.TFIDFOptions
	Documents int
	IDF       map[string]float64
	Vectors   map[string]map[string]float64
}

// BuildFeatureSpace vectorizes the catalog. An empty catalog yields an
// empty FeatureSpace; callers check IsEmpty.
func BuildFeatureSpace(ctx context.Context, products []models.Product, opts similarity.TFIDFOptions) (*FeatureSpace, error) {
	corpus := make([]string, len(products))
	keys := make([]string, len(products))
	for i := range products {
		corpus[i] = products[i].FeatureText()
		keys[i] = products[i].ID
	}

	vectorizer := similarity.FitVectorizer(corpus, opts)

	vectors := make(map[string]similarity.Vector, len(products))
	for i, doc := range corpus {
		if i%256 == 0 && ContextCancelled(ctx) {
			return nil, ctx.Err()
		}
		vectors[keys[i]] = vectorizer.Transform(doc)
	}

	return &FeatureSpace{
		vectorizer: vectorizer,
		space:      newVectorSpace(keys, vectors),
	}, nil
}

// FeatureSpaceFromState restores a FeatureSpace persisted with State.
func FeatureSpaceFromState(state *FeatureSpaceState) *FeatureSpace {
	vectors := make(map[string]similarity.Vector, len(state.Vectors))
	keys := make([]string, 0, len(state.Vectors))
	for id, vec := range state.Vectors {
		vectors[id] = similarity.Vector(vec)
		keys = append(keys, id)
	}
	return &FeatureSpace{
		vectorizer: similarity.NewVectorizerFromIDF(state.IDF, state.Documents, state.Options),
		space:      newVectorSpace(keys, vectors),
	}
}

// State returns the serializable form of fs.
func (fs *FeatureSpace) State() *FeatureSpaceState {
	vectors := make(map[string]map[string]float64, len(fs.space.vectors))
	for id, vec := range fs.space.vectors {
		vectors[id] = vec
	}
	return &FeatureSpaceState{
		Options:   fs.vectorizer.Options(),
		Documents: fs.vectorizer.Documents(),
		IDF:       fs.vectorizer.IDF(),
		Vectors:   vectors,
	}
}

// Len returns the number of indexed products.
func (fs *FeatureSpace) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.space.keys)
}

// IsEmpty reports whether no product is indexed.
func (fs *FeatureSpace) IsEmpty() bool {
	return fs.Len() == 0
}

// Has reports whether the product is indexed.
func (fs *FeatureSpace) Has(productID string) bool {
	if fs == nil {
		return false
	}
	_, ok := fs.space.vectors[productID]
	return ok
}

// Neighbors returns up to k products closest to productID, excluding the
// product itself, by ascending cosine distance. k is clamped to Len()-1.
// Unknown products yield an empty list.
func (fs *FeatureSpace) Neighbors(productID string, k int) []Neighbor {
	if fs == nil {
		return []Neighbor{}
	}
	vec, ok := fs.space.vectors[productID]
	if !ok {
		return []Neighbor{}
	}
	return fs.space.nearest(vec, productID, fs.space.clampK(k))
}

// NearestToText returns the product whose vector is closest to the
// free-text query. ok is false when the space is empty or no query term is
// in the vocabulary.
func (fs *FeatureSpace) NearestToText(query string) (Neighbor, bool) {
	if fs.IsEmpty() {
		return Neighbor{}, false
	}
	vec := fs.vectorizer.Transform(query)
	if len(vec) == 0 {
		return Neighbor{}, false
	}
	nearest := fs.space.nearest(vec, "", 1)
	if len(nearest) == 0 || nearest[0].Similarity() <= 0 {
		return Neighbor{}, false
	}
	return nearest[0], true
}

// Similarity returns the cosine similarity of two indexed products.
func (fs *FeatureSpace) Similarity(a, b string) (float64, bool) {
	if fs == nil {
		return 0, false
	}
	return fs.space.similarity(a, b)
}

// Vectorizer returns the fitted vectorizer.
func (fs *FeatureSpace) Vectorizer() *similarity.Vectorizer {
	return fs.vectorizer
}
