// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package recommend

import (
	"sort"
	"time"

	"github.com/tomtom215/toolhub/internal/models"
	"github.com/tomtom215/toolhub/internal/recommend/algorithms"
	"github.com/tomtom215/toolhub/internal/recommend/similarity"
)

// model is an immutable snapshot of everything the ranker reads. Requests
// load the current pointer once and use it throughout; Train and matrix
// refreshes build a new model and swap it in.
type model struct {
	version   int64
	trainedAt time.Time
	restored  bool

	// Catalog, newest first
	products []models.Product
	byID     map[string]*models.Product
	resolver *algorithms.CatalogResolver

	// Content
	features *algorithms.FeatureSpace
	scorer   similarity.Scorer
	texts    map[string]string

	// Collaborative
	matrix        *algorithms.InteractionMatrix
	matrixStats   algorithms.BuildStats
	matrixBuiltAt time.Time
	users         *algorithms.NeighborIndex
	items         *algorithms.NeighborIndex
}

// newCatalogModel indexes products and prepares the content scorer. The
// matrix is left empty; attach one with withMatrix.
func newCatalogModel(products []models.Product, features *algorithms.FeatureSpace, scorerName string, opts similarity.TFIDFOptions) (*model, error) {
	sorted := make([]models.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].NewerThan(&sorted[j])
	})

	m := &model{
		products: sorted,
		byID:     make(map[string]*models.Product, len(sorted)),
		resolver: algorithms.NewCatalogResolver(sorted),
		features: features,
		texts:    make(map[string]string, len(sorted)),
	}

	corpus := make([]string, 0, len(sorted))
	for i := range sorted {
		p := &sorted[i]
		m.byID[p.ID] = p
		text := p.LexicalText()
		if scorerName == similarity.NameTFIDF {
			text = p.FeatureText()
		}
		m.texts[p.ID] = text
		corpus = append(corpus, text)
	}

	if scorerName == similarity.NameTFIDF && !features.IsEmpty() {
		m.scorer = similarity.NewTFIDFScorerWith(features.Vectorizer(), corpus)
	} else {
		scorer, err := similarity.New(scorerName, corpus, opts)
		if err != nil {
			return nil, err
		}
		m.scorer = scorer
	}

	return m.withMatrix(algorithms.NewInteractionMatrix(), algorithms.BuildStats{}, time.Time{}), nil
}

// withMatrix returns a shallow copy of m serving matrix.
func (m *model) withMatrix(matrix *algorithms.InteractionMatrix, stats algorithms.BuildStats, builtAt time.Time) *model {
	next := *m
	next.matrix = matrix
	next.matrixStats = stats
	next.matrixBuiltAt = builtAt
	next.users = algorithms.NewNeighborIndex(matrix, algorithms.AxisUsers)
	next.items = algorithms.NewNeighborIndex(matrix, algorithms.AxisProducts)
	return &next
}

// trained reports whether the model holds a catalog.
func (m *model) trained() bool {
	return m != nil && len(m.products) > 0
}

// product looks up a catalog product.
func (m *model) product(id string) (*models.Product, bool) {
	p, ok := m.byID[id]
	return p, ok
}

// contentSimilarity scores two catalog products with the configured scorer.
func (m *model) contentSimilarity(a, b string) float64 {
	ta, okA := m.texts[a]
	tb, okB := m.texts[b]
	if !okA || !okB {
		return 0
	}
	return m.scorer.Similarity(ta, tb)
}

// itemSimilarity is the item-item cosine over interaction columns, 0 when
// either product has no interactions.
func (m *model) itemSimilarity(a, b string) float64 {
	sim, ok := m.items.Similarity(a, b)
	if !ok || sim < 0 {
		return 0
	}
	return sim
}

// bestTextMatch resolves a free-text query to the closest catalog product
// and its similarity in [0,1]. The feature space is used when trained;
// otherwise every product is compared by Jaccard over name and description.
func (m *model) bestTextMatch(query string) (string, float64, bool) {
	if !m.features.IsEmpty() {
		if nb, ok := m.features.NearestToText(query); ok {
			if _, inCatalog := m.byID[nb.Key]; inCatalog {
				return nb.Key, nb.Similarity(), true
			}
		}
		return "", 0, false
	}

	querySet := similarity.TokenSet(query)
	var (
		bestID  string
		bestSim float64
	)
	for i := range m.products {
		sim := similarity.JaccardSets(querySet, similarity.TokenSet(m.products[i].LexicalText()))
		if sim > bestSim {
			bestID, bestSim = m.products[i].ID, sim
		}
	}
	return bestID, bestSim, bestSim > 0
}

// newest returns up to n catalog products, newest first, skipping ids in skip.
func (m *model) newest(n int, skip map[string]struct{}) []string {
	return m.newestMatching(n, skip, nil)
}

// newestMatching is newest restricted to products accepted by keep.
func (m *model) newestMatching(n int, skip map[string]struct{}, keep func(*models.Product) bool) []string {
	out := make([]string, 0, min(n, len(m.products)))
	for i := range m.products {
		if len(out) >= n {
			break
		}
		p := &m.products[i]
		if _, skipped := skip[p.ID]; skipped {
			continue
		}
		if keep != nil && !keep(p) {
			continue
		}
		out = append(out, p.ID)
	}
	return out
}
