// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package algorithms

import (
	"sort"

	"github.com/tomtom215/toolhub/internal/models"
	"github.com/tomtom215/toolhub/internal/recommend/similarity"
)

// WeightTable maps an interaction source to the score increment it adds to
// the (user, product) cell of the interaction matrix. Sources missing from
// the table, or with a non-positive weight, do not contribute.
type WeightTable map[models.SourceKind]float64

// DefaultWeightTable returns the default increments: +1 per matched search,
// cart add and view, +2 per completed order line. Free-text searches carry
// no product and are resolved through seeds instead.
func DefaultWeightTable() WeightTable {
	return WeightTable{
		models.SourceSearchMatch:   1,
		models.SourceSearchText:    0,
		models.SourceCartAdd:       1,
		models.SourceOrderComplete: 2,
		models.SourceProductView:   1,
	}
}

// Clone returns a copy of the table.
func (w WeightTable) Clone() WeightTable {
	out := make(WeightTable, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// InteractionMatrix is a sparse user x product score matrix.
// Rows are users, columns are products. A missing cell means no interaction.
// User and product keys are kept sorted so iteration is deterministic.
//
// A matrix is not safe for concurrent mutation; once built it is only read.
type InteractionMatrix struct {
	rows     map[string]similarity.Vector
	cols     map[string]similarity.Vector
	users    []string
	products []string
}

// NewInteractionMatrix returns an empty matrix.
func NewInteractionMatrix() *InteractionMatrix {
	return &InteractionMatrix{
		rows: make(map[string]similarity.Vector),
		cols: make(map[string]similarity.Vector),
	}
}

// Add accumulates delta into the (user, product) cell.
func (m *InteractionMatrix) Add(user, product string, delta float64) {
	row, ok := m.rows[user]
	if !ok {
		row = make(similarity.Vector)
		m.rows[user] = row
		m.users = insertSorted(m.users, user)
	}
	col, ok := m.cols[product]
	if !ok {
		col = make(similarity.Vector)
		m.cols[product] = col
		m.products = insertSorted(m.products, product)
	}
	row[product] += delta
	col[user] += delta
}

// Score returns the accumulated score of a cell, 0 when absent.
func (m *InteractionMatrix) Score(user, product string) float64 {
	return m.rows[user][product]
}

// Row returns the user's row. The returned vector must not be modified.
func (m *InteractionMatrix) Row(user string) (similarity.Vector, bool) {
	row, ok := m.rows[user]
	return row, ok
}

// Column returns the product's column. The returned vector must not be modified.
func (m *InteractionMatrix) Column(product string) (similarity.Vector, bool) {
	col, ok := m.cols[product]
	return col, ok
}

// Users returns the sorted row keys.
func (m *InteractionMatrix) Users() []string {
	return m.users
}

// Products returns the sorted column keys.
func (m *InteractionMatrix) Products() []string {
	return m.products
}

// IsEmpty reports whether the matrix has no rows.
func (m *InteractionMatrix) IsEmpty() bool {
	return len(m.users) == 0
}

// ColumnSums returns the total score per product.
func (m *InteractionMatrix) ColumnSums() map[string]float64 {
	sums := make(map[string]float64, len(m.cols))
	for product, col := range m.cols {
		var total float64
		for _, v := range col {
			total += v
		}
		sums[product] = total
	}
	return sums
}

// BuildStats reports what happened to the events fed to BuildMatrix.
type BuildStats struct {
	// Events is the number of events considered.
	Events int `json:"events"`

	// Applied is the number of events that updated a cell.
	Applied int `json:"applied"`

	// Unresolved counts events whose product id or name is not in the catalog.
	Unresolved int `json:"unresolved"`

	// Ignored counts events without a user or with a zero weight.
	Ignored int `json:"ignored"`
}

// BuildMatrix aggregates events into an interaction matrix.
//
// Events referencing a product by ID must name a catalog product. Events
// that only carry a product name (free-text order lines) are resolved by an
// exact, case-insensitive name lookup built once per call. Unresolvable
// references are dropped and counted in BuildStats. With no usable events
// the result is an empty matrix, never nil.
//
//nolint:gocritic // rangeValCopy: events are small value types
func BuildMatrix(events []models.InteractionEvent, catalog []models.Product, weights WeightTable) (*InteractionMatrix, BuildStats) {
	m := NewInteractionMatrix()
	stats := BuildStats{Events: len(events)}

	if len(events) == 0 {
		return m, stats
	}

	resolver := NewCatalogResolver(catalog)

	for _, ev := range events {
		weight := weights[ev.Kind]
		if ev.UserID == "" || weight <= 0 {
			stats.Ignored++
			continue
		}

		productID, ok := resolver.Resolve(ev.ProductID, ev.ProductName)
		if !ok {
			stats.Unresolved++
			continue
		}

		m.Add(ev.UserID, productID, weight)
		stats.Applied++
	}

	return m, stats
}

// CatalogResolver maps product references to canonical catalog IDs.
type CatalogResolver struct {
	ids   map[string]struct{}
	names map[string]string
}

// NewCatalogResolver indexes catalog by ID and by normalized name.
// When two products share a name the first one in catalog order wins.
func NewCatalogResolver(catalog []models.Product) *CatalogResolver {
	r := &CatalogResolver{
		ids:   make(map[string]struct{}, len(catalog)),
		names: make(map[string]string, len(catalog)),
	}
	for i := range catalog {
		p := &catalog[i]
		r.ids[p.ID] = struct{}{}
		key := models.NormalizeName(p.Name)
		if _, exists := r.names[key]; !exists && key != "" {
			r.names[key] = p.ID
		}
	}
	return r
}

// Resolve returns the catalog ID for a reference. The ID wins when set;
// otherwise the name is looked up case-insensitively.
func (r *CatalogResolver) Resolve(id, name string) (string, bool) {
	if id != "" {
		_, ok := r.ids[id]
		return id, ok
	}
	if name == "" {
		return "", false
	}
	resolved, ok := r.names[models.NormalizeName(name)]
	return resolved, ok
}

func insertSorted(keys []string, key string) []string {
	i := sort.SearchStrings(keys, key)
	keys = append(keys, "")
	copy(keys[i+1:], keys[i:])
	keys[i] = key
	return keys
}
