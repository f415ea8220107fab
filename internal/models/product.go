// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package models

import (
	"strings"
	"time"
)

// Product labels used by the storefront.
const (
	LabelHot  = "Hot"
	LabelSale = "Sale"
	LabelNew  = "New"
)

// Product is a catalog entry. The catalog is owned by the storefront; the
// recommendation engine only reads it.
type Product struct {
	// ID is the stable product identifier (the storefront "pid").
	ID string `json:"id"`

	// Name is the display name. Order lines that only carry free text are
	// resolved against this field case-insensitively.
	Name string `json:"name"`

	// Description is the long-form marketing text.
	Description string `json:"description,omitempty"`

	// Specification is the technical specification text.
	Specification string `json:"specification,omitempty"`

	// Label is an optional merchandising label (Hot, Sale, New).
	Label string `json:"label,omitempty"`

	// CategoryID references the owning category.
	CategoryID string `json:"category_id,omitempty"`

	// Category is the category display name.
	Category string `json:"category,omitempty"`

	// Price is the current unit price.
	Price float64 `json:"price"`

	// Featured marks products promoted on the home page.
	Featured bool `json:"featured"`

	// InStock reports stock availability.
	InStock bool `json:"in_stock"`

	// CreatedAt is when the product was added to the catalog.
	CreatedAt time.Time `json:"created_at"`
}

// LexicalText returns the text used for token-set comparison (name and description).
func (p *Product) LexicalText() string {
	return joinNonEmpty(p.Name, p.Description)
}

// FeatureText returns the concatenated text fields vectorized into the
// content feature space.
func (p *Product) FeatureText() string {
	return joinNonEmpty(p.Name, p.Description, p.Specification, p.Label, p.Category)
}

// NormalizeName returns the lookup key for case-insensitive exact name matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func joinNonEmpty(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p)
	}
	return b.String()
}

// NewerThan reports whether p sorts before other in newest-first order.
// Products created at the same instant are ordered by ID ascending.
func (p *Product) NewerThan(other *Product) bool {
	if !p.CreatedAt.Equal(other.CreatedAt) {
		return p.CreatedAt.After(other.CreatedAt)
	}
	return p.ID < other.ID
}
