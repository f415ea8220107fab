// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package models

import (
	"fmt"
	"time"
)

// SourceKind identifies where an implicit interaction signal came from.
type SourceKind int

const (
	// SourceSearchMatch is a search that resolved to a concrete product.
	SourceSearchMatch SourceKind = iota

	// SourceSearchText is a free-text search with no matched product.
	SourceSearchText

	// SourceCartAdd is a product added to a cart.
	SourceCartAdd

	// SourceOrderComplete is a line item of a completed order.
	SourceOrderComplete

	// SourceProductView is a product detail page view.
	SourceProductView
)

var sourceKindNames = [...]string{
	SourceSearchMatch:   "search_match",
	SourceSearchText:    "search_text",
	SourceCartAdd:       "cart_add",
	SourceOrderComplete: "order_complete",
	SourceProductView:   "product_view",
}

// String returns the string representation of the source kind.
func (k SourceKind) String() string {
	if k < 0 || int(k) >= len(sourceKindNames) {
		return "unknown"
	}
	return sourceKindNames[k]
}

// ParseSourceKind converts a string to a SourceKind.
func ParseSourceKind(s string) (SourceKind, bool) {
	for i, name := range sourceKindNames {
		if name == s {
			return SourceKind(i), true
		}
	}
	return 0, false
}

// MarshalText implements encoding.TextMarshaler.
func (k SourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SourceKind) UnmarshalText(text []byte) error {
	parsed, ok := ParseSourceKind(string(text))
	if !ok {
		return fmt.Errorf("unknown source kind %q", text)
	}
	*k = parsed
	return nil
}

// AllSourceKinds returns every known source kind in declaration order.
func AllSourceKinds() []SourceKind {
	kinds := make([]SourceKind, len(sourceKindNames))
	for i := range sourceKindNames {
		kinds[i] = SourceKind(i)
	}
	return kinds
}

// InteractionEvent is an append-only behavioral fact tying a user to a
// product (or to a free-text query). Events are never mutated by the engine.
type InteractionEvent struct {
	// UserID identifies the acting user.
	UserID string `json:"user_id"`

	// ProductID is set when the event references a catalog product directly.
	ProductID string `json:"product_id,omitempty"`

	// ProductName is set for order lines that only carry the item name.
	ProductName string `json:"product_name,omitempty"`

	// Query is the raw search text for search events.
	Query string `json:"query,omitempty"`

	// Kind is the signal source.
	Kind SourceKind `json:"kind"`

	// Timestamp is when the event happened.
	Timestamp time.Time `json:"timestamp"`
}
