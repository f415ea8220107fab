// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package validation

// MaxTopN is the hard upper bound accepted on the wire. The engine clamps
// further to its configured max_top_n.
const MaxTopN = 1000

// MaxExclude bounds the number of product ids a caller may exclude.
const MaxExclude = 100

// RecommendationRequest is the query of the user recommendation endpoints.
// An empty UserID is an anonymous caller. TopN 0 selects the default.
type RecommendationRequest struct {
	UserID  string   `query:"user_id" validate:"omitempty,entityid"`
	TopN    int      `query:"top_n" validate:"gte=0,lte=1000"`
	Exclude []string `query:"exclude" validate:"omitempty,max=100,dive,entityid"`
}

// ProductRequest is the query of the per-product endpoints (similar and
// category related).
type ProductRequest struct {
	ProductID string `query:"product_id" validate:"required,entityid"`
	TopN      int    `query:"top_n" validate:"gte=0,lte=1000"`
}
