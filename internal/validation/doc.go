// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

// Package validation validates API request parameters with
// go-playground/validator v10.
//
// A single validator instance is built once (WithRequiredStructEnabled) and
// shared. It registers one custom tag, entityid, for user and product
// identifiers, and names fields after their query parameter so messages read
// "top_n must be less than or equal to 1000" rather than using Go field names.
//
// # Request Types
//
//	RecommendationRequest{UserID, TopN, Exclude}
//	ProductRequest{ProductID, TopN}
//
// # Error Format
//
// ToAPIError produces the VALIDATION_ERROR shape used by every endpoint:
//
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "top_n must be less than or equal to 1000",
//	    "details": {"field": "top_n", "tag": "lte", "value": 5000}
//	}
//
// With more than one failing field the message joins "field: message" pairs
// and details carries a "fields" list.
package validation
