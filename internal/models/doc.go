// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

/*
Package models defines data structures shared across Toolhub packages.

Key Components:

  - Product: Catalog entry read from the storefront database
  - InteractionEvent: Implicit behavioral signal (search, view, cart, order)
  - SourceKind: Enumerates interaction sources
  - APIResponse: Standardized API response wrapper

Thread Safety:

All models are plain data. They are immutable after creation and safe for
concurrent read access.
*/
package models
