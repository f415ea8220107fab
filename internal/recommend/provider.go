// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/toolhub/internal/models"
)

// DataProvider is the read-only view of the storefront data the engine
// consumes. It is implemented by the database layer; the engine never
// writes through it.
//
// Errors returned by a provider mean the data store is unavailable. The
// engine wraps and returns them instead of degrading.
type DataProvider interface {
	// ListProducts returns the full catalog.
	ListProducts(ctx context.Context) ([]models.Product, error)

	// GetProduct returns one product. ok is false when the id is unknown.
	GetProduct(ctx context.Context, id string) (product models.Product, ok bool, err error)

	// ProductsByCategory returns the products of a category.
	ProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error)

	// InteractionEvents returns every event newer than since, for all users.
	// A zero since returns the whole history.
	InteractionEvents(ctx context.Context, since time.Time) ([]models.InteractionEvent, error)

	// UserEvents returns the search, view, cart and order events of one user.
	UserEvents(ctx context.Context, userID string) ([]models.InteractionEvent, error)

	// ActiveCart returns the product ids in the user's unpaid cart.
	ActiveCart(ctx context.Context, userID string) ([]string, error)
}
