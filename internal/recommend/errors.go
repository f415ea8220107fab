// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package recommend

import "errors"

// Conditions the engine degrades on. Only ErrTrainingInProgress and
// ErrProviderNotSet are returned to callers; the others are recorded in
// Response.Fallbacks and logs when a fallback tier takes over.
var (
	// ErrEmptyInput means there is no catalog or no interaction data.
	ErrEmptyInput = errors.New("recommend: empty input")

	// ErrUnresolvableReference means an event or seed names a product that
	// is not in the catalog.
	ErrUnresolvableReference = errors.New("recommend: unresolvable product reference")

	// ErrDegenerateNeighborRequest means the requested neighbor count
	// exceeds the number of comparable profiles.
	ErrDegenerateNeighborRequest = errors.New("recommend: degenerate neighbor request")

	// ErrInvalidCaller means an anonymous caller asked for personalized results.
	ErrInvalidCaller = errors.New("recommend: anonymous caller")

	// ErrTrainingInProgress is returned by Train when another run holds the lock.
	ErrTrainingInProgress = errors.New("recommend: training already in progress")

	// ErrProviderNotSet is returned when no DataProvider was configured.
	ErrProviderNotSet = errors.New("recommend: data provider not set")
)
