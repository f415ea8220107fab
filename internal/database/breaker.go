// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/toolhub/internal/config"
	"github.com/tomtom215/toolhub/internal/logging"
	"github.com/tomtom215/toolhub/internal/metrics"
	"github.com/tomtom215/toolhub/internal/models"
	"github.com/tomtom215/toolhub/internal/recommend"
)

// BreakerName labels the data store breaker in logs and metrics.
const BreakerName = "duckdb"

// CircuitBreakerProvider wraps a recommend.DataProvider with a circuit
// breaker. When the store keeps failing the breaker opens and calls fail
// fast with gobreaker.ErrOpenState instead of piling up on a dead store.
//
// The breaker uses wall-clock time for its interval and timeout. Tests
// drive it through failures of the wrapped provider rather than the clock.
type CircuitBreakerProvider struct {
	inner recommend.DataProvider
	cb    *gobreaker.CircuitBreaker[interface{}]
	name  string
}

var _ recommend.DataProvider = (*CircuitBreakerProvider)(nil)

// NewCircuitBreakerProvider wraps inner using the breaker settings from cfg.
func NewCircuitBreakerProvider(inner recommend.DataProvider, cfg *config.BreakerConfig) *CircuitBreakerProvider {
	name := BreakerName
	minRequests := cfg.MinRequests
	failureRatio := cfg.FailureRatio

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= failureRatio {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
				return true
			}
			return false
		},

		// Missing rows and cancelled requests are not store failures.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(metrics.StateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerProvider{inner: inner, cb: cb, name: name}
}

// State returns the current breaker state.
func (p *CircuitBreakerProvider) State() gobreaker.State {
	return p.cb.State()
}

func (p *CircuitBreakerProvider) execute(operation string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()
	result, err := p.cb.Execute(fn)
	metrics.RecordDBQuery(operation, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(p.name, "rejected").Inc()
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(p.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(p.name).
			Set(float64(p.cb.Counts().ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(p.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(p.name).Set(0)
	return result, nil
}

// castResult type-asserts a breaker result. A nil result is the zero value.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// ListProducts implements recommend.DataProvider.
func (p *CircuitBreakerProvider) ListProducts(ctx context.Context) ([]models.Product, error) {
	return castResult[[]models.Product](p.execute("list_products", func() (interface{}, error) {
		return p.inner.ListProducts(ctx)
	}))
}

type productLookup struct {
	product models.Product
	ok      bool
}

// GetProduct implements recommend.DataProvider.
func (p *CircuitBreakerProvider) GetProduct(ctx context.Context, id string) (models.Product, bool, error) {
	res, err := castResult[productLookup](p.execute("get_product", func() (interface{}, error) {
		product, ok, err := p.inner.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		return productLookup{product: product, ok: ok}, nil
	}))
	return res.product, res.ok, err
}

// ProductsByCategory implements recommend.DataProvider.
func (p *CircuitBreakerProvider) ProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	return castResult[[]models.Product](p.execute("products_by_category", func() (interface{}, error) {
		return p.inner.ProductsByCategory(ctx, categoryID)
	}))
}

// InteractionEvents implements recommend.DataProvider.
func (p *CircuitBreakerProvider) InteractionEvents(ctx context.Context, since time.Time) ([]models.InteractionEvent, error) {
	return castResult[[]models.InteractionEvent](p.execute("interaction_events", func() (interface{}, error) {
		return p.inner.InteractionEvents(ctx, since)
	}))
}

// UserEvents implements recommend.DataProvider.
func (p *CircuitBreakerProvider) UserEvents(ctx context.Context, userID string) ([]models.InteractionEvent, error) {
	return castResult[[]models.InteractionEvent](p.execute("user_events", func() (interface{}, error) {
		return p.inner.UserEvents(ctx, userID)
	}))
}

// ActiveCart implements recommend.DataProvider.
func (p *CircuitBreakerProvider) ActiveCart(ctx context.Context, userID string) ([]string, error) {
	return castResult[[]string](p.execute("active_cart", func() (interface{}, error) {
		return p.inner.ActiveCart(ctx, userID)
	}))
}
