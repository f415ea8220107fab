// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/toolhub/internal/config"
	"github.com/tomtom215/toolhub/internal/models"
)

var errStoreDown = errors.New("store down")

// stubProvider is a hand-written DataProvider whose failure mode can be toggled.
type stubProvider struct {
	mu    sync.Mutex
	fail  error
	calls int
}

func (s *stubProvider) result() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.fail
}

func (s *stubProvider) setFail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *stubProvider) ListProducts(context.Context) ([]models.Product, error) {
	if err := s.result(); err != nil {
		return nil, err
	}
	return []models.Product{{ID: "p1"}, {ID: "p2"}}, nil
}

func (s *stubProvider) GetProduct(_ context.Context, id string) (models.Product, bool, error) {
	if err := s.result(); err != nil {
		return models.Product{}, false, err
	}
	if id == "p1" {
		return models.Product{ID: "p1", Name: "Drill"}, true, nil
	}
	return models.Product{}, false, nil
}

func (s *stubProvider) ProductsByCategory(context.Context, string) ([]models.Product, error) {
	if err := s.result(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *stubProvider) InteractionEvents(context.Context, time.Time) ([]models.InteractionEvent, error) {
	if err := s.result(); err != nil {
		return nil, err
	}
	return []models.InteractionEvent{{UserID: "u1", ProductID: "p1", Kind: models.SourceProductView}}, nil
}

func (s *stubProvider) UserEvents(context.Context, string) ([]models.InteractionEvent, error) {
	if err := s.result(); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *stubProvider) ActiveCart(context.Context, string) ([]string, error) {
	if err := s.result(); err != nil {
		return nil, err
	}
	return []string{"p2"}, nil
}

func testBreakerConfig() *config.BreakerConfig {
	return &config.BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		FailureRatio: 0.5,
		MinRequests:  4,
	}
}

func TestCircuitBreakerProvider_PassThrough(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{}
	p := NewCircuitBreakerProvider(stub, testBreakerConfig())
	ctx := context.Background()

	products, err := p.ListProducts(ctx)
	if err != nil || len(products) != 2 {
		t.Errorf("ListProducts = %v, %v", products, err)
	}

	product, ok, err := p.GetProduct(ctx, "p1")
	if err != nil || !ok || product.Name != "Drill" {
		t.Errorf("GetProduct(p1) = %+v, %v, %v", product, ok, err)
	}
	_, ok, err = p.GetProduct(ctx, "missing")
	if err != nil || ok {
		t.Errorf("GetProduct(missing) ok=%v err=%v; want false, nil", ok, err)
	}

	byCat, err := p.ProductsByCategory(ctx, "tools")
	if err != nil || byCat != nil {
		t.Errorf("ProductsByCategory = %v, %v; want nil slice", byCat, err)
	}

	events, err := p.InteractionEvents(ctx, time.Time{})
	if err != nil || len(events) != 1 {
		t.Errorf("InteractionEvents = %v, %v", events, err)
	}

	userEvents, err := p.UserEvents(ctx, "u1")
	if err != nil || userEvents != nil {
		t.Errorf("UserEvents = %v, %v", userEvents, err)
	}

	cart, err := p.ActiveCart(ctx, "u1")
	if err != nil || len(cart) != 1 || cart[0] != "p2" {
		t.Errorf("ActiveCart = %v, %v", cart, err)
	}

	if p.State() != gobreaker.StateClosed {
		t.Errorf("State = %v, want closed", p.State())
	}
}

func TestCircuitBreakerProvider_Trips(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{}
	stub.setFail(errStoreDown)
	p := NewCircuitBreakerProvider(stub, testBreakerConfig())
	ctx := context.Background()

	// Below MinRequests failures pass through unchanged.
	for i := 0; i < 3; i++ {
		if _, err := p.ListProducts(ctx); !errors.Is(err, errStoreDown) {
			t.Fatalf("call %d: err = %v, want errStoreDown", i, err)
		}
		if p.State() != gobreaker.StateClosed {
			t.Fatalf("call %d: breaker opened early", i)
		}
	}

	// The fourth failure reaches MinRequests at a 100% failure ratio.
	if _, err := p.ListProducts(ctx); !errors.Is(err, errStoreDown) {
		t.Fatalf("fourth call: err = %v, want errStoreDown", err)
	}
	if p.State() != gobreaker.StateOpen {
		t.Fatalf("State = %v, want open", p.State())
	}

	calls := stub.callCount()
	_, err := p.UserEvents(ctx, "u1")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("open breaker err = %v, want ErrOpenState", err)
	}
	if stub.callCount() != calls {
		t.Error("open breaker should not call the wrapped provider")
	}
}

func TestCircuitBreakerProvider_CanceledIsNotFailure(t *testing.T) {
	t.Parallel()

	stub := &stubProvider{}
	stub.setFail(context.Canceled)
	p := NewCircuitBreakerProvider(stub, testBreakerConfig())

	for i := 0; i < 10; i++ {
		if _, err := p.ActiveCart(context.Background(), "u1"); !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
	}
	if p.State() != gobreaker.StateClosed {
		t.Errorf("State = %v; cancellations must not trip the breaker", p.State())
	}
}

func TestCastResult(t *testing.T) {
	t.Parallel()

	got, err := castResult[[]string]([]string{"a"}, nil)
	if err != nil || len(got) != 1 {
		t.Errorf("castResult = %v, %v", got, err)
	}

	got, err = castResult[[]string](nil, nil)
	if err != nil || got != nil {
		t.Errorf("castResult(nil) = %v, %v", got, err)
	}

	if _, err := castResult[[]string](42, nil); err == nil {
		t.Error("castResult with wrong type should fail")
	}

	if _, err := castResult[[]string](nil, errStoreDown); !errors.Is(err, errStoreDown) {
		t.Errorf("castResult error = %v, want errStoreDown", err)
	}
}
