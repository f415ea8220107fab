// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package recommend

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/toolhub/internal/models"
)

// mockDataProvider implements DataProvider for testing.
type mockDataProvider struct {
	mu         sync.Mutex
	products   []models.Product
	events     []models.InteractionEvent
	carts      map[string][]string
	listCalls  int
	listErr    error
	eventsErr  error
	userErr    error
	cartErr    error
	productErr error

	// listGate, when set, blocks ListProducts until closed.
	listGate    chan struct{}
	listStarted chan struct{}
}

func newMockProvider(products ...models.Product) *mockDataProvider {
	return &mockDataProvider{products: products, carts: make(map[string][]string)}
}

func (m *mockDataProvider) addEvents(events ...models.InteractionEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
}

func (m *mockDataProvider) setCart(userID string, ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[userID] = ids
}

func (m *mockDataProvider) ListProducts(ctx context.Context) ([]models.Product, error) {
	m.mu.Lock()
	m.listCalls++
	gate, started := m.listGate, m.listStarted
	m.listStarted = nil
	m.mu.Unlock()

	if started != nil {
		close(started)
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *mockDataProvider) GetProduct(_ context.Context, id string) (models.Product, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.productErr != nil {
		return models.Product{}, false, m.productErr
	}
	for _, p := range m.products {
		if p.ID == id {
			return p, true, nil
		}
	}
	return models.Product{}, false, nil
}

func (m *mockDataProvider) ProductsByCategory(_ context.Context, categoryID string) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.products {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockDataProvider) InteractionEvents(_ context.Context, since time.Time) ([]models.InteractionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.eventsErr != nil {
		return nil, m.eventsErr
	}
	var out []models.InteractionEvent
	for _, ev := range m.events {
		if ev.Timestamp.After(since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockDataProvider) UserEvents(_ context.Context, userID string) ([]models.InteractionEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.userErr != nil {
		return nil, m.userErr
	}
	var out []models.InteractionEvent
	for _, ev := range m.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *mockDataProvider) ActiveCart(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cartErr != nil {
		return nil, m.cartErr
	}
	return m.carts[userID], nil
}

var baseTime = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// day returns a creation time n days after baseTime.
func day(n int) time.Time {
	return baseTime.AddDate(0, 0, n)
}

func product(id, name string, created int) models.Product {
	return models.Product{ID: id, Name: name, CreatedAt: day(created)}
}

func event(user, productID string, kind models.SourceKind) models.InteractionEvent {
	return models.InteractionEvent{UserID: user, ProductID: productID, Kind: kind, Timestamp: time.Now()}
}

func newTestEngine(t *testing.T, cfg *Config, dp DataProvider) *Engine {
	t.Helper()
	e, err := NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if dp != nil {
		e.SetDataProvider(dp)
	}
	return e
}

func assertNoDuplicates(t *testing.T, ids []string) {
	t.Helper()
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			t.Errorf("duplicate product %q in %v", id, ids)
		}
		seen[id] = struct{}{}
	}
}
