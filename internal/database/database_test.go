// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/toolhub/internal/config"
	"github.com/tomtom215/toolhub/internal/models"
)

// testDBSemaphore serializes DuckDB tests. Concurrent CGO connections from
// many parallel tests can hang under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

// setupTestDB opens an in-memory database held for the whole test.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	type result struct {
		db  *DB
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", Threads: 2})
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() { _ = res.db.Close() })
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

var testBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedCatalog(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()

	if err := db.UpsertCategories(ctx, []Category{
		{ID: "tools", Name: "Tools"},
		{ID: "safety", Name: "Safety Gear"},
	}); err != nil {
		t.Fatalf("UpsertCategories: %v", err)
	}
	if err := db.UpsertProducts(ctx, []models.Product{
		{ID: "p2", Name: "Hand Saw", Description: "saw for timber", CategoryID: "tools", Price: 15, InStock: true, CreatedAt: testBase.Add(-48 * time.Hour)},
		{ID: "p1", Name: "Cordless Drill", Description: "drill driver", Specification: "18V", Label: models.LabelHot, CategoryID: "tools", Price: 129, Featured: true, InStock: true, CreatedAt: testBase.Add(-72 * time.Hour)},
		{ID: "p3", Name: "Safety Glasses", CategoryID: "safety", Price: 9, CreatedAt: testBase},
		{ID: "p4", Name: "Mystery Box", CreatedAt: testBase},
	}); err != nil {
		t.Fatalf("UpsertProducts: %v", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); err == nil {
		t.Error("New(nil) should fail")
	}
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)

	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if db.Path() != ":memory:" {
		t.Errorf("Path = %q", db.Path())
	}
	if db.Conn() == nil {
		t.Error("Conn should not be nil")
	}
}

func TestDB_Products(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	products, err := db.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	wantIDs := []string{"p1", "p2", "p3", "p4"}
	if len(products) != len(wantIDs) {
		t.Fatalf("ListProducts returned %d products, want %d", len(products), len(wantIDs))
	}
	for i, id := range wantIDs {
		if products[i].ID != id {
			t.Errorf("products[%d].ID = %q, want %q", i, products[i].ID, id)
		}
	}

	drill := products[0]
	if drill.Category != "Tools" || drill.CategoryID != "tools" {
		t.Errorf("category = %q/%q, want tools/Tools", drill.CategoryID, drill.Category)
	}
	if !drill.Featured || drill.Label != models.LabelHot || drill.Specification != "18V" {
		t.Errorf("drill fields not round-tripped: %+v", drill)
	}
	if !drill.CreatedAt.Equal(testBase.Add(-72 * time.Hour)) {
		t.Errorf("CreatedAt = %v", drill.CreatedAt)
	}
	if products[3].CategoryID != "" || products[3].Category != "" {
		t.Errorf("uncategorized product should have empty category, got %+v", products[3])
	}

	tests := []struct {
		name   string
		id     string
		wantOK bool
	}{
		{"existing", "p3", true},
		{"missing", "nope", false},
	}
	for _, tt := range tests {
		p, ok, err := db.GetProduct(ctx, tt.id)
		if err != nil {
			t.Errorf("%s: GetProduct: %v", tt.name, err)
			continue
		}
		if ok != tt.wantOK {
			t.Errorf("%s: ok = %v, want %v", tt.name, ok, tt.wantOK)
		}
		if ok && p.Category != "Safety Gear" {
			t.Errorf("%s: Category = %q", tt.name, p.Category)
		}
	}

	inTools, err := db.ProductsByCategory(ctx, "tools")
	if err != nil {
		t.Fatalf("ProductsByCategory: %v", err)
	}
	if len(inTools) != 2 || inTools[0].ID != "p1" || inTools[1].ID != "p2" {
		t.Errorf("ProductsByCategory(tools) = %+v", inTools)
	}

	n, err := db.CountProducts(ctx)
	if err != nil || n != 4 {
		t.Errorf("CountProducts = %d, %v; want 4", n, err)
	}
}

func TestDB_UpsertProductUpdates(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	if err := db.UpsertProducts(ctx, []models.Product{
		{ID: "p3", Name: "Safety Glasses Pro", CategoryID: "safety", Price: 11, CreatedAt: testBase},
	}); err != nil {
		t.Fatalf("UpsertProducts: %v", err)
	}
	p, ok, err := db.GetProduct(ctx, "p3")
	if err != nil || !ok {
		t.Fatalf("GetProduct: ok=%v err=%v", ok, err)
	}
	if p.Name != "Safety Glasses Pro" || p.Price != 11 {
		t.Errorf("product not updated: %+v", p)
	}
}

func TestDB_InteractionEvents(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	events := []models.InteractionEvent{
		{UserID: "u1", Kind: models.SourceProductView, ProductID: "p1", Timestamp: testBase.Add(-3 * time.Hour)},
		{UserID: "u2", Kind: models.SourceSearchText, Query: "safety", Timestamp: testBase.Add(-2 * time.Hour)},
		{UserID: "u1", Kind: models.SourceOrderComplete, ProductName: "Hand Saw", Timestamp: testBase.Add(-time.Hour)},
	}
	if err := db.InsertEvents(ctx, events); err != nil {
		t.Fatalf("InsertEvents: %v", err)
	}
	if _, err := db.Conn().ExecContext(ctx,
		`INSERT INTO interaction_events (user_id, kind, product_id, occurred_at) VALUES ('u1', 'wishlist', 'p2', ?)`,
		testBase); err != nil {
		t.Fatalf("insert unknown kind: %v", err)
	}

	all, err := db.InteractionEvents(ctx, time.Time{})
	if err != nil {
		t.Fatalf("InteractionEvents: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("InteractionEvents returned %d events, want 3 (unknown kind skipped)", len(all))
	}
	if all[0].Kind != models.SourceProductView || all[2].ProductName != "Hand Saw" || all[1].Query != "safety" {
		t.Errorf("events not in time order or fields lost: %+v", all)
	}
	if all[1].ProductID != "" {
		t.Errorf("NULL product_id should scan as empty, got %q", all[1].ProductID)
	}

	recent, err := db.InteractionEvents(ctx, testBase.Add(-150*time.Minute))
	if err != nil {
		t.Fatalf("InteractionEvents(since): %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("InteractionEvents(since) returned %d events, want 2", len(recent))
	}

	u1, err := db.UserEvents(ctx, "u1")
	if err != nil {
		t.Fatalf("UserEvents: %v", err)
	}
	if len(u1) != 2 || u1[0].UserID != "u1" || u1[1].Kind != models.SourceOrderComplete {
		t.Errorf("UserEvents(u1) = %+v", u1)
	}
}

func TestDB_CartLifecycle(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	adds := []struct {
		product string
		at      time.Time
	}{
		{"p2", testBase.Add(-3 * time.Hour)},
		{"p1", testBase.Add(-2 * time.Hour)},
		{"p2", testBase.Add(-time.Hour)},
	}
	for _, a := range adds {
		if err := db.AddToCart(ctx, "u1", a.product, a.at); err != nil {
			t.Fatalf("AddToCart(%s): %v", a.product, err)
		}
	}

	cart, err := db.ActiveCart(ctx, "u1")
	if err != nil {
		t.Fatalf("ActiveCart: %v", err)
	}
	if len(cart) != 2 || cart[0] != "p2" || cart[1] != "p1" {
		t.Errorf("ActiveCart = %v, want [p2 p1]", cart)
	}

	empty, err := db.ActiveCart(ctx, "nobody")
	if err != nil || len(empty) != 0 {
		t.Errorf("ActiveCart(nobody) = %v, %v", empty, err)
	}

	ordered, err := db.CompleteOrder(ctx, "u1", testBase)
	if err != nil {
		t.Fatalf("CompleteOrder: %v", err)
	}
	if len(ordered) != 2 {
		t.Errorf("CompleteOrder returned %v", ordered)
	}

	cart, err = db.ActiveCart(ctx, "u1")
	if err != nil || len(cart) != 0 {
		t.Errorf("cart after order = %v, %v; want empty", cart, err)
	}

	events, err := db.UserEvents(ctx, "u1")
	if err != nil {
		t.Fatalf("UserEvents: %v", err)
	}
	counts := map[models.SourceKind]int{}
	for _, ev := range events {
		counts[ev.Kind]++
	}
	if counts[models.SourceCartAdd] != 3 || counts[models.SourceOrderComplete] != 2 {
		t.Errorf("event counts = %v, want 3 cart_add and 2 order_complete", counts)
	}

	again, err := db.CompleteOrder(ctx, "u1", testBase)
	if err != nil || again != nil {
		t.Errorf("CompleteOrder on empty cart = %v, %v", again, err)
	}
}

func TestDB_SeedDemoData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SeedDemoData(ctx); err != nil {
		t.Fatalf("SeedDemoData: %v", err)
	}
	n, err := db.CountProducts(ctx)
	if err != nil {
		t.Fatalf("CountProducts: %v", err)
	}
	if n != len(demoProducts) {
		t.Errorf("CountProducts = %d, want %d", n, len(demoProducts))
	}

	events, err := db.InteractionEvents(ctx, time.Time{})
	if err != nil {
		t.Fatalf("InteractionEvents: %v", err)
	}
	if len(events) == 0 {
		t.Error("demo seed should record interaction events")
	}

	// Seeding again leaves the data untouched.
	if err := db.SeedDemoData(ctx); err != nil {
		t.Fatalf("second SeedDemoData: %v", err)
	}
	again, err := db.InteractionEvents(ctx, time.Time{})
	if err != nil {
		t.Fatalf("InteractionEvents: %v", err)
	}
	if len(again) != len(events) {
		t.Errorf("second seed changed events: %d -> %d", len(events), len(again))
	}

	cart, err := db.ActiveCart(ctx, "dave")
	if err != nil || len(cart) != 1 || cart[0] != "p-battery-18v" {
		t.Errorf("ActiveCart(dave) = %v, %v", cart, err)
	}
}

func TestDB_Closed(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	ctx := context.Background()
	if _, err := db.ListProducts(ctx); !errors.Is(err, ErrNilConnection) {
		t.Errorf("ListProducts after Close = %v, want ErrNilConnection", err)
	}
	if _, _, err := db.GetProduct(ctx, "p1"); !errors.Is(err, ErrNilConnection) {
		t.Errorf("GetProduct after Close = %v, want ErrNilConnection", err)
	}
	if err := db.Ping(ctx); !errors.Is(err, ErrNilConnection) {
		t.Errorf("Ping after Close = %v, want ErrNilConnection", err)
	}
}

func TestEnsureContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := ensureContext(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Error("ensureContext should add a deadline")
	}

	withDeadline, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	got, cancel3 := ensureContext(withDeadline)
	defer cancel3()
	if got != withDeadline {
		t.Error("ensureContext should keep an existing deadline")
	}
}
