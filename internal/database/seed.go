// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/toolhub/internal/logging"
	"github.com/tomtom215/toolhub/internal/models"
)

// demoCategories and demoProducts describe a small hardware storefront used
// for local development and demos.
var demoCategories = []Category{
	{ID: "power-tools", Name: "Power Tools"},
	{ID: "hand-tools", Name: "Hand Tools"},
	{ID: "accessories", Name: "Accessories"},
	{ID: "safety", Name: "Safety Gear"},
}

var demoProducts = []struct {
	id, name, desc, spec, label, category string
	price                                 float64
	featured                              bool
	ageDays                               int
}{
	{"p-drill-18v", "Cordless Drill 18V", "Compact cordless drill driver for wood and metal", "18V lithium battery, 2 speed gearbox, 13mm chuck", models.LabelHot, "power-tools", 129.00, true, 40},
	{"p-impact-driver", "Impact Driver 18V", "High torque impact driver for long screws", "18V, 180Nm torque, quarter inch hex", "", "power-tools", 149.00, false, 35},
	{"p-circular-saw", "Circular Saw 1400W", "Corded circular saw for straight cuts in timber", "1400W motor, 190mm blade, bevel 45 degrees", models.LabelSale, "power-tools", 99.00, false, 60},
	{"p-angle-grinder", "Angle Grinder 115mm", "Angle grinder for cutting and grinding metal", "850W, 115mm disc, spindle lock", "", "power-tools", 59.00, false, 20},
	{"p-jigsaw", "Jigsaw 650W", "Variable speed jigsaw for curved cuts", "650W, pendulum action, tool free blade change", models.LabelNew, "power-tools", 79.00, true, 5},
	{"p-hammer", "Claw Hammer 16oz", "Fibreglass handle claw hammer", "16oz forged steel head, anti vibration grip", "", "hand-tools", 19.50, false, 90},
	{"p-hand-saw", "Hand Saw 500mm", "Hardpoint hand saw for timber", "500mm blade, 7 teeth per inch", "", "hand-tools", 15.00, false, 80},
	{"p-screwdriver-set", "Screwdriver Set 12 Piece", "Slotted and phillips screwdriver set", "Chrome vanadium shafts, magnetic tips", models.LabelSale, "hand-tools", 24.00, true, 45},
	{"p-spirit-level", "Spirit Level 600mm", "Aluminium spirit level with three vials", "600mm, shock absorbing end caps", "", "hand-tools", 22.00, false, 25},
	{"p-drill-bits", "Drill Bit Set 25 Piece", "HSS drill bit set for metal wood and masonry", "25 bits, 1 to 13mm, storage case", "", "accessories", 29.00, false, 30},
	{"p-saw-blades", "Circular Saw Blade Pack", "Replacement circular saw blades for timber", "190mm, 24 and 48 teeth", "", "accessories", 34.00, false, 28},
	{"p-battery-18v", "18V Battery 5Ah", "Spare lithium battery for 18V cordless tools", "5Ah capacity, charge indicator", models.LabelHot, "accessories", 69.00, false, 15},
	{"p-safety-glasses", "Safety Glasses", "Anti fog safety glasses with side shields", "EN166 rated, polycarbonate lens", "", "safety", 9.00, false, 50},
	{"p-work-gloves", "Work Gloves", "Cut resistant work gloves", "Level 5 cut resistance, nitrile palm", "", "safety", 12.00, false, 10},
	{"p-ear-defenders", "Ear Defenders", "Folding ear defenders for power tool use", "SNR 30dB, padded headband", models.LabelNew, "safety", 18.00, false, 3},
}

// SeedDemoData fills an empty database with a demo catalog and a few users'
// interaction histories. A database that already has products is left untouched.
func (db *DB) SeedDemoData(ctx context.Context) error {
	n, err := db.CountProducts(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logging.Debug().Int("products", n).Msg("Skipping demo seed, catalog not empty")
		return nil
	}

	now := time.Now().UTC().Truncate(time.Second)
	day := 24 * time.Hour

	if err := db.UpsertCategories(ctx, demoCategories); err != nil {
		return err
	}

	products := make([]models.Product, 0, len(demoProducts))
	for _, d := range demoProducts {
		products = append(products, models.Product{
			ID:            d.id,
			Name:          d.name,
			Description:   d.desc,
			Specification: d.spec,
			Label:         d.label,
			CategoryID:    d.category,
			Price:         d.price,
			Featured:      d.featured,
			InStock:       true,
			CreatedAt:     now.Add(-time.Duration(d.ageDays) * day),
		})
	}
	if err := db.UpsertProducts(ctx, products); err != nil {
		return err
	}

	ev := func(user string, kind models.SourceKind, product, query string, ago time.Duration) models.InteractionEvent {
		return models.InteractionEvent{UserID: user, Kind: kind, ProductID: product, Query: query, Timestamp: now.Add(-ago)}
	}
	events := []models.InteractionEvent{
		ev("alice", models.SourceSearchText, "", "cordless drill", 9*day),
		ev("alice", models.SourceProductView, "p-drill-18v", "", 9*day),
		ev("alice", models.SourceProductView, "p-battery-18v", "", 8*day),
		ev("alice", models.SourceSearchMatch, "p-drill-bits", "", 7*day),
		ev("bob", models.SourceProductView, "p-circular-saw", "", 6*day),
		ev("bob", models.SourceProductView, "p-saw-blades", "", 6*day),
		ev("bob", models.SourceSearchText, "", "safety glasses", 5*day),
		ev("carol", models.SourceProductView, "p-hammer", "", 4*day),
		ev("carol", models.SourceProductView, "p-screwdriver-set", "", 4*day),
		ev("carol", models.SourceSearchMatch, "p-spirit-level", "", 3*day),
		ev("dave", models.SourceProductView, "p-drill-18v", "", 2*day),
		ev("dave", models.SourceProductView, "p-impact-driver", "", 2*day),
	}
	if err := db.InsertEvents(ctx, events); err != nil {
		return err
	}

	carts := []struct {
		user, product string
		ago           time.Duration
	}{
		{"alice", "p-drill-18v", 8 * day},
		{"alice", "p-drill-bits", 7 * day},
		{"bob", "p-circular-saw", 5 * day},
		{"bob", "p-safety-glasses", 5 * day},
		{"dave", "p-battery-18v", day},
	}
	for _, c := range carts {
		if err := db.AddToCart(ctx, c.user, c.product, now.Add(-c.ago)); err != nil {
			return err
		}
	}
	for _, user := range []string{"alice", "bob"} {
		if _, err := db.CompleteOrder(ctx, user, now.Add(-4*day)); err != nil {
			return fmt.Errorf("failed to complete demo order for %s: %w", user, err)
		}
	}

	logging.Info().
		Int("categories", len(demoCategories)).
		Int("products", len(products)).
		Int("events", len(events)).
		Msg("Seeded demo data")
	return nil
}
