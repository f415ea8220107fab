// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

/*
schema.go - Database Schema Management

Tables:
  - categories: catalog categories (id, display name)
  - products: the storefront catalog
  - interaction_events: append-only behavioral facts (searches, views,
    cart additions, completed order lines), one row per event
  - cart_items: current cart contents; paid rows belong to completed orders

The storefront owns writes to every table. The recommendation service
reads them; the insert helpers in writes.go exist for demo seeding and tests.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		specification TEXT NOT NULL DEFAULT '',
		label TEXT NOT NULL DEFAULT '',
		category_id TEXT,
		price DOUBLE NOT NULL DEFAULT 0,
		featured BOOLEAN NOT NULL DEFAULT false,
		in_stock BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE SEQUENCE IF NOT EXISTS interaction_events_seq START 1`,
	`CREATE TABLE IF NOT EXISTS interaction_events (
		id BIGINT PRIMARY KEY DEFAULT nextval('interaction_events_seq'),
		user_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		product_id TEXT,
		product_name TEXT,
		query TEXT,
		occurred_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cart_items (
		user_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 1,
		paid BOOLEAN NOT NULL DEFAULT false,
		added_at TIMESTAMP NOT NULL
	)`,
}

var indexCreationQueries = []string{
	`CREATE INDEX IF NOT EXISTS idx_events_user ON interaction_events(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_occurred ON interaction_events(occurred_at)`,
	`CREATE INDEX IF NOT EXISTS idx_cart_user ON cart_items(user_id)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) createIndexes(ctx context.Context) error {
	for _, query := range indexCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
