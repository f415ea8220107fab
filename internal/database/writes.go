// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/toolhub/internal/models"
)

// Category is a catalog category row.
type Category struct {
	ID   string
	Name string
}

// UpsertCategories inserts or renames categories.
func (db *DB) UpsertCategories(ctx context.Context, categories []Category) error {
	return db.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for _, c := range categories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO categories (id, name) VALUES (?, ?)
				 ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
				c.ID, c.Name); err != nil {
				return fmt.Errorf("failed to upsert category %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

// UpsertProducts inserts or replaces catalog products. Category names on
// the product are ignored; the category row is the source of truth.
func (db *DB) UpsertProducts(ctx context.Context, products []models.Product) error {
	return db.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for i := range products {
			p := &products[i]
			created := p.CreatedAt
			if created.IsZero() {
				created = time.Now()
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO products (id, name, description, specification, label, category_id,
					price, featured, in_stock, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					name = excluded.name,
					description = excluded.description,
					specification = excluded.specification,
					label = excluded.label,
					category_id = excluded.category_id,
					price = excluded.price,
					featured = excluded.featured,
					in_stock = excluded.in_stock,
					created_at = excluded.created_at`,
				p.ID, p.Name, p.Description, p.Specification, p.Label, nullString(p.CategoryID),
				p.Price, p.Featured, p.InStock, created.UTC()); err != nil {
				return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

// InsertEvents appends interaction events.
func (db *DB) InsertEvents(ctx context.Context, events []models.InteractionEvent) error {
	return db.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		for i := range events {
			ev := &events[i]
			ts := ev.Timestamp
			if ts.IsZero() {
				ts = time.Now()
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO interaction_events (user_id, kind, product_id, product_name, query, occurred_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				ev.UserID, ev.Kind.String(), nullString(ev.ProductID), nullString(ev.ProductName),
				nullString(ev.Query), ts.UTC()); err != nil {
				return fmt.Errorf("failed to insert interaction event for %s: %w", ev.UserID, err)
			}
		}
		return nil
	})
}

// AddToCart puts a product in the user's active cart and records the
// matching cart_add event.
func (db *DB) AddToCart(ctx context.Context, userID, productID string, at time.Time) error {
	return db.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cart_items (user_id, product_id, added_at) VALUES (?, ?, ?)`,
			userID, productID, at.UTC()); err != nil {
			return fmt.Errorf("failed to add cart item: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO interaction_events (user_id, kind, product_id, occurred_at) VALUES (?, ?, ?, ?)`,
			userID, models.SourceCartAdd.String(), productID, at.UTC()); err != nil {
			return fmt.Errorf("failed to record cart event: %w", err)
		}
		return nil
	})
}

// CompleteOrder marks the user's active cart as paid and records one
// order_complete event per distinct product. It returns the ordered ids.
func (db *DB) CompleteOrder(ctx context.Context, userID string, at time.Time) ([]string, error) {
	ids, err := db.ActiveCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	err = db.withTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE cart_items SET paid = true WHERE user_id = ? AND NOT paid`, userID); err != nil {
			return fmt.Errorf("failed to mark cart paid: %w", err)
		}
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO interaction_events (user_id, kind, product_id, occurred_at) VALUES (?, ?, ?, ?)`,
				userID, models.SourceOrderComplete.String(), id, at.UTC()); err != nil {
				return fmt.Errorf("failed to record order line %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (db *DB) withTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	if db.conn == nil {
		return ErrNilConnection
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackQuietly(tx)

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
