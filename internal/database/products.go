// Toolhub - Hybrid Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/toolhub

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/toolhub/internal/models"
)

const productColumns = `p.id, p.name, p.description, p.specification, p.label,
	COALESCE(p.category_id, ''), COALESCE(c.name, ''),
	p.price, p.featured, p.in_stock, p.created_at`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Specification, &p.Label,
		&p.CategoryID, &p.Category,
		&p.Price, &p.Featured, &p.InStock, &p.CreatedAt,
	)
	return p, err
}

func (db *DB) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	if db.conn == nil {
		return nil, ErrNilConnection
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer closeWithLog(rows, "rows")

	products := make([]models.Product, 0, 64)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

// ListProducts returns the whole catalog ordered by id.
func (db *DB) ListProducts(ctx context.Context) ([]models.Product, error) {
	return db.queryProducts(ctx, `SELECT `+productColumns+productFrom+` ORDER BY p.id`)
}

// ProductsByCategory returns the products of one category ordered by id.
func (db *DB) ProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error) {
	return db.queryProducts(ctx,
		`SELECT `+productColumns+productFrom+` WHERE p.category_id = ? ORDER BY p.id`, categoryID)
}

// GetProduct returns a single product. ok is false when no product has the id.
func (db *DB) GetProduct(ctx context.Context, id string) (models.Product, bool, error) {
	if db.conn == nil {
		return models.Product{}, false, ErrNilConnection
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	row := db.conn.QueryRowContext(ctx, `SELECT `+productColumns+productFrom+` WHERE p.id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, false, nil
	}
	if err != nil {
		return models.Product{}, false, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return p, true, nil
}

// CountProducts returns the catalog size.
func (db *DB) CountProducts(ctx context.Context) (int, error) {
	if db.conn == nil {
		return 0, ErrNilConnection
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}
