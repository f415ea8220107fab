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

const eventColumns = `user_id, kind, COALESCE(product_id, ''), COALESCE(product_name, ''),
	COALESCE(query, ''), occurred_at`

func (db *DB) queryEvents(ctx context.Context, query string, args ...any) ([]models.InteractionEvent, error) {
	if db.conn == nil {
		return nil, ErrNilConnection
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query interaction events: %w", err)
	}
	defer closeWithLog(rows, "rows")

	events := make([]models.InteractionEvent, 0, 128)
	skipped := 0
	for rows.Next() {
		var (
			ev   models.InteractionEvent
			kind string
		)
		if err := rows.Scan(&ev.UserID, &kind, &ev.ProductID, &ev.ProductName, &ev.Query, &ev.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan interaction event: %w", err)
		}
		k, ok := models.ParseSourceKind(kind)
		if !ok {
			skipped++
			continue
		}
		ev.Kind = k
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating interaction events: %w", err)
	}
	if skipped > 0 {
		logging.Ctx(ctx).Warn().Int("skipped", skipped).Msg("Ignored interaction events with unknown kind")
	}
	return events, nil
}

// InteractionEvents returns every event that occurred after since, oldest
// first. A zero since returns the full history.
func (db *DB) InteractionEvents(ctx context.Context, since time.Time) ([]models.InteractionEvent, error) {
	if since.IsZero() {
		return db.queryEvents(ctx, `SELECT `+eventColumns+` FROM interaction_events ORDER BY occurred_at, id`)
	}
	return db.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM interaction_events WHERE occurred_at > ? ORDER BY occurred_at, id`,
		since.UTC())
}

// UserEvents returns all events of one user, oldest first.
func (db *DB) UserEvents(ctx context.Context, userID string) ([]models.InteractionEvent, error) {
	return db.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM interaction_events WHERE user_id = ? ORDER BY occurred_at, id`,
		userID)
}

// ActiveCart returns the distinct product ids in the user's unpaid cart,
// in the order they were first added.
func (db *DB) ActiveCart(ctx context.Context, userID string) ([]string, error) {
	if db.conn == nil {
		return nil, ErrNilConnection
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT product_id
		FROM cart_items
		WHERE user_id = ? AND NOT paid
		GROUP BY product_id
		ORDER BY MIN(added_at), product_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart: %w", err)
	}
	return ids, nil
}
