// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudcart/analytics/internal/logging"
	"github.com/cloudcart/analytics/internal/metrics"
	"github.com/cloudcart/analytics/internal/models"
)

// InsertOrderEvent persists an order event and its line items in a single
// transaction. Duplicate event IDs are ignored via ON CONFLICT, and their
// items are skipped, so redelivered messages are harmless.
// Returns true if the event was newly inserted.
func (db *DB) InsertOrderEvent(ctx context.Context, event *models.OrderEvent, items []models.OrderItem) (inserted bool, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("insert_order_event", time.Since(start), err)
	}()

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err.Error() != "sql: transaction has already been committed or rolled back" {
			logging.Warn().Err(err).Msg("Failed to rollback transaction")
		}
	}()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO order_events (event_id, order_id, user_id, event_type, event_time, total_amount, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING`,
		event.EventID, event.OrderID, event.UserID, event.EventType,
		event.EventTime, event.TotalAmount, event.Status)
	if err != nil {
		return false, fmt.Errorf("insert order event: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Already stored, nothing to do.
		return false, tx.Commit()
	}

	for i := range items {
		item := &items[i]
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, price, subtotal, event_time)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.OrderID, item.ProductID, item.ProductName,
			item.Quantity, item.Price, item.Subtotal, item.EventTime); err != nil {
			return false, fmt.Errorf("insert order item %s: %w", item.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return true, nil
}

// GetRecordCounts returns row counts for the main tables.
func (db *DB) GetRecordCounts(ctx context.Context) (events int64, items int64, err error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM order_events").Scan(&events)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count order events: %w", err)
	}

	err = db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM order_items").Scan(&items)
	if err != nil {
		return events, 0, fmt.Errorf("failed to count order items: %w", err)
	}

	return events, items, nil
}
