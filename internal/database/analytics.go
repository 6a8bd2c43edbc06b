// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudcart/analytics/internal/metrics"
	"github.com/cloudcart/analytics/internal/models"
)

// GetDailySales returns per-day order counts, revenue and average order
// value for order.created events over the last N days.
func (db *DB) GetDailySales(ctx context.Context, days int) ([]models.DailySales, error) {
	query := `
		SELECT
			strftime(event_time, '%Y-%m-%d') AS day,
			COUNT(DISTINCT order_id) AS order_count,
			COALESCE(SUM(total_amount), 0) AS revenue,
			COALESCE(AVG(total_amount), 0) AS avg_order_value
		FROM order_events
		WHERE event_type = 'order.created'
		  AND event_time >= current_timestamp - to_days(?::INTEGER)
		GROUP BY day
		ORDER BY day DESC
	`

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("query daily sales: %w", err)
	}
	defer rows.Close()

	var results []models.DailySales
	for rows.Next() {
		var row models.DailySales
		if err := rows.Scan(&row.Date, &row.OrderCount, &row.Revenue, &row.AvgOrderVal); err != nil {
			return nil, fmt.Errorf("scan daily sales: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily sales: %w", err)
	}
	return results, nil
}

// GetTopProducts returns the best-selling products by total quantity sold.
func (db *DB) GetTopProducts(ctx context.Context, limit int) ([]models.ProductSales, error) {
	query := `
		SELECT
			product_id,
			ANY_VALUE(product_name) AS product_name,
			SUM(quantity) AS total_sold,
			COUNT(DISTINCT order_id) AS order_count,
			COALESCE(SUM(subtotal), 0) AS revenue
		FROM order_items
		GROUP BY product_id
		ORDER BY total_sold DESC, product_id ASC
		LIMIT ?
	`

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query top products: %w", err)
	}
	defer rows.Close()

	var results []models.ProductSales
	for rows.Next() {
		var row models.ProductSales
		if err := rows.Scan(&row.ProductID, &row.ProductName, &row.TotalSold, &row.OrderCount, &row.Revenue); err != nil {
			return nil, fmt.Errorf("scan top products: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top products: %w", err)
	}
	return results, nil
}

// GetOrderStatusDistribution returns event counts grouped by event type.
func (db *DB) GetOrderStatusDistribution(ctx context.Context) ([]models.OrderStatusCount, error) {
	query := `
		SELECT event_type, COUNT(*) AS cnt
		FROM order_events
		GROUP BY event_type
		ORDER BY cnt DESC, event_type ASC
	`

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query status distribution: %w", err)
	}
	defer rows.Close()

	var results []models.OrderStatusCount
	for rows.Next() {
		var row models.OrderStatusCount
		if err := rows.Scan(&row.EventType, &row.Count); err != nil {
			return nil, fmt.Errorf("scan status distribution: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status distribution: %w", err)
	}
	return results, nil
}

// GetTotalMetrics returns the overall dashboard counters computed from
// order.created events.
func (db *DB) GetTotalMetrics(ctx context.Context) (*models.TotalMetrics, error) {
	query := `
		SELECT
			COUNT(DISTINCT order_id) AS total_orders,
			COALESCE(SUM(total_amount), 0) AS total_revenue,
			COUNT(DISTINCT user_id) AS total_users,
			COALESCE(AVG(total_amount), 0) AS avg_order_value
		FROM order_events
		WHERE event_type = 'order.created'
	`

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var m models.TotalMetrics
	err := db.conn.QueryRowContext(ctx, query).Scan(&m.TotalOrders, &m.TotalRevenue, &m.TotalUsers, &m.AvgOrderVal)
	if err != nil {
		return nil, fmt.Errorf("query total metrics: %w", err)
	}
	return &m, nil
}

// GetUserActivity returns the top-spending users over the last N days.
func (db *DB) GetUserActivity(ctx context.Context, days, limit int) ([]models.UserActivity, error) {
	query := `
		SELECT
			user_id,
			COUNT(DISTINCT order_id) AS order_count,
			COALESCE(SUM(total_amount), 0) AS total_spent
		FROM order_events
		WHERE event_type = 'order.created'
		  AND event_time >= current_timestamp - to_days(?::INTEGER)
		GROUP BY user_id
		ORDER BY total_spent DESC, user_id ASC
		LIMIT ?
	`

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, days, limit)
	if err != nil {
		return nil, fmt.Errorf("query user activity: %w", err)
	}
	defer rows.Close()

	var results []models.UserActivity
	for rows.Next() {
		var row models.UserActivity
		if err := rows.Scan(&row.UserID, &row.OrderCount, &row.TotalSpent); err != nil {
			return nil, fmt.Errorf("scan user activity: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user activity: %w", err)
	}
	return results, nil
}

// GetDashboard aggregates the overview payload: totals, recent daily
// sales, top products and the status distribution.
func (db *DB) GetDashboard(ctx context.Context) (data *models.DashboardData, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("dashboard", time.Since(start), err)
	}()

	totals, err := db.GetTotalMetrics(ctx)
	if err != nil {
		return nil, err
	}

	daily, err := db.GetDailySales(ctx, 7)
	if err != nil {
		return nil, err
	}

	topProducts, err := db.GetTopProducts(ctx, 10)
	if err != nil {
		return nil, err
	}

	statuses, err := db.GetOrderStatusDistribution(ctx)
	if err != nil {
		return nil, err
	}

	return &models.DashboardData{
		Totals:             *totals,
		DailySales:         daily,
		TopProducts:        topProducts,
		StatusDistribution: statuses,
		GeneratedAt:        time.Now().UTC(),
	}, nil
}
