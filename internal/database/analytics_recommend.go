// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package database

import (
	"context"
	"fmt"

	"github.com/cloudcart/analytics/internal/recommend"
)

// GetOrderLines returns all order line items joined to their parent
// order.created event, the raw material for recommendation training.
func (db *DB) GetOrderLines(ctx context.Context) ([]recommend.OrderLine, error) {
	query := `
		SELECT
			oi.order_id,
			oe.user_id,
			oi.product_id,
			oi.product_name,
			oi.quantity,
			oi.subtotal
		FROM order_items oi
		JOIN order_events oe ON oi.order_id = oe.order_id
		WHERE oe.event_type = 'order.created'
		ORDER BY oi.order_id, oi.product_id
	`

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	var lines []recommend.OrderLine
	for rows.Next() {
		var line recommend.OrderLine
		if err := rows.Scan(&line.OrderID, &line.UserID, &line.ProductID,
			&line.ProductName, &line.Quantity, &line.Subtotal); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return lines, nil
}

// GetPopularProducts returns products ranked by total quantity sold, the
// cold-start fallback for recommendations.
func (db *DB) GetPopularProducts(ctx context.Context, limit int) ([]recommend.PopularProduct, error) {
	query := `
		SELECT
			product_id,
			ANY_VALUE(product_name) AS product_name,
			SUM(quantity) AS total_sold,
			COUNT(DISTINCT order_id) AS order_count
		FROM order_items
		GROUP BY product_id
		ORDER BY total_sold DESC, product_id ASC
		LIMIT ?
	`

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query popular products: %w", err)
	}
	defer rows.Close()

	var products []recommend.PopularProduct
	for rows.Next() {
		var p recommend.PopularProduct
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.TotalSold, &p.OrderCount); err != nil {
			return nil, fmt.Errorf("scan popular product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate popular products: %w", err)
	}
	return products, nil
}

// RecommendationDataProvider implements recommend.DataSource using the database.
type RecommendationDataProvider struct {
	db *DB
}

// NewRecommendationDataProvider creates a new data provider.
func NewRecommendationDataProvider(db *DB) *RecommendationDataProvider {
	return &RecommendationDataProvider{db: db}
}

// OrderLines implements recommend.DataSource.
func (p *RecommendationDataProvider) OrderLines(ctx context.Context) ([]recommend.OrderLine, error) {
	return p.db.GetOrderLines(ctx)
}

// PopularProducts implements recommend.DataSource.
func (p *RecommendationDataProvider) PopularProducts(ctx context.Context, limit int) ([]recommend.PopularProduct, error) {
	return p.db.GetPopularProducts(ctx, limit)
}

// Ensure interface compliance.
var _ recommend.DataSource = (*RecommendationDataProvider)(nil)
