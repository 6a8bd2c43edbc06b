// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package models

import (
	"time"
)

// DailySales is one row of the per-day sales aggregation.
type DailySales struct {
	Date        string  `json:"date"`
	OrderCount  int64   `json:"order_count"`
	Revenue     float64 `json:"revenue"`
	AvgOrderVal float64 `json:"avg_order_value"`
}

// ProductSales is one row of the top-selling products aggregation.
type ProductSales struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	TotalSold   int64   `json:"total_sold"`
	OrderCount  int64   `json:"order_count"`
	Revenue     float64 `json:"revenue"`
}

// OrderStatusCount is one row of the order status distribution.
type OrderStatusCount struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// TotalMetrics holds the overall dashboard counters.
type TotalMetrics struct {
	TotalOrders  int64   `json:"total_orders"`
	TotalRevenue float64 `json:"total_revenue"`
	TotalUsers   int64   `json:"total_users"`
	AvgOrderVal  float64 `json:"avg_order_value"`
}

// UserActivity is one row of the top-spenders aggregation.
type UserActivity struct {
	UserID     string  `json:"user_id"`
	OrderCount int64   `json:"order_count"`
	TotalSpent float64 `json:"total_spent"`
}

// DashboardData aggregates the overview endpoint payload.
type DashboardData struct {
	Totals             TotalMetrics       `json:"totals"`
	DailySales         []DailySales       `json:"daily_sales"`
	TopProducts        []ProductSales     `json:"top_products"`
	StatusDistribution []OrderStatusCount `json:"status_distribution"`
	GeneratedAt        time.Time          `json:"generated_at"`
}
