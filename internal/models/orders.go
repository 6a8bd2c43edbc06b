// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

// Package models defines shared data types for order events, analytics
// query rows and the API response envelope.
package models

import (
	"time"
)

// Order lifecycle event types as stored in order_events.event_type.
const (
	EventOrderCreated   = "order.created"
	EventOrderConfirmed = "order.confirmed"
	EventOrderShipped   = "order.shipped"
	EventOrderDelivered = "order.delivered"
	EventOrderCancelled = "order.cancelled"
)

// OrderEvent is a single order lifecycle event as persisted in the
// order_events table. TotalAmount and Status are only populated for
// event types that carry them.
type OrderEvent struct {
	EventID     string    `json:"event_id"`
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	EventType   string    `json:"event_type"`
	EventTime   time.Time `json:"event_time"`
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrderItem is a single order line item as persisted in the order_items
// table. Items arrive attached to order.created events.
type OrderItem struct {
	OrderID     string    `json:"order_id"`
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Price       float64   `json:"price"`
	Subtotal    float64   `json:"subtotal"`
	EventTime   time.Time `json:"event_time"`
	CreatedAt   time.Time `json:"created_at"`
}
