// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package database

import (
	"context"
	"testing"
	"time"

	"github.com/cloudcart/analytics/internal/models"
)

func TestGetOrderLines(t *testing.T) {
	db := setupTestDB(t)
	seedAnalyticsData(t, db)

	lines, err := db.GetOrderLines(context.Background())
	if err != nil {
		t.Fatalf("GetOrderLines() error = %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("Expected 4 order lines, got %d", len(lines))
	}

	// Ordered by order_id then product_id.
	if lines[0].OrderID != "ord-1" || lines[0].ProductID != "prod-a" {
		t.Errorf("Unexpected first line: %+v", lines[0])
	}
	if lines[0].UserID != "user-1" {
		t.Errorf("Expected line joined to user-1, got %s", lines[0].UserID)
	}
	if lines[1].OrderID != "ord-1" || lines[1].ProductID != "prod-b" {
		t.Errorf("Unexpected second line: %+v", lines[1])
	}
	if lines[3].OrderID != "ord-3" || lines[3].UserID != "user-3" {
		t.Errorf("Unexpected last line: %+v", lines[3])
	}
}

func TestGetOrderLines_ExcludesLifecycleEvents(t *testing.T) {
	db := setupTestDB(t)

	// A cancelled order event carrying items must not contribute lines.
	event := &models.OrderEvent{
		EventID:   "evt-1",
		OrderID:   "ord-1",
		UserID:    "user-1",
		EventType: models.EventOrderCancelled,
		EventTime: time.Now().UTC(),
	}
	items := []models.OrderItem{
		{OrderID: "ord-1", ProductID: "prod-a", ProductName: "Alpha", Quantity: 1, Price: 9.99, Subtotal: 9.99, EventTime: event.EventTime},
	}
	if _, err := db.InsertOrderEvent(context.Background(), event, items); err != nil {
		t.Fatalf("InsertOrderEvent() error = %v", err)
	}

	lines, err := db.GetOrderLines(context.Background())
	if err != nil {
		t.Fatalf("GetOrderLines() error = %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("Expected no lines without order.created events, got %d", len(lines))
	}
}

func TestGetPopularProducts(t *testing.T) {
	db := setupTestDB(t)
	seedAnalyticsData(t, db)

	products, err := db.GetPopularProducts(context.Background(), 2)
	if err != nil {
		t.Fatalf("GetPopularProducts() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(products))
	}

	if products[0].ProductID != "prod-a" || products[0].TotalSold != 3 {
		t.Errorf("Expected prod-a with 3 sold first, got %s with %d", products[0].ProductID, products[0].TotalSold)
	}
	if products[1].ProductID != "prod-c" || products[1].TotalSold != 2 {
		t.Errorf("Expected prod-c with 2 sold second, got %s with %d", products[1].ProductID, products[1].TotalSold)
	}
}

func TestRecommendationDataProvider(t *testing.T) {
	db := setupTestDB(t)
	seedAnalyticsData(t, db)

	provider := NewRecommendationDataProvider(db)
	ctx := context.Background()

	lines, err := provider.OrderLines(ctx)
	if err != nil {
		t.Fatalf("OrderLines() error = %v", err)
	}
	if len(lines) != 4 {
		t.Errorf("Expected 4 lines, got %d", len(lines))
	}

	products, err := provider.PopularProducts(ctx, 10)
	if err != nil {
		t.Fatalf("PopularProducts() error = %v", err)
	}
	if len(products) != 3 {
		t.Errorf("Expected 3 products, got %d", len(products))
	}
}
