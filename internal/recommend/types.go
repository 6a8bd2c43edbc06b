// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package recommend

import (
	"context"
	"time"
)

// OrderLine is one purchased line item joined to its parent order.created
// event. Quantity is always positive and Subtotal non-negative.
type OrderLine struct {
	OrderID     string
	UserID      string
	ProductID   string
	ProductName string
	Quantity    int
	Subtotal    float64
}

// ScoredProduct is a ranked recommendation result.
type ScoredProduct struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Score       float64 `json:"score"`
}

// PopularProduct is one row of the popularity ranking used as the
// cold-start fallback.
type PopularProduct struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	TotalSold   int64  `json:"total_sold"`
	OrderCount  int64  `json:"order_count"`
}

// Algorithm identifies which path produced a recommendation result.
type Algorithm string

const (
	// AlgorithmCollaborative marks personalized results from the trained model.
	AlgorithmCollaborative Algorithm = "collaborative_filtering"
	// AlgorithmPopularity marks cold-start fallback results.
	AlgorithmPopularity Algorithm = "popularity_fallback"
)

// Engine lifecycle states.
const (
	StateUntrained = "untrained"
	StateTraining  = "training"
	StateTrained   = "trained"
)

// Status is a point-in-time snapshot of the engine's model.
type Status struct {
	State     string    `json:"state"`
	Trained   bool      `json:"trained"`
	TrainedAt time.Time `json:"trained_at"`
	Users     int       `json:"users"`
	Products  int       `json:"products"`
	Orders    int       `json:"orders"`
	Records   int       `json:"records"`
}

// DataSource supplies training data and the popularity fallback.
// Implementations must be safe for concurrent use.
type DataSource interface {
	// OrderLines returns every order line item joined to its parent
	// order.created event.
	OrderLines(ctx context.Context) ([]OrderLine, error)

	// PopularProducts returns products ranked by total quantity sold.
	PopularProducts(ctx context.Context, limit int) ([]PopularProduct, error)
}
