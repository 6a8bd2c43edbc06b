// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

// Package api provides the HTTP layer: Chi routing, middleware and the
// analytics and recommendation endpoints.
package api

import (
	"context"
	"time"

	"github.com/cloudcart/analytics/internal/config"
	"github.com/cloudcart/analytics/internal/models"
	"github.com/cloudcart/analytics/internal/recommend"
)

// AnalyticsStore provides the dashboard aggregate queries.
// Implemented by database.DB.
type AnalyticsStore interface {
	GetDashboard(ctx context.Context) (*models.DashboardData, error)
	GetDailySales(ctx context.Context, days int) ([]models.DailySales, error)
	GetTopProducts(ctx context.Context, limit int) ([]models.ProductSales, error)
	GetOrderStatusDistribution(ctx context.Context) ([]models.OrderStatusCount, error)
	GetUserActivity(ctx context.Context, days, limit int) ([]models.UserActivity, error)
	Ping(ctx context.Context) error
}

// Recommender answers product recommendation queries.
// Implemented by recommend.Engine.
type Recommender interface {
	Train(ctx context.Context) bool
	RecommendForUser(ctx context.Context, userID string, n int) ([]recommend.ScoredProduct, recommend.Algorithm)
	SimilarProducts(productID string, n int) []recommend.ScoredProduct
	PopularProducts(ctx context.Context, n int) []recommend.PopularProduct
	Status() recommend.Status
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response envelope and query param helpers
//   - handlers_health.go: health and service identity endpoints
//   - handlers_analytics.go: dashboard analytics endpoints
//   - handlers_recommend.go: training and recommendation endpoints
type Handler struct {
	store     AnalyticsStore
	engine    Recommender
	config    *config.Config
	startTime time.Time
}

// NewHandler creates an API handler with its required dependencies.
func NewHandler(store AnalyticsStore, engine Recommender, cfg *config.Config) *Handler {
	return &Handler{
		store:     store,
		engine:    engine,
		config:    cfg,
		startTime: time.Now(),
	}
}
