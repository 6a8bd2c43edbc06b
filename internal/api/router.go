// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cloudcart/analytics/internal/config"
)

// Router wires handlers and middleware into the HTTP route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for the given handler and API config.
func NewRouter(handler *Handler, cfg *config.APIConfig) *Router {
	mwConfig := DefaultChiMiddlewareConfig()
	if cfg != nil {
		mwConfig.CORSAllowedOrigins = cfg.CORSOrigins
		if cfg.RateLimitReqs > 0 {
			mwConfig.RateLimitRequests = cfg.RateLimitReqs
		}
		if cfg.RateLimitWindow > 0 {
			mwConfig.RateLimitWindow = cfg.RateLimitWindow
		}
	}

	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(RequestIDWithLogging())
	r.Use(RequestLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Service identity and health.
	r.Get("/", router.handler.Root)
	r.Get("/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Dashboard analytics.
	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/dashboard", router.handler.AnalyticsDashboard)
		r.Get("/sales/daily", router.handler.AnalyticsDailySales)
		r.Get("/products/top-selling", router.handler.AnalyticsTopProducts)
		r.Get("/orders/status-distribution", router.handler.AnalyticsStatusDistribution)
		r.Get("/users/activity", router.handler.AnalyticsUserActivity)
	})

	// Recommendation endpoints.
	r.Route("/api/v1/ai", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Post("/train", router.handler.TrainModel)
		r.Get("/recommendations/user/{userID}", router.handler.UserRecommendations)
		r.Get("/recommendations/product/{productID}", router.handler.ProductRecommendations)
		r.Get("/recommendations/popular", router.handler.PopularRecommendations)
		r.Get("/model/status", router.handler.ModelStatus)
	})

	return r
}
