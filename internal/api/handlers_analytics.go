// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package api

import (
	"net/http"
	"time"
)

// AnalyticsDashboard returns the overview payload: totals, recent daily
// sales, top products and the order status distribution.
func (h *Handler) AnalyticsDashboard(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	dashboard, err := h.store.GetDashboard(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DASHBOARD_ERROR", "Failed to build dashboard", err)
		return
	}
	respondSuccess(w, http.StatusOK, dashboard, started)
}

// AnalyticsDailySales returns per-day order counts and revenue.
// Query params: days (default 30, max 365).
func (h *Handler) AnalyticsDailySales(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	days := clampInt(getIntParam(r, "days", 30), 1, 365)

	sales, err := h.store.GetDailySales(r.Context(), days)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DAILY_SALES_ERROR", "Failed to query daily sales", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"days":  days,
		"sales": sales,
		"count": len(sales),
	}, started)
}

// AnalyticsTopProducts returns the best-selling products.
// Query params: limit (default 10, max 100).
func (h *Handler) AnalyticsTopProducts(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	limit := clampInt(getIntParam(r, "limit", 10), 1, 100)

	products, err := h.store.GetTopProducts(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TOP_PRODUCTS_ERROR", "Failed to query top products", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	}, started)
}

// AnalyticsStatusDistribution returns event counts grouped by type.
func (h *Handler) AnalyticsStatusDistribution(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	statuses, err := h.store.GetOrderStatusDistribution(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STATUS_DISTRIBUTION_ERROR", "Failed to query status distribution", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"distribution": statuses,
		"count":        len(statuses),
	}, started)
}

// AnalyticsUserActivity returns the top-spending users.
// Query params: days (default 30, max 365), limit (default 10, max 100).
func (h *Handler) AnalyticsUserActivity(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	days := clampInt(getIntParam(r, "days", 30), 1, 365)
	limit := clampInt(getIntParam(r, "limit", 10), 1, 100)

	users, err := h.store.GetUserActivity(r.Context(), days, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "USER_ACTIVITY_ERROR", "Failed to query user activity", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"days":  days,
		"users": users,
		"count": len(users),
	}, started)
}
