// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package api

import (
	"net/http"
	"time"

	"github.com/cloudcart/analytics/internal/models"
)

// Root returns the service identity.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"service": "cloudcart-analytics",
		"message": "Order event analytics and product recommendations",
	}, started)
}

// Health reports service liveness and database connectivity.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	dbStatus := "ok"
	status := http.StatusOK
	overall := "healthy"
	if err := h.store.Ping(r.Context()); err != nil {
		dbStatus = "unavailable"
		overall = "degraded"
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status":         overall,
			"database":       dbStatus,
			"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	})
}
