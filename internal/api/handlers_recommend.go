// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cloudcart/analytics/internal/logging"
	"github.com/cloudcart/analytics/internal/metrics"
)

// TrainModel kicks off recommendation model training in the background
// and responds immediately with 202 Accepted.
func (h *Handler) TrainModel(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	go func() {
		trainStart := time.Now()
		// Detached from the request context: training outlives the response.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		trained := h.engine.Train(ctx)
		metrics.RecordTraining(trained, time.Since(trainStart))
		if !trained {
			logging.Warn().Msg("Background training did not produce a new model")
		}
	}()

	respondSuccess(w, http.StatusAccepted, map[string]interface{}{
		"message": "Model training started",
	}, started)
}

// UserRecommendations returns personalized recommendations for a user,
// falling back to popular products for unknown users or an untrained
// model. Query params: limit.
func (h *Handler) UserRecommendations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "MISSING_USER_ID", "User ID is required", nil)
		return
	}
	limit := h.recommendLimit(r)

	products, algorithm := h.engine.RecommendForUser(r.Context(), userID, limit)
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"user_id":         userID,
		"recommendations": products,
		"count":           len(products),
		"algorithm":       algorithm,
	}, started)
}

// ProductRecommendations returns products similar to the given product.
// Unknown products yield an empty list. Query params: limit.
func (h *Handler) ProductRecommendations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	productID := chi.URLParam(r, "productID")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "MISSING_PRODUCT_ID", "Product ID is required", nil)
		return
	}
	limit := h.recommendLimit(r)

	products := h.engine.SimilarProducts(productID, limit)
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"product_id":       productID,
		"similar_products": products,
		"count":            len(products),
	}, started)
}

// PopularRecommendations returns the best-selling products independent
// of training state. Query params: limit.
func (h *Handler) PopularRecommendations(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	limit := h.recommendLimit(r)

	products := h.engine.PopularProducts(r.Context(), limit)
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	}, started)
}

// ModelStatus reports the recommendation model's training state.
func (h *Handler) ModelStatus(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	respondSuccess(w, http.StatusOK, h.engine.Status(), started)
}
