// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package recommend

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloudcart/analytics/internal/logging"
)

// model is an immutable training snapshot. Once stored in the engine it
// is never mutated; retraining builds a fresh model and swaps the pointer.
type model struct {
	interactions InteractionMatrix
	similarity   SimilarityMatrix
	catalog      map[string]string // product ID -> product name
	trainedAt    time.Time
	records      int
	orders       int
}

// Engine serves product recommendations from an atomically swapped model
// snapshot. All methods are safe for concurrent use; a nil snapshot means
// the engine is untrained and queries degrade to fallback or empty results.
type Engine struct {
	source   DataSource
	current  atomic.Pointer[model]
	training atomic.Bool
	trainMu  sync.Mutex
}

// NewEngine creates an untrained engine backed by the given data source.
func NewEngine(source DataSource) *Engine {
	return &Engine{source: source}
}

// Train extracts order history and rebuilds the model. It returns true
// when a new model was installed. Empty or failed extraction leaves any
// prior model in place and returns false. Concurrent calls are
// serialized; queries keep serving the previous snapshot until the swap.
func (e *Engine) Train(ctx context.Context) bool {
	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	e.training.Store(true)
	defer e.training.Store(false)

	start := time.Now()

	lines, err := e.source.OrderLines(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Recommendation training extraction failed")
		lines = nil
	}
	if len(lines) == 0 {
		logging.Warn().Msg("No order data available for recommendation training")
		return false
	}

	interactions := buildInteractionMatrix(lines)
	similarity := buildSimilarityMatrix(lines)

	catalog := make(map[string]string)
	orderSet := make(map[string]bool)
	for i := range lines {
		catalog[lines[i].ProductID] = lines[i].ProductName
		orderSet[lines[i].OrderID] = true
	}

	m := &model{
		interactions: interactions,
		similarity:   similarity,
		catalog:      catalog,
		trainedAt:    time.Now().UTC(),
		records:      len(lines),
		orders:       len(orderSet),
	}
	e.current.Store(m)

	logging.Info().
		Int("records", m.records).
		Int("orders", m.orders).
		Int("users", len(interactions)).
		Int("products", len(catalog)).
		Dur("duration", time.Since(start)).
		Msg("Recommendation model trained")
	return true
}

// RecommendForUser returns up to n personalized recommendations for the
// user. Candidates are products the user has not purchased, scored by
// similarity to the user's purchases weighted by purchase quantity;
// zero-score candidates are dropped. Unknown users and an untrained
// engine fall back to overall popularity.
func (e *Engine) RecommendForUser(ctx context.Context, userID string, n int) ([]ScoredProduct, Algorithm) {
	if n <= 0 {
		return []ScoredProduct{}, AlgorithmCollaborative
	}

	m := e.current.Load()
	if m == nil {
		return e.popularityFallback(ctx, n)
	}

	userRow := m.interactions[userID]
	if len(userRow) == 0 {
		return e.popularityFallback(ctx, n)
	}

	results := make([]ScoredProduct, 0, len(m.catalog))
	for candidate, name := range m.catalog {
		if _, purchased := userRow[candidate]; purchased {
			continue
		}
		simRow := m.similarity[candidate]
		if len(simRow) == 0 {
			continue
		}
		var score float64
		for productID, qty := range userRow {
			score += simRow[productID] * float64(qty)
		}
		if score > 0 {
			results = append(results, ScoredProduct{
				ProductID:   candidate,
				ProductName: name,
				Score:       score,
			})
		}
	}

	sortScored(results)
	if len(results) > n {
		results = results[:n]
	}
	return results, AlgorithmCollaborative
}

// SimilarProducts returns up to n products most similar to the given
// product. Unknown products and an untrained engine yield an empty
// result; there is no popularity fallback on this path.
func (e *Engine) SimilarProducts(productID string, n int) []ScoredProduct {
	if n <= 0 {
		return []ScoredProduct{}
	}

	m := e.current.Load()
	if m == nil {
		return []ScoredProduct{}
	}

	simRow := m.similarity[productID]
	results := make([]ScoredProduct, 0, len(simRow))
	for id, score := range simRow {
		results = append(results, ScoredProduct{
			ProductID:   id,
			ProductName: m.catalog[id],
			Score:       score,
		})
	}

	sortScored(results)
	if len(results) > n {
		results = results[:n]
	}
	return results
}

// PopularProducts returns up to n products ranked by total quantity sold.
// It queries the store directly and works without training. Errors are
// logged and yield an empty result.
func (e *Engine) PopularProducts(ctx context.Context, n int) []PopularProduct {
	if n <= 0 {
		return []PopularProduct{}
	}

	products, err := e.source.PopularProducts(ctx, n)
	if err != nil {
		logging.Warn().Err(err).Msg("Popular products query failed")
		return []PopularProduct{}
	}
	if products == nil {
		products = []PopularProduct{}
	}
	return products
}

// popularityFallback serves the cold-start path shared by untrained
// engines and unknown users.
func (e *Engine) popularityFallback(ctx context.Context, n int) ([]ScoredProduct, Algorithm) {
	popular := e.PopularProducts(ctx, n)
	results := make([]ScoredProduct, 0, len(popular))
	for _, p := range popular {
		results = append(results, ScoredProduct{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			Score:       float64(p.TotalSold),
		})
	}
	return results, AlgorithmPopularity
}

// Status returns a snapshot of the engine's model state without side effects.
func (e *Engine) Status() Status {
	m := e.current.Load()
	if m == nil {
		state := StateUntrained
		if e.training.Load() {
			state = StateTraining
		}
		return Status{State: state}
	}

	state := StateTrained
	if e.training.Load() {
		state = StateTraining
	}
	return Status{
		State:     state,
		Trained:   true,
		TrainedAt: m.trainedAt,
		Users:     len(m.interactions),
		Products:  len(m.catalog),
		Orders:    m.orders,
		Records:   m.records,
	}
}

// sortScored orders results by score descending, then product ID
// ascending so equal scores rank deterministically.
func sortScored(results []ScoredProduct) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ProductID < results[j].ProductID
	})
}
