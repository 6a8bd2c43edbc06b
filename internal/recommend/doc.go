// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

// Package recommend implements the product recommendation engine.
//
// The engine trains on order history pulled from a DataSource: each
// training run extracts all order lines, builds a user-product
// interaction matrix (cumulative purchase quantities) and a
// product-product similarity matrix (cosine similarity over basket
// co-occurrence counts), then atomically swaps the complete model
// snapshot into place. Queries never observe a partially built model.
//
// Query paths:
//
//   - RecommendForUser scores unpurchased products by
//     similarity-weighted purchase quantities, falling back to overall
//     popularity for unknown users or an untrained engine.
//   - SimilarProducts returns the queried product's similarity row; it
//     has no fallback.
//   - PopularProducts queries the store directly and works without
//     training.
//
// No query method returns an error; failures degrade to empty or
// fallback results so a cold or broken model never takes the serving
// path down.
package recommend
