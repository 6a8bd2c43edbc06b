// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package recommend

import (
	"math"
	"sort"
)

// InteractionMatrix maps user ID to product ID to cumulative purchased
// quantity. Absent entries mean zero interaction.
type InteractionMatrix map[string]map[string]int

// SimilarityMatrix maps product ID to product ID to cosine similarity.
// Entries exist only for product pairs that co-occurred in at least one
// order basket; the stored value may still be 0.0.
type SimilarityMatrix map[string]map[string]float64

// buildInteractionMatrix groups order lines by (user, product), summing
// quantities. Returns nil for empty input.
func buildInteractionMatrix(lines []OrderLine) InteractionMatrix {
	if len(lines) == 0 {
		return nil
	}

	m := make(InteractionMatrix)
	for i := range lines {
		line := &lines[i]
		row := m[line.UserID]
		if row == nil {
			row = make(map[string]int)
			m[line.UserID] = row
		}
		row[line.ProductID] += line.Quantity
	}
	return m
}

// buildSimilarityMatrix computes pairwise product similarity from basket
// co-occurrence. Each order forms a basket of distinct products; every
// ordered pair of distinct products in a basket increments a symmetric
// co-occurrence count. The similarity of two products is the cosine of
// their co-occurrence count vectors, laid out over the sorted product
// index so repeated training on identical input yields identical output.
// Returns nil when the input contains no products.
func buildSimilarityMatrix(lines []OrderLine) SimilarityMatrix {
	if len(lines) == 0 {
		return nil
	}

	baskets := make(map[string]map[string]bool)
	productSet := make(map[string]bool)
	for i := range lines {
		line := &lines[i]
		basket := baskets[line.OrderID]
		if basket == nil {
			basket = make(map[string]bool)
			baskets[line.OrderID] = basket
		}
		basket[line.ProductID] = true
		productSet[line.ProductID] = true
	}

	products := make([]string, 0, len(productSet))
	for id := range productSet {
		products = append(products, id)
	}
	sort.Strings(products)

	index := make(map[string]int, len(products))
	for i, id := range products {
		index[id] = i
	}

	// Dense co-occurrence rows over the sorted product index.
	co := make([][]float64, len(products))
	for i := range co {
		co[i] = make([]float64, len(products))
	}
	for _, basket := range baskets {
		ids := make([]int, 0, len(basket))
		for id := range basket {
			ids = append(ids, index[id])
		}
		for _, i := range ids {
			for _, j := range ids {
				if i != j {
					co[i][j]++
				}
			}
		}
	}

	sim := make(SimilarityMatrix, len(products))
	for i, a := range products {
		for j, b := range products {
			if i == j || co[i][j] == 0 {
				continue
			}
			row := sim[a]
			if row == nil {
				row = make(map[string]float64)
				sim[a] = row
			}
			row[b] = cosine(co[i], co[j])
		}
	}
	return sim
}

// cosine returns the cosine similarity of two vectors, 0 when either
// vector has zero magnitude.
func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
