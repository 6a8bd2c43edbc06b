// CloudCart Analytics - Order Event Analytics and Product Recommendations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cloudcart/analytics

package recommend

import (
	"math"
	"reflect"
	"testing"
)

func TestBuildInteractionMatrix(t *testing.T) {
	tests := []struct {
		name  string
		lines []OrderLine
		want  InteractionMatrix
	}{
		{
			name:  "empty input returns nil",
			lines: nil,
			want:  nil,
		},
		{
			name: "single line",
			lines: []OrderLine{
				{OrderID: "o1", UserID: "u1", ProductID: "p1", Quantity: 2},
			},
			want: InteractionMatrix{"u1": {"p1": 2}},
		},
		{
			name: "repeat purchases accumulate quantity",
			lines: []OrderLine{
				{OrderID: "o1", UserID: "u1", ProductID: "p1", Quantity: 1},
				{OrderID: "o2", UserID: "u1", ProductID: "p1", Quantity: 3},
				{OrderID: "o2", UserID: "u1", ProductID: "p2", Quantity: 1},
			},
			want: InteractionMatrix{"u1": {"p1": 4, "p2": 1}},
		},
		{
			name: "multiple users keep separate rows",
			lines: []OrderLine{
				{OrderID: "o1", UserID: "u1", ProductID: "p1", Quantity: 1},
				{OrderID: "o2", UserID: "u2", ProductID: "p1", Quantity: 5},
			},
			want: InteractionMatrix{
				"u1": {"p1": 1},
				"u2": {"p1": 5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildInteractionMatrix(tt.lines)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("buildInteractionMatrix() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildSimilarityMatrixEmpty(t *testing.T) {
	if got := buildSimilarityMatrix(nil); got != nil {
		t.Errorf("buildSimilarityMatrix(nil) = %v, want nil", got)
	}
}

func TestBuildSimilarityMatrixCoPurchasedPair(t *testing.T) {
	// Two orders, each containing both products. Their co-occurrence
	// vectors are orthogonal so the cosine is 0, but the pair still
	// gets a similarity entry because they shared baskets.
	lines := []OrderLine{
		{OrderID: "o1", UserID: "u1", ProductID: "p1", Quantity: 1},
		{OrderID: "o1", UserID: "u1", ProductID: "p2", Quantity: 1},
		{OrderID: "o2", UserID: "u2", ProductID: "p1", Quantity: 1},
		{OrderID: "o2", UserID: "u2", ProductID: "p2", Quantity: 1},
	}

	sim := buildSimilarityMatrix(lines)
	row, ok := sim["p1"]
	if !ok {
		t.Fatal("expected similarity row for p1")
	}
	score, ok := row["p2"]
	if !ok {
		t.Fatal("expected similarity entry p1 -> p2")
	}
	if score != 0 {
		t.Errorf("similarity p1->p2 = %v, want 0", score)
	}
}

func TestBuildSimilarityMatrixDisjointBaskets(t *testing.T) {
	// Products never bought together must not appear in each other's rows.
	lines := []OrderLine{
		{OrderID: "o1", UserID: "u1", ProductID: "p1", Quantity: 1},
		{OrderID: "o2", UserID: "u2", ProductID: "p2", Quantity: 1},
	}

	sim := buildSimilarityMatrix(lines)
	if len(sim["p1"]) != 0 {
		t.Errorf("p1 row should be empty, got %v", sim["p1"])
	}
	if len(sim["p2"]) != 0 {
		t.Errorf("p2 row should be empty, got %v", sim["p2"])
	}
}

func TestBuildSimilarityMatrixTriangle(t *testing.T) {
	// Three orders: {A,B}, {A,C}, {B,C}. Every pair co-occurs once and
	// every pair of co-occurrence vectors meets at cosine 0.5.
	lines := []OrderLine{
		{OrderID: "o1", UserID: "u1", ProductID: "A", Quantity: 1},
		{OrderID: "o1", UserID: "u1", ProductID: "B", Quantity: 1},
		{OrderID: "o2", UserID: "u2", ProductID: "A", Quantity: 1},
		{OrderID: "o2", UserID: "u2", ProductID: "C", Quantity: 1},
		{OrderID: "o3", UserID: "u3", ProductID: "B", Quantity: 1},
		{OrderID: "o3", UserID: "u3", ProductID: "C", Quantity: 1},
	}

	sim := buildSimilarityMatrix(lines)
	pairs := []struct{ a, b string }{
		{"A", "B"}, {"A", "C"}, {"B", "A"}, {"B", "C"}, {"C", "A"}, {"C", "B"},
	}
	for _, p := range pairs {
		got, ok := sim[p.a][p.b]
		if !ok {
			t.Errorf("missing similarity entry %s -> %s", p.a, p.b)
			continue
		}
		if math.Abs(got-0.5) > 1e-12 {
			t.Errorf("similarity %s->%s = %v, want 0.5", p.a, p.b, got)
		}
	}
}

func TestBuildSimilarityMatrixSymmetric(t *testing.T) {
	lines := []OrderLine{
		{OrderID: "o1", UserID: "u1", ProductID: "A", Quantity: 1},
		{OrderID: "o1", UserID: "u1", ProductID: "B", Quantity: 2},
		{OrderID: "o2", UserID: "u2", ProductID: "A", Quantity: 1},
		{OrderID: "o2", UserID: "u2", ProductID: "B", Quantity: 1},
		{OrderID: "o2", UserID: "u2", ProductID: "C", Quantity: 1},
	}

	sim := buildSimilarityMatrix(lines)
	for a, row := range sim {
		for b, score := range row {
			if mirror, ok := sim[b][a]; !ok || mirror != score {
				t.Errorf("similarity not symmetric: %s->%s = %v, %s->%s = %v", a, b, score, b, a, mirror)
			}
		}
	}
}

func TestBuildSimilarityMatrixDeterministic(t *testing.T) {
	lines := []OrderLine{
		{OrderID: "o1", UserID: "u1", ProductID: "A", Quantity: 1},
		{OrderID: "o1", UserID: "u1", ProductID: "B", Quantity: 1},
		{OrderID: "o2", UserID: "u2", ProductID: "B", Quantity: 1},
		{OrderID: "o2", UserID: "u2", ProductID: "C", Quantity: 1},
		{OrderID: "o3", UserID: "u3", ProductID: "A", Quantity: 1},
		{OrderID: "o3", UserID: "u3", ProductID: "C", Quantity: 1},
		{OrderID: "o4", UserID: "u1", ProductID: "A", Quantity: 2},
		{OrderID: "o4", UserID: "u1", ProductID: "C", Quantity: 1},
	}

	first := buildSimilarityMatrix(lines)
	for i := 0; i < 10; i++ {
		if again := buildSimilarityMatrix(lines); !reflect.DeepEqual(first, again) {
			t.Fatalf("similarity matrix not deterministic on run %d", i)
		}
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical vectors", []float64{1, 2}, []float64{1, 2}, 1},
		{"orthogonal vectors", []float64{1, 0}, []float64{0, 1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0},
		{"scaled vectors", []float64{1, 1}, []float64{3, 3}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
