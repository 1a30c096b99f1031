package catalog

import (
	"math"
	"sort"

	"github.com/modamart/stylist/internal/domain"
)

// cosineEpsilon keeps the similarity denominator away from zero for
// degenerate (all-zero) vectors.
const cosineEpsilon = 1e-8

// cosineSimilarity returns the cosine similarity of two vectors.
// Mismatched lengths score 0; a zero vector yields a finite score near 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(normA)*math.Sqrt(normB) + cosineEpsilon)
}

// storedVector is one persisted (product_id, embedding) pair in storage order.
type storedVector struct {
	productID int64
	embedding []float32
}

// rankBySimilarity scores every stored vector against the query vector and
// returns the topK products by descending similarity. Ties keep storage order
// (stable sort).
func rankBySimilarity(query []float32, stored []storedVector, topK int) []domain.ScoredProduct {
	scored := make([]domain.ScoredProduct, len(stored))
	for i, sv := range stored {
		scored[i] = domain.ScoredProduct{
			ProductID: sv.productID,
			Score:     cosineSimilarity(query, sv.embedding),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK >= 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}
