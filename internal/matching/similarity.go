package matching

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch indicates two embeddings of different dimensionality,
// which means two different embedding models were mixed in one run.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Cosine returns the cosine similarity of two embedding vectors in [-1, 1].
// Vectors with zero magnitude yield 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	normA = math.Sqrt(normA)
	normB = math.Sqrt(normB)

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (normA * normB), nil
}

// RescaleSimilarity converts a cosine similarity in [-1, 1] to the engine's
// 0-10 scale. Orthogonal text (cosine 0) lands on the neutral 5, not 0.
func RescaleSimilarity(cos float64) float64 {
	return (cos + 1) * 5
}
