// Package vector provides sparse term vectors, cosine similarity, and TF-IDF vectorization.
package vector

import (
	"errors"
	"math"
)

// ErrGenerationMismatch is returned when vectors built from different corpora are compared.
var ErrGenerationMismatch = errors.New("vectors belong to different generations")

// SparseVector holds non-zero term weights. Terms are vocabulary indices in ascending
// order and Weights[i] is the weight of Terms[i]. Generation identifies the vocabulary the
// indices refer to.
type SparseVector struct {
	Terms      []int
	Weights    []float64
	Generation uint64
}

// IsZero reports whether the vector has no non-zero weight.
func (v SparseVector) IsZero() bool {
	for _, w := range v.Weights {
		if w != 0 {
			return false
		}
	}
	return true
}

// InnerProduct returns the dot product of two sparse vectors.
func InnerProduct(a, b SparseVector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Terms) && j < len(b.Terms) {
		switch {
		case a.Terms[i] == b.Terms[j]:
			dot += a.Weights[i] * b.Weights[j]
			i++
			j++
		case a.Terms[i] < b.Terms[j]:
			i++
		default:
			j++
		}
	}
	return dot
}

// L2Norm returns the L2 norm of a sparse vector.
func L2Norm(v SparseVector) float64 {
	var sum float64
	for _, w := range v.Weights {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Cosine returns the cosine similarity of a and b. Similarity with a zero vector is 0,
// including a zero vector compared with itself.
func Cosine(a, b SparseVector) (float64, error) {
	if a.Generation != b.Generation {
		return 0, ErrGenerationMismatch
	}
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return InnerProduct(a, b) / (na * nb), nil
}
