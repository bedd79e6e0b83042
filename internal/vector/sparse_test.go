package vector

import (
	"errors"
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	a := SparseVector{Terms: []int{0, 2}, Weights: []float64{1, 1}, Generation: 1}
	b := SparseVector{Terms: []int{2, 5}, Weights: []float64{1, 1}, Generation: 1}
	got, err := Cosine(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Cosine = %f, want 0.5", got)
	}
	self, _ := Cosine(a, a)
	if math.Abs(self-1) > 1e-9 {
		t.Errorf("Cosine(a, a) = %f, want 1", self)
	}
}

func TestCosine_zeroVector(t *testing.T) {
	zero := SparseVector{Generation: 3}
	v := SparseVector{Terms: []int{1}, Weights: []float64{0.7}, Generation: 3}
	for _, pair := range [][2]SparseVector{{zero, v}, {v, zero}, {zero, zero}} {
		got, err := Cosine(pair[0], pair[1])
		if err != nil {
			t.Fatal(err)
		}
		if got != 0 {
			t.Errorf("Cosine with zero vector = %f, want 0", got)
		}
	}
	if !zero.IsZero() {
		t.Error("IsZero should be true for empty vector")
	}
}

func TestCosine_generationMismatch(t *testing.T) {
	a := SparseVector{Terms: []int{0}, Weights: []float64{1}, Generation: 1}
	b := SparseVector{Terms: []int{0}, Weights: []float64{1}, Generation: 2}
	if _, err := Cosine(a, b); !errors.Is(err, ErrGenerationMismatch) {
		t.Errorf("err = %v, want ErrGenerationMismatch", err)
	}
}
