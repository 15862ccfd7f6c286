package openai

import (
	"math"
	"testing"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
	}{
		{"unit vector", []float32{1, 0, 0}},
		{"arbitrary vector", []float32{3, 4}},
		{"negative components", []float32{-1, 2, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeVector(tt.input)

			var magnitude float64
			for _, v := range result {
				magnitude += float64(v) * float64(v)
			}
			magnitude = math.Sqrt(magnitude)

			if math.Abs(magnitude-1.0) > 1e-6 {
				t.Errorf("normalized magnitude = %f, want 1.0", magnitude)
			}
		})
	}
}

func TestNormalizeVector_ZeroVector(t *testing.T) {
	result := NormalizeVector([]float32{0, 0, 0})
	for i, v := range result {
		if v != 0 {
			t.Errorf("component %d = %f, want 0", i, v)
		}
	}
}

func TestNormalizeVector_Empty(t *testing.T) {
	if result := NormalizeVector(nil); len(result) != 0 {
		t.Errorf("expected empty result, got %v", result)
	}
}

func TestDotProduct(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	if got := dotProduct(a, b); got != 0 {
		t.Errorf("orthogonal vectors: dot = %f, want 0", got)
	}

	if got := dotProduct(a, a); got != 1 {
		t.Errorf("identical unit vectors: dot = %f, want 1", got)
	}

	if got := dotProduct(a, []float32{1}); got != 0 {
		t.Errorf("mismatched lengths: dot = %f, want 0", got)
	}
}
