package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/pagewise/internal/adapters/driven/embedding/hash"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{1, 2}, []float32{0, 0}, 0},
		{"both zero", []float32{0, 0}, []float32{0, 0}, 0},
		{"dimension mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0},
		{"empty", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-6)
		})
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := hash.Vector("react components", 64)
	b := hash.Vector("python scripting", 64)

	assert.InDelta(t, CosineSimilarity(a, b), CosineSimilarity(b, a), 1e-12)
	assert.InDelta(t, 1.0, CosineSimilarity(a, a), 1e-5)
}
