// Package hash provides a deterministic offline embedding service.
//
// Vectors are derived from an FNV-1a hash of the text fed through a wave per
// dimension. They carry no semantic meaning but are stable across runs, which
// keeps ingestion and tests reproducible without a network provider.
package hash

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// ModelName is reported for vectors produced by this service.
const ModelName = "hash-fnv1a"

// EmbeddingService generates deterministic embeddings.
type EmbeddingService struct {
	dimensions int
}

// NewEmbeddingService creates a hash embedder producing vectors of the given
// size. A non-positive size uses domain.DefaultVectorDimension.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = domain.DefaultVectorDimension
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed returns the vector for text. Identical text yields an identical vector.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	return Vector(text, s.dimensions), nil
}

// EmbedBatch embeds every text independently.
func (s *EmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = Vector(text, s.dimensions)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model.
func (s *EmbeddingService) ModelName() string {
	return ModelName
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// Vector computes the L2-normalised hash vector of text.
func Vector(text string, dimensions int) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	// Split the seed into a phase and a frequency so nearby seeds still
	// produce visibly different waves.
	phase := float64(seed%1_000_003) / 1_000_003 * 2 * math.Pi
	freq := float64((seed>>32)%97+1) / 10

	values := make([]float64, dimensions)
	var norm float64
	for i := range values {
		x := float64(i + 1)
		v := math.Sin(phase+freq*x) + 0.5*math.Cos(phase*x/float64(dimensions)+freq)
		values[i] = v
		norm += v * v
	}

	vec := make([]float32, dimensions)
	norm = math.Sqrt(norm)
	if norm == 0 {
		return vec
	}
	for i, v := range values {
		vec[i] = float32(v / norm)
	}
	return vec
}
