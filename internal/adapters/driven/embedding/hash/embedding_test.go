package hash

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

func TestNewEmbeddingService_DefaultDimensions(t *testing.T) {
	assert.Equal(t, domain.DefaultVectorDimension, NewEmbeddingService(0).Dimensions())
	assert.Equal(t, 384, NewEmbeddingService(384).Dimensions())
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(64)
	ctx := context.Background()

	a, err := svc.Embed(ctx, "React is a JavaScript library")
	require.NoError(t, err)
	b, err := NewEmbeddingService(64).Embed(ctx, "React is a JavaScript library")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

// Stored vectors must stay valid across releases, so the output is pinned.
func TestVector_Golden(t *testing.T) {
	tests := []struct {
		text string
		want []float32
	}{
		{"React", []float32{0.316088, -0.516220, 0.526334, -0.127074, 0.544459, 0.010152, 0.185115, -0.098097}},
		{"pagewise", []float32{-0.377371, -0.098731, 0.245358, 0.488054, 0.504630, 0.274596, -0.104032, -0.456693}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Vector(tt.text, 8)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-5, "component %d", i)
			}
		})
	}
}

func TestEmbed_DifferentTextsDiffer(t *testing.T) {
	a := Vector("python", 32)
	b := Vector("golang", 32)
	assert.NotEqual(t, a, b)
}

func TestEmbed_UnitNorm(t *testing.T) {
	for _, text := range []string{"", "a", "a much longer piece of text about retrieval"} {
		v := Vector(text, 1536)
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4, "text %q", text)
	}
}

func TestEmbedBatch(t *testing.T) {
	svc := NewEmbeddingService(16)
	texts := []string{"one", "two", "one"}

	vecs, err := svc.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, vecs[0], vecs[2])
	assert.NotEqual(t, vecs[0], vecs[1])
}

func TestMetadata(t *testing.T) {
	svc := NewEmbeddingService(8)
	assert.Equal(t, ModelName, svc.ModelName())
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
