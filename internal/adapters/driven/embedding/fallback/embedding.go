// Package fallback guards a network embedding provider with a timeout and
// degrades to the deterministic hash embedder when the provider fails.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/pagewise/internal/adapters/driven/embedding/hash"
	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
	"github.com/custodia-labs/pagewise/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultTimeout bounds each call to the primary provider.
const DefaultTimeout = 10 * time.Second

// Config configures the fallback embedder.
type Config struct {
	// Primary is the network provider. Nil means no provider is configured
	// and every call goes straight to the hash embedder.
	Primary driven.EmbeddingService

	// Timeout bounds each primary call (default: 10s).
	Timeout time.Duration

	// AllowFallback enables the hash embedder when the primary fails.
	// When false, primary failures are returned as *domain.EmbeddingError.
	AllowFallback bool

	// Dimensions is used when Primary is nil (default: domain.DefaultVectorDimension).
	Dimensions int
}

// EmbeddingService tries the primary provider and falls back to hash vectors.
type EmbeddingService struct {
	primary       driven.EmbeddingService
	offline       *hash.EmbeddingService
	timeout       time.Duration
	allowFallback bool
}

// NewEmbeddingService creates a fallback embedder. The hash embedder always
// matches the primary's dimension so stored vectors stay uniform.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	dims := cfg.Dimensions
	if cfg.Primary != nil {
		dims = cfg.Primary.Dimensions()
	}
	return &EmbeddingService{
		primary:       cfg.Primary,
		offline:       hash.NewEmbeddingService(dims),
		timeout:       cfg.Timeout,
		allowFallback: cfg.AllowFallback,
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.primary == nil {
		return s.offline.Embed(ctx, text)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vec, err := s.primary.Embed(callCtx, text)
	if err == nil && len(vec) != s.Dimensions() {
		err = fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(vec), s.Dimensions())
	}
	if err == nil {
		return vec, nil
	}

	if ferr := s.degrade(err); ferr != nil {
		return nil, ferr
	}
	return s.offline.Embed(ctx, text)
}

// EmbedBatch embeds texts with the primary provider. A failed batch is
// re-embedded with the hash embedder as a whole; individual vectors of the
// wrong size are replaced one by one.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if s.primary == nil {
		return s.offline.EmbedBatch(ctx, texts)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	vecs, err := s.primary.EmbedBatch(callCtx, texts)
	if err == nil && len(vecs) != len(texts) {
		err = fmt.Errorf("expected %d embeddings, got %d", len(texts), len(vecs))
	}
	if err != nil {
		if ferr := s.degrade(err); ferr != nil {
			return nil, ferr
		}
		return s.offline.EmbedBatch(ctx, texts)
	}

	for i, vec := range vecs {
		if len(vec) == s.Dimensions() {
			continue
		}
		mismatch := fmt.Errorf("%w: text %d got %d, want %d",
			domain.ErrDimensionMismatch, i, len(vec), s.Dimensions())
		if ferr := s.degrade(mismatch); ferr != nil {
			return nil, ferr
		}
		vecs[i] = hash.Vector(texts[i], s.Dimensions())
	}
	return vecs, nil
}

// degrade returns the error to surface, or nil when the hash embedder
// should be used instead.
func (s *EmbeddingService) degrade(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("timed out after %s: %w", s.timeout, err)
	}
	if !s.allowFallback {
		return &domain.EmbeddingError{Model: s.primary.ModelName(), Err: err}
	}
	logger.Warn("embedding provider %s failed, using offline vectors: %v", s.primary.ModelName(), err)
	return nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.offline.Dimensions()
}

// ModelName returns the primary model name, or the hash model when no
// provider is configured.
func (s *EmbeddingService) ModelName() string {
	if s.primary == nil {
		return s.offline.ModelName()
	}
	return s.primary.ModelName()
}

// Ping checks the primary provider.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if s.primary == nil {
		return nil
	}
	return s.primary.Ping(ctx)
}

// Close releases the primary provider.
func (s *EmbeddingService) Close() error {
	if s.primary == nil {
		return nil
	}
	return s.primary.Close()
}

// UsingProvider reports whether a network provider is configured.
func (s *EmbeddingService) UsingProvider() bool {
	return s.primary != nil
}
