package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
	"github.com/custodia-labs/pagewise/internal/core/ports/driving"
	"github.com/custodia-labs/pagewise/internal/logger"
)

// Ensure ContentService implements the interface.
var _ driving.ContentService = (*ContentService)(nil)

// ContentService manages stored content, history and store maintenance.
type ContentService struct {
	store       driven.ContentStore
	history     driven.HistoryStore
	maintenance driven.Maintenance
	embedder    driven.EmbeddingService
}

// NewContentService creates a new content service.
// The embedder is optional and only used to report the vector dimension.
func NewContentService(
	store driven.ContentStore,
	history driven.HistoryStore,
	maintenance driven.Maintenance,
	embedder driven.EmbeddingService,
) *ContentService {
	return &ContentService{
		store:       store,
		history:     history,
		maintenance: maintenance,
		embedder:    embedder,
	}
}

// List returns all content items, oldest first.
func (s *ContentService) List(ctx context.Context) ([]domain.ContentItem, error) {
	items, err := s.store.ListContent(ctx)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return items, nil
}

// Get retrieves a content item by ID.
func (s *ContentService) Get(ctx context.Context, id string) (*domain.ContentItem, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: content id is empty", domain.ErrInvalidInput)
	}
	item, err := s.store.GetContent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get content %s: %w", id, err)
	}
	return item, nil
}

// Chunks returns the chunks of a content item ordered by index.
func (s *ContentService) Chunks(ctx context.Context, id string) ([]domain.Chunk, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	chunks, err := s.store.GetChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get chunks %s: %w", id, err)
	}
	return chunks, nil
}

// Delete removes a content item and all its chunks.
// Unknown IDs are a no-op.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: content id is empty", domain.ErrInvalidInput)
	}
	if err := s.store.DeleteContent(ctx, id); err != nil {
		return fmt.Errorf("delete content %s: %w", id, err)
	}
	logger.Info("Deleted content %s", id)
	return nil
}

// ClearAll empties content, chunks, embeddings and history.
func (s *ContentService) ClearAll(ctx context.Context) error {
	if err := s.maintenance.Clear(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	logger.Info("Cleared all content and history")
	return nil
}

// Stats reports store totals. The vector dimension is that of the active
// embedder when one is configured.
func (s *ContentService) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.maintenance.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	if s.embedder != nil {
		stats.VectorDimension = s.embedder.Dimensions()
	}
	return stats, nil
}

// Health reports store health. It never fails.
func (s *ContentService) Health(ctx context.Context) domain.HealthStatus {
	return s.maintenance.Health(ctx)
}

// History returns up to limit query records, newest first.
// limit <= 0 returns every record.
func (s *ContentService) History(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	records, err := s.history.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return records, nil
}
