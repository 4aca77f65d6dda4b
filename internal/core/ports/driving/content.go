package driving

import (
	"context"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

// ContentService manages stored content and history.
type ContentService interface {
	// List returns all content items.
	List(ctx context.Context) ([]domain.ContentItem, error)

	// Get retrieves a content item by ID.
	Get(ctx context.Context, id string) (*domain.ContentItem, error)

	// Chunks returns the chunks of a content item.
	Chunks(ctx context.Context, id string) ([]domain.Chunk, error)

	// Delete removes a content item and its chunks. Unknown IDs are a no-op.
	Delete(ctx context.Context, id string) error

	// ClearAll empties content, chunks, embeddings and history.
	ClearAll(ctx context.Context) error

	// Stats reports store totals.
	Stats(ctx context.Context) (*domain.Stats, error)

	// Health reports store health. It never fails.
	Health(ctx context.Context) domain.HealthStatus

	// History returns recent query records, newest first.
	History(ctx context.Context, limit int) ([]domain.QueryRecord, error)
}
