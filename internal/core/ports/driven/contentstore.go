package driven

import (
	"context"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

// ContentStore persists content items, their chunks and embeddings.
// Backed by SQLite for durable storage.
type ContentStore interface {
	// SaveContent stores an item together with its chunks as one atomic unit.
	// The item's ChunkIDs and TotalChunks are set from chunks.
	SaveContent(ctx context.Context, item *domain.ContentItem, chunks []domain.Chunk) error

	// SaveChunk upserts a single chunk. The parent item must exist.
	SaveChunk(ctx context.Context, chunk domain.Chunk) error

	// GetContent retrieves an item by ID.
	GetContent(ctx context.Context, id string) (*domain.ContentItem, error)

	// ListContent returns every item, oldest first.
	ListContent(ctx context.Context) ([]domain.ContentItem, error)

	// GetChunks retrieves the chunks of an item ordered by index.
	GetChunks(ctx context.Context, contentID string) ([]domain.Chunk, error)

	// ListChunks returns every chunk with its embedding in insertion order.
	ListChunks(ctx context.Context) ([]domain.Chunk, error)

	// DeleteContent removes an item and all chunks referencing it.
	// Deleting an unknown ID is a no-op.
	DeleteContent(ctx context.Context, id string) error
}

// HistoryStore persists answered queries. Records are never updated.
type HistoryStore interface {
	// Append stores a new record.
	Append(ctx context.Context, record *domain.QueryRecord) error

	// List returns up to limit records, newest first. limit <= 0 returns all.
	List(ctx context.Context, limit int) ([]domain.QueryRecord, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
}

// Maintenance exposes store-wide operations.
type Maintenance interface {
	// Clear empties every collection, including history.
	Clear(ctx context.Context) error

	// Stats reports record counts and storage size.
	Stats(ctx context.Context) (*domain.Stats, error)

	// Health checks the store. It never fails; problems are listed as issues.
	Health(ctx context.Context) domain.HealthStatus
}
