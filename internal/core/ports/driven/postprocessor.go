package driven

import (
	"time"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

// PostProcessor turns an extracted ContentItem into chunks.
// The chunker is the only implementation; ingestion embeds and stores
// whatever it returns.
type PostProcessor interface {
	// Name returns the processor name for logging.
	Name() string

	// Process splits the item's content into chunks with contiguous
	// indices starting at 0. Embeddings are left empty.
	Process(item *domain.ContentItem, now time.Time) []domain.Chunk
}
