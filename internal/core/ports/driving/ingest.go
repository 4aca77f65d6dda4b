package driving

import (
	"context"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

// IngestService turns pages into stored, embedded chunks.
type IngestService interface {
	// Ingest extracts the page at url, chunks, embeds and stores it.
	// Every call creates a new ContentItem, even for a URL seen before.
	Ingest(ctx context.Context, url string) (*domain.ContentItem, error)

	// IngestText stores already extracted text under url and title.
	IngestText(ctx context.Context, url, title, text string) (*domain.ContentItem, error)
}
