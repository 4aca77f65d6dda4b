package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
	"github.com/custodia-labs/pagewise/internal/core/ports/driving"
	"github.com/custodia-labs/pagewise/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService extracts, chunks, embeds and stores pages.
type IngestService struct {
	extractor driven.ContentExtractor
	chunker   driven.PostProcessor
	embedder  driven.EmbeddingService
	store     driven.ContentStore
	now       func() time.Time
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	extractor driven.ContentExtractor,
	chunker driven.PostProcessor,
	embedder driven.EmbeddingService,
	store driven.ContentStore,
) *IngestService {
	return &IngestService{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		now:       time.Now,
	}
}

// Ingest extracts the page at url and stores it as a new ContentItem.
// Extraction failures are returned as *domain.FetchError.
func (s *IngestService) Ingest(ctx context.Context, url string) (*domain.ContentItem, error) {
	logger.Section("Ingest")
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: url is empty", domain.ErrInvalidInput)
	}

	start := time.Now()
	extraction, err := s.extractor.Extract(ctx, url)
	logger.Elapsed("extract", start)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", url, err)
	}
	if extraction.Mock {
		logger.Warn("Using placeholder content for %s", url)
	}
	logger.Debug("Extracted %q via %s (%d chars)", extraction.Title, s.extractor.Name(), len(extraction.Text))

	return s.IngestText(ctx, url, extraction.Title, extraction.Text)
}

// IngestText chunks, embeds and stores already extracted text.
func (s *IngestService) IngestText(ctx context.Context, url, title, text string) (*domain.ContentItem, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: no text to ingest for %s", domain.ErrInvalidInput, url)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = url
	}

	now := s.now()
	item := &domain.ContentItem{
		ID:        uuid.NewString(),
		URL:       url,
		Title:     title,
		Content:   text,
		CreatedAt: now,
		UpdatedAt: now,
	}

	chunks := s.chunker.Process(item, now)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s produced no chunks", domain.ErrInvalidInput, url)
	}
	logger.Debug("%s produced %d chunks", s.chunker.Name(), len(chunks))

	if err := s.embed(ctx, chunks); err != nil {
		return nil, err
	}

	start := time.Now()
	if err := s.store.SaveContent(ctx, item, chunks); err != nil {
		return nil, fmt.Errorf("save content: %w", domain.NewStorageError("save content", err))
	}
	logger.Elapsed("store", start)
	logger.Info("Ingested %s as %s (%d chunks)", url, item.ID, item.TotalChunks)

	return item, nil
}

// embed fills in the embedding of every chunk with one batch call.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) error {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	start := time.Now()
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	logger.Elapsed("embed", start)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return &domain.EmbeddingError{
			Model: s.embedder.ModelName(),
			Err:   fmt.Errorf("got %d embeddings for %d chunks", len(vectors), len(chunks)),
		}
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}
	return nil
}
