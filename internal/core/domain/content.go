package domain

import (
	"fmt"
	"time"
)

// DefaultVectorDimension is the embedding size used when no provider
// reports its own. It matches text-embedding-3-small.
const DefaultVectorDimension = 1536

// ContentItem represents an ingested page.
// A ContentItem exclusively owns its chunks; it is never updated in place.
type ContentItem struct {
	// ID is the unique identifier, generated at ingestion.
	ID string

	// URL is the location the content was extracted from.
	URL string

	// Title is the human-readable title.
	Title string

	// Content is the full extracted text before chunking.
	Content string

	// ChunkIDs lists the owned chunks ordered by ChunkIndex.
	ChunkIDs []string

	// TotalChunks is always len(ChunkIDs).
	TotalChunks int

	// CreatedAt is when the item was ingested.
	CreatedAt time.Time

	// UpdatedAt is when the item was last written.
	UpdatedAt time.Time
}

// Validate checks the structural invariants of the item.
func (c *ContentItem) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: content id is empty", ErrInvalidInput)
	}
	if c.TotalChunks != len(c.ChunkIDs) {
		return fmt.Errorf("%w: total chunks %d does not match %d chunk ids",
			ErrInvalidInput, c.TotalChunks, len(c.ChunkIDs))
	}
	return nil
}

// Chunk represents a retrievable unit within a ContentItem.
type Chunk struct {
	// ID is derived from the parent ID and the chunk index.
	ID string

	// ContentID links back to the owning ContentItem.
	ContentID string

	// URL and Title are copied from the parent for display without a join.
	URL   string
	Title string

	// Content is the text of this chunk.
	Content string

	// ChunkIndex is the 0-based position within the parent.
	ChunkIndex int

	// Embedding is the vector representation of Content.
	Embedding []float32

	// Metadata describes how the chunk was cut.
	Metadata ChunkMetadata
}

// ChunkMetadata records chunking details.
type ChunkMetadata struct {
	// Size is the chunk length in characters.
	Size int

	// Overlap is the number of characters shared with the previous chunk.
	Overlap int

	// CreatedAt is when the chunk was produced.
	CreatedAt time.Time
}

// ChunkID builds the identifier for the chunk at index within contentID.
func ChunkID(contentID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", contentID, index)
}

// QueryRecord is an append-only history entry for an answered question.
type QueryRecord struct {
	ID             string
	Question       string
	Answer         string
	Timestamp      time.Time
	Sources        []string
	QueryEmbedding []float32
}
