// Package memory provides in-memory implementations of the driven ports.
// Nothing is persisted; the stores are meant for tests and ephemeral use.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
)

// Ensure Store implements the storage interfaces.
var (
	_ driven.ContentStore = (*Store)(nil)
	_ driven.HistoryStore = (*Store)(nil)
	_ driven.Maintenance  = (*Store)(nil)
)

// Store keeps content, chunks and history in maps guarded by one RWMutex.
// Reads run concurrently; writes are serialised.
type Store struct {
	mu      sync.RWMutex
	content map[string]domain.ContentItem
	order   []string // content IDs in insertion order
	chunks  map[string]storedChunk
	history []domain.QueryRecord
	seq     int64
}

type storedChunk struct {
	chunk domain.Chunk
	seq   int64
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		content: make(map[string]domain.ContentItem),
		chunks:  make(map[string]storedChunk),
	}
}

// SaveContent stores an item together with its chunks, replacing any
// chunks previously stored for it.
func (s *Store) SaveContent(_ context.Context, item *domain.ContentItem, chunks []domain.Chunk) error {
	item.ChunkIDs = make([]string, len(chunks))
	dim := 0
	for i, c := range chunks {
		if c.ContentID != item.ID {
			return fmt.Errorf("%w: chunk %s belongs to %q, not %q",
				domain.ErrInvalidInput, c.ID, c.ContentID, item.ID)
		}
		if len(c.Embedding) > 0 {
			if dim != 0 && dim != len(c.Embedding) {
				return fmt.Errorf("%w: chunk %s has %d dimensions, expected %d",
					domain.ErrDimensionMismatch, c.ID, len(c.Embedding), dim)
			}
			dim = len(c.Embedding)
		}
		item.ChunkIDs[i] = c.ID
	}
	item.TotalChunks = len(chunks)
	if err := item.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dim != 0 {
		if stored := s.dimensionLocked(item.ID); stored != 0 && stored != dim {
			return fmt.Errorf("%w: vectors have %d dimensions, store holds %d",
				domain.ErrDimensionMismatch, dim, stored)
		}
	}
	s.removeChunksLocked(item.ID)

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	if _, exists := s.content[item.ID]; !exists {
		s.order = append(s.order, item.ID)
	}
	s.content[item.ID] = cloneItem(*item)

	for _, c := range chunks {
		s.putChunkLocked(c, now)
	}
	return nil
}

// SaveChunk upserts a single chunk. The parent item must exist.
func (s *Store) SaveChunk(_ context.Context, chunk domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.content[chunk.ContentID]
	if !ok {
		return fmt.Errorf("content %s: %w", chunk.ContentID, domain.ErrNotFound)
	}
	if len(chunk.Embedding) > 0 {
		if stored := s.dimensionLocked(""); stored != 0 && stored != len(chunk.Embedding) {
			return fmt.Errorf("%w: chunk %s has %d dimensions, store holds %d",
				domain.ErrDimensionMismatch, chunk.ID, len(chunk.Embedding), stored)
		}
	}

	if _, exists := s.chunks[chunk.ID]; !exists {
		item.ChunkIDs = append(item.ChunkIDs, chunk.ID)
		item.TotalChunks = len(item.ChunkIDs)
		s.content[item.ID] = item
	}
	s.putChunkLocked(chunk, time.Now().UTC())
	return nil
}

// GetContent retrieves an item by ID.
func (s *Store) GetContent(_ context.Context, id string) (*domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.content[id]
	if !ok {
		return nil, fmt.Errorf("content %s: %w", id, domain.ErrNotFound)
	}
	out := cloneItem(item)
	return &out, nil
}

// ListContent returns every item in insertion order.
func (s *Store) ListContent(_ context.Context) ([]domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]domain.ContentItem, 0, len(s.order))
	for _, id := range s.order {
		items = append(items, cloneItem(s.content[id]))
	}
	return items, nil
}

// GetChunks retrieves the chunks of an item ordered by index.
func (s *Store) GetChunks(_ context.Context, contentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks := []domain.Chunk{}
	for _, sc := range s.chunks {
		if sc.chunk.ContentID == contentID {
			chunks = append(chunks, cloneChunk(sc.chunk))
		}
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
	return chunks, nil
}

// ListChunks returns every chunk in insertion order.
func (s *Store) ListChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := make([]storedChunk, 0, len(s.chunks))
	for _, sc := range s.chunks {
		stored = append(stored, sc)
	}
	sort.Slice(stored, func(i, j int) bool { return stored[i].seq < stored[j].seq })

	chunks := make([]domain.Chunk, len(stored))
	for i, sc := range stored {
		chunks[i] = cloneChunk(sc.chunk)
	}
	return chunks, nil
}

// DeleteContent removes an item and its chunks. Unknown IDs are a no-op.
func (s *Store) DeleteContent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.content[id]; !ok {
		return nil
	}
	s.removeChunksLocked(id)
	delete(s.content, id)
	for i, cid := range s.order {
		if cid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Append stores a new query record.
func (s *Store) Append(_ context.Context, record *domain.QueryRecord) error {
	if record.ID == "" {
		return fmt.Errorf("%w: query record id is empty", domain.ErrInvalidInput)
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.history {
		if r.ID == record.ID {
			return &domain.StorageError{Op: "append history", Err: fmt.Errorf("duplicate query id %s", record.ID)}
		}
	}
	s.history = append(s.history, cloneRecord(*record))
	return nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *Store) List(_ context.Context, limit int) ([]domain.QueryRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.QueryRecord, len(s.history))
	for i, r := range s.history {
		out[len(s.history)-1-i] = cloneRecord(r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Count returns the number of stored records.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history), nil
}

// Clear empties every collection, including history.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = make(map[string]domain.ContentItem)
	s.chunks = make(map[string]storedChunk)
	s.order = nil
	s.history = nil
	return nil
}

// Stats reports record counts. Size is always 0.
func (s *Store) Stats(_ context.Context) (*domain.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &domain.Stats{
		TotalContent:    len(s.content),
		TotalChunks:     len(s.chunks),
		TotalQueries:    len(s.history),
		VectorDimension: s.dimensionLocked(""),
	}, nil
}

// Health always reports healthy.
func (s *Store) Health(_ context.Context) domain.HealthStatus {
	return domain.HealthStatus{Healthy: true}
}

func (s *Store) putChunkLocked(c domain.Chunk, now time.Time) {
	if c.Metadata.CreatedAt.IsZero() {
		c.Metadata.CreatedAt = now
	}
	seq := s.seq
	if existing, ok := s.chunks[c.ID]; ok {
		seq = existing.seq
	} else {
		s.seq++
	}
	s.chunks[c.ID] = storedChunk{chunk: cloneChunk(c), seq: seq}
}

func (s *Store) removeChunksLocked(contentID string) {
	for id, sc := range s.chunks {
		if sc.chunk.ContentID == contentID {
			delete(s.chunks, id)
		}
	}
}

// dimensionLocked returns the vector size of stored chunks, ignoring the
// chunks of skipContentID. It returns 0 when no vectors are stored.
func (s *Store) dimensionLocked(skipContentID string) int {
	for _, sc := range s.chunks {
		if sc.chunk.ContentID == skipContentID {
			continue
		}
		if n := len(sc.chunk.Embedding); n > 0 {
			return n
		}
	}
	return 0
}

func cloneItem(item domain.ContentItem) domain.ContentItem {
	item.ChunkIDs = append([]string{}, item.ChunkIDs...)
	return item
}

func cloneRecord(r domain.QueryRecord) domain.QueryRecord {
	if r.Sources != nil {
		r.Sources = append([]string(nil), r.Sources...)
	}
	if r.QueryEmbedding != nil {
		r.QueryEmbedding = append([]float32(nil), r.QueryEmbedding...)
	}
	return r
}

func cloneChunk(c domain.Chunk) domain.Chunk {
	if c.Embedding != nil {
		c.Embedding = append([]float32(nil), c.Embedding...)
	}
	return c
}
