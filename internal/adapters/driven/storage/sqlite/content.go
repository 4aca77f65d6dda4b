package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
)

// contentStore implements driven.ContentStore.
type contentStore struct {
	store *Store
}

var _ driven.ContentStore = (*contentStore)(nil)

// chunkColumns is the column list shared by every chunk query.
// It expects chunks aliased as c and embeddings as e.
const chunkColumns = `c.id, c.content_id, c.url, c.title, c.content, c.chunk_index,
	c.size, c.overlap, c.created_at, e.vector`

// SaveContent writes the item, its chunks and their embeddings in one
// transaction. Chunks previously stored for the item are replaced.
func (s *contentStore) SaveContent(ctx context.Context, item *domain.ContentItem, chunks []domain.Chunk) error {
	const op = "save content"
	if err := s.store.ready(op); err != nil {
		return err
	}

	item.ChunkIDs = make([]string, len(chunks))
	for i, chunk := range chunks {
		if chunk.ContentID != item.ID {
			return fmt.Errorf("%w: chunk %s belongs to %q, not %q",
				domain.ErrInvalidInput, chunk.ID, chunk.ContentID, item.ID)
		}
		item.ChunkIDs[i] = chunk.ID
	}
	item.TotalChunks = len(chunks)
	if err := item.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError(op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO content (id, url, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			content = excluded.content,
			updated_at = excluded.updated_at
	`, item.ID, item.URL, item.Title, item.Content, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return domain.NewStorageError(op, err)
	}

	if err := deleteChunks(ctx, tx, item.ID); err != nil {
		return domain.NewStorageError(op, err)
	}

	for i := range chunks {
		if err := upsertChunk(ctx, tx, &chunks[i]); err != nil {
			return domain.NewStorageError(op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError(op, fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// SaveChunk upserts a single chunk of an existing item.
func (s *contentStore) SaveChunk(ctx context.Context, chunk domain.Chunk) error {
	const op = "save chunk"
	if err := s.store.ready(op); err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError(op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM content WHERE id = ?", chunk.ContentID).Scan(&exists)
	if err != nil {
		return domain.NewStorageError(op, notFound(err, "content", chunk.ContentID))
	}

	if err := upsertChunk(ctx, tx, &chunk); err != nil {
		return domain.NewStorageError(op, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError(op, fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// GetContent retrieves an item with its ordered chunk IDs.
func (s *contentStore) GetContent(ctx context.Context, id string) (*domain.ContentItem, error) {
	const op = "get content"
	if err := s.store.ready(op); err != nil {
		return nil, err
	}

	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, url, title, content, created_at, updated_at
		FROM content WHERE id = ?
	`, id)

	var item domain.ContentItem
	if err := row.Scan(&item.ID, &item.URL, &item.Title, &item.Content, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, domain.NewStorageError(op, notFound(err, "content", id))
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id FROM chunks WHERE content_id = ? ORDER BY chunk_index", id)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	defer rows.Close()

	item.ChunkIDs = []string{}
	for rows.Next() {
		var chunkID string
		if err := rows.Scan(&chunkID); err != nil {
			return nil, domain.NewStorageError(op, err)
		}
		item.ChunkIDs = append(item.ChunkIDs, chunkID)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	item.TotalChunks = len(item.ChunkIDs)

	return &item, nil
}

// ListContent returns every item, oldest first.
func (s *contentStore) ListContent(ctx context.Context) ([]domain.ContentItem, error) {
	const op = "list content"
	if err := s.store.ready(op); err != nil {
		return nil, err
	}

	chunkIDs, err := s.chunkIDsByContent(ctx)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, url, title, content, created_at, updated_at
		FROM content ORDER BY created_at, rowid
	`)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	defer rows.Close()

	var items []domain.ContentItem //nolint:prealloc // size unknown from query
	for rows.Next() {
		var item domain.ContentItem
		if err := rows.Scan(&item.ID, &item.URL, &item.Title, &item.Content, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, domain.NewStorageError(op, fmt.Errorf("scanning content: %w", err))
		}
		item.ChunkIDs = chunkIDs[item.ID]
		if item.ChunkIDs == nil {
			item.ChunkIDs = []string{}
		}
		item.TotalChunks = len(item.ChunkIDs)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError(op, err)
	}

	return items, nil
}

func (s *contentStore) chunkIDsByContent(ctx context.Context) (map[string][]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT content_id, id FROM chunks ORDER BY content_id, chunk_index")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var contentID, chunkID string
		if err := rows.Scan(&contentID, &chunkID); err != nil {
			return nil, err
		}
		out[contentID] = append(out[contentID], chunkID)
	}
	return out, rows.Err()
}

// GetChunks retrieves the chunks of an item ordered by index.
func (s *contentStore) GetChunks(ctx context.Context, contentID string) ([]domain.Chunk, error) {
	const op = "get chunks"
	if err := s.store.ready(op); err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks c LEFT JOIN embeddings e ON e.chunk_id = c.id
		WHERE c.content_id = ?
		ORDER BY c.chunk_index
	`, contentID)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	defer rows.Close()

	chunks, err := scanChunks(rows)
	return chunks, domain.NewStorageError(op, err)
}

// ListChunks returns every chunk in insertion order.
func (s *contentStore) ListChunks(ctx context.Context) ([]domain.Chunk, error) {
	const op = "list chunks"
	if err := s.store.ready(op); err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+chunkColumns+`
		FROM chunks c LEFT JOIN embeddings e ON e.chunk_id = c.id
		ORDER BY c.rowid
	`)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	defer rows.Close()

	chunks, err := scanChunks(rows)
	return chunks, domain.NewStorageError(op, err)
}

// DeleteContent removes an item, its chunks and their embeddings in one
// transaction. Unknown IDs are a no-op.
func (s *contentStore) DeleteContent(ctx context.Context, id string) error {
	const op = "delete content"
	if err := s.store.ready(op); err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError(op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := deleteChunks(ctx, tx, id); err != nil {
		return domain.NewStorageError(op, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM content WHERE id = ?", id); err != nil {
		return domain.NewStorageError(op, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError(op, fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// deleteChunks removes the embeddings and chunks of an item.
func deleteChunks(ctx context.Context, tx *sql.Tx, contentID string) error {
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM embeddings
		WHERE chunk_id IN (SELECT id FROM chunks WHERE content_id = ?)
	`, contentID); err != nil {
		return fmt.Errorf("deleting embeddings: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE content_id = ?", contentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	return nil
}

// upsertChunk writes a chunk and its embedding. A vector whose size differs
// from the vectors already stored is rejected.
func upsertChunk(ctx context.Context, tx *sql.Tx, chunk *domain.Chunk) error {
	if chunk.Metadata.CreatedAt.IsZero() {
		chunk.Metadata.CreatedAt = time.Now().UTC()
	}
	if chunk.Metadata.Size == 0 {
		chunk.Metadata.Size = len([]rune(chunk.Content))
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO chunks (id, content_id, url, title, content, chunk_index, size, overlap, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content_id = excluded.content_id,
			url = excluded.url,
			title = excluded.title,
			content = excluded.content,
			chunk_index = excluded.chunk_index,
			size = excluded.size,
			overlap = excluded.overlap
	`, chunk.ID, chunk.ContentID, chunk.URL, chunk.Title, chunk.Content, chunk.ChunkIndex,
		chunk.Metadata.Size, chunk.Metadata.Overlap, chunk.Metadata.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving chunk %s: %w", chunk.ID, err)
	}

	if len(chunk.Embedding) == 0 {
		_, err := tx.ExecContext(ctx, "DELETE FROM embeddings WHERE chunk_id = ?", chunk.ID)
		return err
	}

	var dim int
	err = tx.QueryRowContext(ctx,
		"SELECT dimension FROM embeddings WHERE chunk_id != ? LIMIT 1", chunk.ID).Scan(&dim)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("checking embedding dimension: %w", err)
	case dim != len(chunk.Embedding):
		return fmt.Errorf("%w: chunk %s has %d dimensions, store holds %d",
			domain.ErrDimensionMismatch, chunk.ID, len(chunk.Embedding), dim)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO embeddings (chunk_id, dimension, vector)
		VALUES (?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			dimension = excluded.dimension,
			vector = excluded.vector
	`, chunk.ID, len(chunk.Embedding), float32SliceToBytes(chunk.Embedding))
	if err != nil {
		return fmt.Errorf("saving embedding %s: %w", chunk.ID, err)
	}
	return nil
}

// scanChunks reads rows selected with chunkColumns.
func scanChunks(rows *sql.Rows) ([]domain.Chunk, error) {
	chunks := []domain.Chunk{}
	for rows.Next() {
		var chunk domain.Chunk
		var vector []byte
		if err := rows.Scan(&chunk.ID, &chunk.ContentID, &chunk.URL, &chunk.Title, &chunk.Content,
			&chunk.ChunkIndex, &chunk.Metadata.Size, &chunk.Metadata.Overlap,
			&chunk.Metadata.CreatedAt, &vector); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunk.Embedding = bytesToFloat32Slice(vector)
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}
