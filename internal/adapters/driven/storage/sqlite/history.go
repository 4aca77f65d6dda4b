package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
)

// historyStore implements driven.HistoryStore.
type historyStore struct {
	store *Store
}

var _ driven.HistoryStore = (*historyStore)(nil)

// Append stores a new query record.
func (s *historyStore) Append(ctx context.Context, record *domain.QueryRecord) error {
	const op = "append history"
	if err := s.store.ready(op); err != nil {
		return err
	}
	if record.ID == "" {
		return fmt.Errorf("%w: query record id is empty", domain.ErrInvalidInput)
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	sources := record.Sources
	if sources == nil {
		sources = []string{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return domain.NewStorageError(op, fmt.Errorf("marshalling sources: %w", err))
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO queries (id, question, answer, sources, query_embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.ID, record.Question, record.Answer, string(sourcesJSON),
		float32SliceToBytes(record.QueryEmbedding), record.Timestamp)
	if err != nil {
		return domain.NewStorageError(op, err)
	}
	return nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (s *historyStore) List(ctx context.Context, limit int) ([]domain.QueryRecord, error) {
	const op = "list history"
	if err := s.store.ready(op); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, question, answer, sources, query_embedding, created_at
		FROM queries
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	defer rows.Close()

	records := []domain.QueryRecord{}
	for rows.Next() {
		var r domain.QueryRecord
		var sourcesJSON string
		var embedding []byte
		if err := rows.Scan(&r.ID, &r.Question, &r.Answer, &sourcesJSON, &embedding, &r.Timestamp); err != nil {
			return nil, domain.NewStorageError(op, fmt.Errorf("scanning query: %w", err))
		}
		if err := json.Unmarshal([]byte(sourcesJSON), &r.Sources); err != nil {
			return nil, domain.NewStorageError(op, fmt.Errorf("unmarshalling sources: %w", err))
		}
		r.QueryEmbedding = bytesToFloat32Slice(embedding)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.NewStorageError(op, err)
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *historyStore) Count(ctx context.Context) (int, error) {
	const op = "count history"
	if err := s.store.ready(op); err != nil {
		return 0, err
	}
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM queries").Scan(&n); err != nil {
		return 0, domain.NewStorageError(op, err)
	}
	return n, nil
}
