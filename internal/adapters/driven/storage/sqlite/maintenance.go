package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/pagewise/internal/core/domain"
	"github.com/custodia-labs/pagewise/internal/core/ports/driven"
)

// maintenance implements driven.Maintenance.
type maintenance struct {
	store *Store
}

var _ driven.Maintenance = (*maintenance)(nil)

// Clear empties every table in one transaction.
func (m *maintenance) Clear(ctx context.Context) error {
	const op = "clear"
	if err := m.store.ready(op); err != nil {
		return err
	}

	tx, err := m.store.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.NewStorageError(op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	// Children first so the statements never depend on cascades.
	for _, table := range []string{"embeddings", "chunks", "content", "queries"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return domain.NewStorageError(op, fmt.Errorf("clearing %s: %w", table, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.NewStorageError(op, fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// Stats reports record counts, the on-disk size and the stored vector size.
func (m *maintenance) Stats(ctx context.Context) (*domain.Stats, error) {
	const op = "stats"
	if err := m.store.ready(op); err != nil {
		return nil, err
	}

	var stats domain.Stats
	err := m.store.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM content),
			(SELECT COUNT(*) FROM chunks),
			(SELECT COUNT(*) FROM queries)
	`).Scan(&stats.TotalContent, &stats.TotalChunks, &stats.TotalQueries)
	if err != nil {
		return nil, domain.NewStorageError(op, err)
	}

	err = m.store.db.QueryRowContext(ctx, "SELECT dimension FROM embeddings LIMIT 1").Scan(&stats.VectorDimension)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewStorageError(op, err)
	}

	stats.StorageSizeBytes = m.sizeBytes(ctx)
	return &stats, nil
}

// sizeBytes prefers SQLite's page accounting and falls back to the file
// sizes of the database and its WAL.
func (m *maintenance) sizeBytes(ctx context.Context) int64 {
	var pageCount, pageSize int64
	if err := m.store.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := m.store.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err == nil {
			if size := pageCount * pageSize; size > 0 {
				return size
			}
		}
	}

	var total int64
	for _, p := range []string{m.store.path, m.store.path + "-wal"} {
		if info, err := os.Stat(p); err == nil {
			total += info.Size()
		}
	}
	return total
}

// Health checks the connection, a trivial query and the schema.
// Problems are reported as issues, never as errors.
func (m *maintenance) Health(ctx context.Context) domain.HealthStatus {
	status := domain.HealthStatus{Healthy: true}

	if m.store.closed.Load() {
		status.AddIssue("database handle is closed")
		return status
	}

	if err := m.store.db.PingContext(ctx); err != nil {
		status.AddIssue(fmt.Sprintf("database unreachable: %v", err))
		return status
	}

	var one int
	if err := m.store.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil || one != 1 {
		status.AddIssue(fmt.Sprintf("test query failed: %v", err))
		return status
	}

	for _, table := range requiredTables {
		var name string
		err := m.store.db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err != nil {
			status.AddIssue(fmt.Sprintf("missing table %q", table))
		}
	}

	if v, err := m.store.schemaVersion(ctx); err != nil || v == 0 {
		status.AddIssue("schema version not recorded")
	}

	return status
}
