// Package sqlite provides the SQLite implementation of the storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database connection serves
// three ports:
//
//   - ContentStore: pages, chunks and their embeddings
//   - HistoryStore: asked questions and their answers
//   - Maintenance: clear, statistics and health checks
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.pagewise/data/pagewise.db.
// The CLI passes its --data-dir instead.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode, and deleting a page cascades to its chunks.
package sqlite
