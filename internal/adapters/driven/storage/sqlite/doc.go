// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements several interfaces
// through a single database connection:
//
//   - DocumentStore: Document persistence
//   - ChunkStore: Chunk persistence with FTS5 full-text and LIKE substring search
//   - VectorIndex: Brute-force cosine search over stored embeddings
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Chunks reference their document with ON DELETE
// CASCADE, and the FTS5 table is kept in step by triggers.
//
// # Data Location
//
// By default, the database is stored at ~/.lexrag/data/lexrag.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
