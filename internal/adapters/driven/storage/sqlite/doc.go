// Package sqlite provides a SQLite-based implementation of the document and
// chunk store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Embeddings are stored as little-endian float32 blobs on the chunk rows, so an
// index rebuilt after a restart sees the same vectors.
//
// # Data Location
//
// By default, the database is stored at ~/.docuchat/data/docuchat.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
