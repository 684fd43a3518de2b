// Package database provides SQLite-based run history for the poster generator.
//
// This package implements the HistoryDB, which stores:
//   - One row per run with its counts and the full JSON summary
//   - One row per poster with its status, output path and SHA3 digest
//
// The digests make it possible to tell whether a record's poster changed
// between two runs without keeping old PDFs around.
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode lets `posters history` read while a run is writing
package database
