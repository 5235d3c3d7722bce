// Package store provides SQLite-backed history of ELF inspections.
//
// Each row records one inspection of one file: where it was read from, the
// content digest of its report, a few header fields for listing, and the
// canonical report JSON itself.
//
// # Identity and Idempotency
//
//   - Row IDs are UUIDv7, so they sort by creation time
//   - UNIQUE(path, digest) makes re-inspecting an unchanged file a no-op
//   - Listing orders by inspected_at DESC, id DESC so ties resolve the same
//     way every time
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
