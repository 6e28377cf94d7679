// Package store provides SQLite-backed durable storage for verification
// run records.
//
// The store is an append-only log with:
//   - Runs: one row per scenario execution, keyed by a UUIDv7 run ID
//   - Events: the merged monitor trace of a run, ordered by arrival seq
//   - Failures: check and assertion failure messages for a run
//
// Ordering always uses the logical arrival sequence (seq INTEGER), never
// wall-clock timestamps, so a stored trace reads back exactly as the
// scoreboard consumed it. UUIDv7 run IDs sort by creation time, which is
// what run listings order by.
//
// Database configuration:
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
