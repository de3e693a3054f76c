// Package session owns the lifecycle of in-progress survey drafts.
//
// # Overview
//
// A Draft is a respondent's evolving answer set, keyed by an opaque session
// token. Drafts are created on first partial save, mutated by heartbeat
// merges, and destroyed on successful submission or expiry.
//
// The Reconciler is the only writer. It enforces a single-writer-per-token
// discipline: concurrent heartbeats for the same token (duplicate network
// retries, overlapping client ticks) are serialized, and submission and
// expiry sweeping acquire the same per-token exclusion, so neither can
// interleave with an in-flight heartbeat.
//
// # Merge law
//
// Heartbeats carry changed fields only, never full state. Merging is
// field-level last-write-wins: re-sending the same heartbeat is idempotent,
// and heartbeats touching disjoint field sets commute.
//
// # Storage
//
// Two Store implementations are provided: MemoryStore for fast
// non-persistent operation and SQLiteStore for durability across restarts.
// Sessions are independent; no cross-session coordination exists anywhere
// in this package.
package session
