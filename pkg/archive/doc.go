// Package archive persists finalized survey responses and audit facts.
//
// # Overview
//
// When a submission passes validation the engine produces a
// FinalizedResponse: the immutable answer snapshot, the survey version it
// answered, and the visible-field set computed at submission time. The
// archive is append-only. A response is written exactly once per session
// and never mutated afterwards; attempting to archive a second response
// for the same session token is an error.
//
// Alongside responses, the archive accepts AuditFacts: small records of
// who did what to which object, emitted by the engine on every mutation.
// The engine knows nothing about how either is stored; Sink is the full
// contract.
//
// Two sinks are provided: MemorySink for tests and embedding, and
// SQLiteSink for durable single-instance storage.
package archive
