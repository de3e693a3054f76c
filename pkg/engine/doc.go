// Package engine is the logic and partial-response core: it compiles
// published survey versions, computes visible sets, reconciles heartbeat
// saves, and validates submissions.
//
// # Overview
//
// Engine wires four collaborators together:
//
//   - a DefinitionProvider supplying published survey versions
//   - a session.Store holding in-progress drafts
//   - an archive.Sink accepting finalized responses and audit facts
//   - optional Prometheus metrics
//
// Compiled dependency graphs are cached per survey-version identifier.
// Published versions are immutable, so a cached graph is valid until a new
// version is published; Invalidate exists for that single case.
//
// # Submission
//
// Submit never trusts a client-declared visible set. It recomputes
// visibility from the full draft snapshot under the per-token exclusion,
// checks every visible required field and every answered field's
// validation rule, and reports all failures together. Only a fully valid
// snapshot becomes a FinalizedResponse; the draft is retired atomically
// with archiving, and later heartbeats on the token fail with
// ErrSessionNotFound.
//
// The engine assumes no transport. HTTP/JSON binding, authentication, and
// authorization belong to the layers around it.
package engine
