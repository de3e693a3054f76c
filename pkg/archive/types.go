package archive

import (
	"context"
	"time"
)

// FinalizedResponse is the immutable result of a successful submission.
type FinalizedResponse struct {
	// ID is the unique response identifier.
	ID string

	// SessionToken is the draft session this response finalized. At most
	// one response exists per token.
	SessionToken string

	// SurveyVersion identifies the published survey version answered.
	SurveyVersion string

	// Respondent identifies the respondent, or is empty for anonymous
	// sessions.
	Respondent string

	// Answers is the final answer snapshot.
	Answers map[string]any

	// VisibleFields is the ordered visible-field set computed at
	// submission time.
	VisibleFields []string

	// SubmittedAt is the submission timestamp.
	SubmittedAt time.Time

	// CompletionSeconds is how long the respondent took from draft start
	// to submission.
	CompletionSeconds int64
}

// AuditAction is the kind of mutation an audit fact records.
type AuditAction string

const (
	AuditActionSessionStarted AuditAction = "session_started"
	AuditActionHeartbeat      AuditAction = "heartbeat"
	AuditActionSubmitted      AuditAction = "submitted"
	AuditActionRejected       AuditAction = "rejected"
	AuditActionExpired        AuditAction = "expired"
)

// AuditFact is one per-mutation audit record. The engine emits facts; it
// never reads them back.
type AuditFact struct {
	// Actor is the respondent identity, or "anonymous".
	Actor string

	// Action is the kind of mutation.
	Action AuditAction

	// Object references the mutated object, e.g. a session token or
	// response ID.
	Object string

	// At is when the mutation happened.
	At time.Time
}

// Sink is the persistence contract for finalized responses and audit
// facts. Implementations must be safe for concurrent use.
type Sink interface {
	// Archive stores a finalized response. Archiving a second response for
	// the same session token fails.
	Archive(ctx context.Context, response *FinalizedResponse) error

	// Audit stores one audit fact.
	Audit(ctx context.Context, fact *AuditFact) error

	// Close releases any resources held by the sink.
	Close() error
}
