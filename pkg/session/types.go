package session

import (
	"context"
	"time"
)

// Draft is a respondent's in-progress answer set for one survey version.
type Draft struct {
	// Token is the opaque session identifier.
	Token string

	// SurveyVersion identifies the published survey version the draft
	// belongs to.
	SurveyVersion string

	// Respondent identifies the respondent, or is empty for anonymous
	// sessions. The engine treats it as an opaque string.
	Respondent string

	// Answers maps field IDs to their current values.
	Answers map[string]any

	// Revision increases by one on every accepted heartbeat.
	Revision int64

	// LastSection and LastField track where the respondent left off.
	LastSection string
	LastField   string

	// StartedAt is when the draft was created.
	StartedAt time.Time

	// LastHeartbeat is when the draft last received an accepted heartbeat
	// or was resumed.
	LastHeartbeat time.Time
}

// Clone returns a deep copy of the draft. Stores hand out copies so
// callers can never mutate stored state outside the reconciler.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	out := *d
	out.Answers = make(map[string]any, len(d.Answers))
	for k, v := range d.Answers {
		out.Answers[k] = v
	}
	return &out
}

// Store is the persistence interface for drafts. Implementations must be
// safe for concurrent use; serialization of writes to the same token is
// the Reconciler's responsibility, not the store's.
type Store interface {
	// Get retrieves a draft by token. Returns nil if no draft exists.
	Get(ctx context.Context, token string) (*Draft, error)

	// Put persists a draft, replacing any existing draft for its token.
	Put(ctx context.Context, draft *Draft) error

	// Delete removes a draft. No-op if the token is unknown.
	Delete(ctx context.Context, token string) error

	// Expired returns the tokens of drafts whose last heartbeat is before
	// the cutoff.
	Expired(ctx context.Context, olderThan time.Time) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
