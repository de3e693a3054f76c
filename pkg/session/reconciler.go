package session

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// lockStripes is the number of mutexes the per-token exclusion is striped
// across. Tokens hashing to the same stripe serialize against each other,
// which only costs latency, never correctness.
const lockStripes = 64

// DefaultInactivityWindow is how long a draft survives without a
// heartbeat before it is eligible for expiry.
const DefaultInactivityWindow = 30 * time.Minute

// HeartbeatUpdate carries one incremental save: the changed fields only,
// never full state.
type HeartbeatUpdate struct {
	// Fields maps changed field IDs to their new values.
	Fields map[string]any

	// ClientRevision is the revision the client last saw. A stale revision
	// does not reject the heartbeat; merges are field-level last-write-wins
	// and heartbeats carry deltas, so late retries still apply cleanly.
	ClientRevision int64

	// LastSection and LastField update the respondent's progress markers
	// when non-empty.
	LastSection string
	LastField   string
}

// HeartbeatResult reports the merge outcome.
type HeartbeatResult struct {
	// AcceptedRevision is the draft's revision after the merge.
	AcceptedRevision int64

	// Snapshot is the full merged answer set held by the server.
	Snapshot map[string]any
}

// Reconciler merges heartbeat saves into drafts under a per-token
// single-writer discipline. Heartbeats, submission reads, and expiry
// sweeping for the same token all acquire the same exclusion, so no two
// of them can interleave.
type Reconciler struct {
	store  Store
	window time.Duration
	logger *slog.Logger
	locks  [lockStripes]sync.Mutex

	// now is replaceable for tests.
	now func() time.Time
}

// NewReconciler creates a reconciler over the given store. A zero window
// falls back to DefaultInactivityWindow.
func NewReconciler(store Store, window time.Duration, logger *slog.Logger) *Reconciler {
	if window <= 0 {
		window = DefaultInactivityWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:  store,
		window: window,
		logger: logger.With("component", "session.reconciler"),
		now:    time.Now,
	}
}

// lock returns the stripe mutex for a token.
func (r *Reconciler) lock(token string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(token))
	return &r.locks[h.Sum32()%lockStripes]
}

// expired reports whether a draft exceeded the inactivity window.
func (r *Reconciler) expired(draft *Draft) bool {
	return r.now().Sub(draft.LastHeartbeat) > r.window
}

// StartOrResume returns the active draft for a token, extending its
// expiry, or allocates a fresh draft with a new token when the token is
// absent, unknown, expired, or bound to a different survey version.
func (r *Reconciler) StartOrResume(ctx context.Context, token, surveyVersion, respondent string) (*Draft, error) {
	if token != "" {
		mu := r.lock(token)
		mu.Lock()

		draft, err := r.store.Get(ctx, token)
		if err != nil {
			mu.Unlock()
			return nil, err
		}

		switch {
		case draft == nil:
			// Unknown token, allocate below.
		case r.expired(draft):
			// Expired drafts are swept lazily here rather than waiting for
			// the background sweeper.
			if err := r.store.Delete(ctx, token); err != nil {
				mu.Unlock()
				return nil, err
			}
			r.logger.Debug("expired draft replaced", "token", token)
		case draft.SurveyVersion != surveyVersion:
			// A token never migrates between survey versions.
		default:
			draft.LastHeartbeat = r.now()
			if err := r.store.Put(ctx, draft); err != nil {
				mu.Unlock()
				return nil, err
			}
			mu.Unlock()
			return draft, nil
		}
		mu.Unlock()
	}

	draft := &Draft{
		Token:         uuid.NewString(),
		SurveyVersion: surveyVersion,
		Respondent:    respondent,
		Answers:       make(map[string]any),
		Revision:      0,
		StartedAt:     r.now(),
		LastHeartbeat: r.now(),
	}

	mu := r.lock(draft.Token)
	mu.Lock()
	defer mu.Unlock()

	if err := r.store.Put(ctx, draft); err != nil {
		return nil, err
	}

	r.logger.Debug("draft started",
		"token", draft.Token,
		"survey_version", surveyVersion,
	)
	return draft, nil
}

// Heartbeat merges a partial save into the draft for a token. The merge is
// field-level last-write-wins, idempotent for repeated sends and
// commutative across disjoint field sets. Every accepted heartbeat
// increments the revision counter and refreshes the expiry clock.
func (r *Reconciler) Heartbeat(ctx context.Context, token string, update HeartbeatUpdate) (*HeartbeatResult, error) {
	mu := r.lock(token)
	mu.Lock()
	defer mu.Unlock()

	draft, err := r.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("heartbeat %q: %w", token, ErrSessionNotFound)
	}
	if r.expired(draft) {
		return nil, fmt.Errorf("heartbeat %q: %w", token, ErrSessionExpired)
	}

	for fieldID, value := range update.Fields {
		draft.Answers[fieldID] = value
	}
	if update.LastSection != "" {
		draft.LastSection = update.LastSection
	}
	if update.LastField != "" {
		draft.LastField = update.LastField
	}
	draft.Revision++
	draft.LastHeartbeat = r.now()

	if err := r.store.Put(ctx, draft); err != nil {
		return nil, err
	}

	r.logger.Debug("heartbeat merged",
		"token", token,
		"fields", len(update.Fields),
		"revision", draft.Revision,
		"client_revision", update.ClientRevision,
	)

	return &HeartbeatResult{
		AcceptedRevision: draft.Revision,
		Snapshot:         draft.Answers,
	}, nil
}

// Finalize reads the draft for a token under the per-token exclusion, runs
// the caller's check against it, and retires the draft when the check
// passes. On a check failure the draft stays active for correction. This
// is the submission path: a heartbeat can never race a submission into an
// inconsistent partial read.
func (r *Reconciler) Finalize(ctx context.Context, token string, check func(*Draft) error) (*Draft, error) {
	mu := r.lock(token)
	mu.Lock()
	defer mu.Unlock()

	draft, err := r.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("submit %q: %w", token, ErrSessionNotFound)
	}
	if r.expired(draft) {
		return nil, fmt.Errorf("submit %q: %w", token, ErrSessionExpired)
	}

	if check != nil {
		if err := check(draft); err != nil {
			return nil, err
		}
	}

	if err := r.store.Delete(ctx, token); err != nil {
		return nil, err
	}

	r.logger.Info("draft finalized",
		"token", token,
		"survey_version", draft.SurveyVersion,
		"revision", draft.Revision,
	)
	return draft, nil
}

// Peek returns the current draft for a token without mutating it.
func (r *Reconciler) Peek(ctx context.Context, token string) (*Draft, error) {
	mu := r.lock(token)
	mu.Lock()
	defer mu.Unlock()

	draft, err := r.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("peek %q: %w", token, ErrSessionNotFound)
	}
	if r.expired(draft) {
		return nil, fmt.Errorf("peek %q: %w", token, ErrSessionExpired)
	}
	return draft, nil
}

// Sweep deletes every expired draft, taking the per-token exclusion for
// each candidate so a sweep never interleaves with an in-flight heartbeat
// or submission. It returns the number of drafts removed.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.window)
	tokens, err := r.store.Expired(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, token := range tokens {
		mu := r.lock(token)
		mu.Lock()

		// Re-check under the lock: a heartbeat may have revived the draft
		// between listing and locking.
		draft, err := r.store.Get(ctx, token)
		if err != nil {
			mu.Unlock()
			return deleted, err
		}
		if draft != nil && draft.LastHeartbeat.Before(cutoff) {
			if err := r.store.Delete(ctx, token); err != nil {
				mu.Unlock()
				return deleted, err
			}
			deleted++
		}
		mu.Unlock()
	}

	if deleted > 0 {
		r.logger.Info("expired drafts swept", "deleted", deleted)
	}
	return deleted, nil
}
