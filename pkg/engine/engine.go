package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"canvass-hq/canvass/pkg/archive"
	"canvass-hq/canvass/pkg/logic/eval"
	"canvass-hq/canvass/pkg/logic/graph"
	"canvass-hq/canvass/pkg/session"
	"canvass-hq/canvass/pkg/telemetry/metrics"
)

// Config configures the engine.
type Config struct {
	// InactivityWindow is how long a draft survives without a heartbeat.
	// Default: session.DefaultInactivityWindow.
	InactivityWindow time.Duration

	// SweepSchedule is the cron expression driving expiry sweeping.
	// Empty disables the background sweeper.
	SweepSchedule string

	// Metrics receives engine instrumentation. Optional.
	Metrics *metrics.EngineMetrics

	// Logger is the engine's structured logger. Defaults to slog.Default.
	Logger *slog.Logger
}

// Engine is the logic and partial-response core. See the package
// documentation for the full contract.
type Engine struct {
	provider   DefinitionProvider
	cache      *graphCache
	reconciler *session.Reconciler
	sink       archive.Sink
	metrics    *metrics.EngineMetrics
	logger     *slog.Logger

	// now is replaceable for tests.
	now func() time.Time
}

// New creates an engine over the given collaborators.
func New(provider DefinitionProvider, store session.Store, sink archive.Sink, cfg *Config) *Engine {
	if cfg == nil {
		cfg = &Config{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		provider:   provider,
		cache:      newGraphCache(),
		reconciler: session.NewReconciler(store, cfg.InactivityWindow, logger),
		sink:       sink,
		metrics:    cfg.Metrics,
		logger:     logger.With("component", "engine"),
		now:        time.Now,
	}
}

// Compile returns the compiled dependency graph for a survey version,
// compiling and caching it on first use. Compile errors mean the version
// cannot be published.
func (e *Engine) Compile(ctx context.Context, version string) (*graph.DependencyGraph, error) {
	g, err := e.cache.get(ctx, e.provider, version)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordCompile("error")
		}
		return nil, err
	}
	if e.metrics != nil {
		e.metrics.RecordCompile("ok")
	}
	return g, nil
}

// Invalidate drops the cached graph for a version. Call it only when a
// new version is published; published versions never change in place.
func (e *Engine) Invalidate(version string) {
	e.cache.invalidate(version)
	e.logger.Debug("compiled graph invalidated", "survey_version", version)
}

// VisibleSet computes the ordered visible-field set for a survey version
// and answer snapshot.
func (e *Engine) VisibleSet(ctx context.Context, version string, answers map[string]any) ([]string, error) {
	g, err := e.Compile(ctx, version)
	if err != nil {
		return nil, err
	}

	start := e.now()
	visible := g.VisibleSet(answers)
	if e.metrics != nil {
		e.metrics.RecordVisibleSet(e.now().Sub(start))
	}
	return visible, nil
}

// StartOrResume returns the active draft for a token, or starts a new
// draft when the token is absent, unknown, or expired. The survey version
// must compile; a version that cannot compile was never published.
func (e *Engine) StartOrResume(ctx context.Context, token, version, respondent string) (*session.Draft, error) {
	if _, err := e.Compile(ctx, version); err != nil {
		return nil, err
	}

	draft, err := e.reconciler.StartOrResume(ctx, token, version, respondent)
	if err != nil {
		return nil, err
	}

	if draft.Token != token {
		e.audit(ctx, respondent, archive.AuditActionSessionStarted, draft.Token)
	}
	return draft, nil
}

// Heartbeat merges a partial save into the draft for a token.
func (e *Engine) Heartbeat(ctx context.Context, token string, update session.HeartbeatUpdate) (*session.HeartbeatResult, error) {
	result, err := e.reconciler.Heartbeat(ctx, token, update)
	if err != nil {
		e.recordHeartbeat(sessionOutcome(err))
		return nil, err
	}

	e.recordHeartbeat("accepted")
	e.audit(ctx, "", archive.AuditActionHeartbeat, token)
	return result, nil
}

// Submit validates the draft held for a token and, when every check
// passes, archives a FinalizedResponse and retires the draft atomically.
// On rejection the draft stays active and the returned error is a
// *ValidationError listing every failure.
func (e *Engine) Submit(ctx context.Context, token string) (*archive.FinalizedResponse, error) {
	var response *archive.FinalizedResponse

	_, err := e.reconciler.Finalize(ctx, token, func(draft *session.Draft) error {
		g, err := e.Compile(ctx, draft.SurveyVersion)
		if err != nil {
			return err
		}

		if verr := e.validate(g, draft.Answers); verr != nil {
			return verr
		}

		response = e.buildResponse(draft, g)
		return e.sink.Archive(ctx, response)
	})

	if err != nil {
		var verr *ValidationError
		switch {
		case errors.As(err, &verr):
			e.recordSubmission("rejected")
			e.audit(ctx, "", archive.AuditActionRejected, token)
		default:
			e.recordSubmission(sessionOutcome(err))
		}
		return nil, err
	}

	e.recordSubmission("accepted")
	e.audit(ctx, response.Respondent, archive.AuditActionSubmitted, response.ID)

	e.logger.Info("submission accepted",
		"token", token,
		"survey_version", response.SurveyVersion,
		"response_id", response.ID,
	)
	return response, nil
}

// Sweep removes expired drafts immediately. The background sweeper calls
// this on its schedule; embedders may also call it directly.
func (e *Engine) Sweep(ctx context.Context) (int, error) {
	deleted, err := e.reconciler.Sweep(ctx)
	if err != nil {
		return deleted, err
	}
	if e.metrics != nil && deleted > 0 {
		e.metrics.AddSwept(deleted)
	}
	return deleted, nil
}

// StartSweeper begins scheduled expiry sweeping with the given cron
// expression. It returns the sweeper so the caller can stop it.
func (e *Engine) StartSweeper(ctx context.Context, schedule string) (*session.Sweeper, error) {
	sweeper := session.NewSweeper(e.reconciler, schedule)
	if err := sweeper.Start(ctx); err != nil {
		return nil, err
	}
	return sweeper, nil
}

// validate runs submission validation over a full snapshot: required
// checks for visible fields, then validation rules for every answered
// field. All failures are collected before returning.
func (e *Engine) validate(g *graph.DependencyGraph, answers map[string]any) *ValidationError {
	snapshot := eval.Snapshot(answers)
	visible := g.VisibleFields(snapshot)

	var failures []FieldFailure

	for _, section := range g.Survey().Sections {
		for _, field := range section.Fields {
			value, answered := answers[field.ID]

			if visible[field.ID] && field.Required {
				if !answered || eval.IsEmpty(value) {
					failures = append(failures, FieldFailure{
						FieldID: field.ID,
						Kind:    FailureMissingRequired,
						Message: "required field is not answered",
					})
					continue
				}
			}

			// Answered fields must satisfy their own validation rule,
			// visible or not; hidden answers are persisted but still
			// well-formed.
			if answered && !eval.IsEmpty(value) {
				if rule := g.ValidationRule(field.ID); rule != nil {
					if !eval.Evaluate(rule.Expr, snapshot) {
						failures = append(failures, FieldFailure{
							FieldID: field.ID,
							Kind:    FailureValidationFailed,
							Message: "answer does not satisfy the field's validation rule",
						})
					}
				}
			}
		}
	}

	if len(failures) == 0 {
		return nil
	}
	return &ValidationError{Failures: failures}
}

// buildResponse assembles the immutable finalized response for a draft.
func (e *Engine) buildResponse(draft *session.Draft, g *graph.DependencyGraph) *archive.FinalizedResponse {
	now := e.now()
	return &archive.FinalizedResponse{
		ID:                uuid.NewString(),
		SessionToken:      draft.Token,
		SurveyVersion:     draft.SurveyVersion,
		Respondent:        draft.Respondent,
		Answers:           draft.Answers,
		VisibleFields:     g.VisibleSet(draft.Answers),
		SubmittedAt:       now,
		CompletionSeconds: int64(now.Sub(draft.StartedAt).Seconds()),
	}
}

// audit emits one audit fact, logging rather than failing the operation
// if the sink rejects it.
func (e *Engine) audit(ctx context.Context, actor string, action archive.AuditAction, object string) {
	if actor == "" {
		actor = "anonymous"
	}
	fact := &archive.AuditFact{
		Actor:  actor,
		Action: action,
		Object: object,
		At:     e.now(),
	}
	if err := e.sink.Audit(ctx, fact); err != nil {
		e.logger.Error("audit fact dropped", "action", action, "error", err)
	}
}

func (e *Engine) recordHeartbeat(outcome string) {
	if e.metrics != nil {
		e.metrics.RecordHeartbeat(outcome)
	}
}

func (e *Engine) recordSubmission(outcome string) {
	if e.metrics != nil {
		e.metrics.RecordSubmission(outcome)
	}
}

// sessionOutcome maps session errors to metric outcome labels.
func sessionOutcome(err error) string {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return "not_found"
	case errors.Is(err, session.ErrSessionExpired):
		return "expired"
	default:
		return "error"
	}
}
