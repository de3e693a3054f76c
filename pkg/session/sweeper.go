package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Sweeper runs expiry sweeping on a schedule, independently of request
// handling. Each sweep goes through the Reconciler, which takes the
// per-token exclusion, so a scheduled sweep can never interleave with an
// in-flight heartbeat or submission for the same token.
type Sweeper struct {
	reconciler *Reconciler
	schedule   string
	cron       *cron.Cron
	logger     *slog.Logger
	mu         sync.Mutex
	running    bool
}

// NewSweeper creates a sweeper driving the given reconciler. The schedule
// uses standard cron syntax, e.g. "*/5 * * * *" for every five minutes.
func NewSweeper(reconciler *Reconciler, schedule string) *Sweeper {
	return &Sweeper{
		reconciler: reconciler,
		schedule:   schedule,
		cron:       cron.New(),
		logger:     slog.Default().With("component", "session.sweeper"),
	}
}

// Start begins scheduled sweeping. If the schedule is empty the sweeper
// does nothing. Stop is called automatically when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("sweep schedule not configured, skipping sweeper")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.reconciler.Sweep(context.Background()); err != nil {
			s.logger.Error("sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweeping: %w", err)
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("session sweeper started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts scheduled sweeping. In-flight sweeps run to completion.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("session sweeper stopped")
}
