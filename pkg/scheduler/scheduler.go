// Package scheduler polls for due SCHEDULED rules on a fixed interval and
// submits them to the rule executor.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/talentlane/automation/pkg/executor"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
)

const (
	// DefaultInterval is the wall-clock tick period.
	DefaultInterval = 60 * time.Second

	// DefaultWorkers bounds how many due rules execute concurrently within
	// one tick.
	DefaultWorkers = 4
)

// Scheduler owns the background polling loop. Ticks never overlap: the loop
// goroutine runs each tick to completion before waiting for the next one, so
// an overrunning batch delays the following tick instead of stacking.
type Scheduler struct {
	persistence persistence.Persistence
	executor    *executor.Executor
	clock       clockwork.Clock
	logger      *slog.Logger
	interval    time.Duration
	workers     int

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// Option customizes a Scheduler.
type Option func(*Scheduler)

// WithClock injects a clock for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Scheduler) { s.clock = clock }
}

// WithInterval overrides the tick period.
func WithInterval(interval time.Duration) Option {
	return func(s *Scheduler) { s.interval = interval }
}

// WithWorkers overrides the per-tick concurrency bound.
func WithWorkers(workers int) Option {
	return func(s *Scheduler) { s.workers = workers }
}

func NewScheduler(
	persistence persistence.Persistence,
	executor *executor.Executor,
	logger *slog.Logger,
	opts ...Option,
) *Scheduler {
	s := &Scheduler{
		persistence: persistence,
		executor:    executor,
		clock:       clockwork.NewRealClock(),
		logger:      logger.With("module", "scheduler"),
		interval:    DefaultInterval,
		workers:     DefaultWorkers,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start launches the polling loop. It returns immediately; the loop runs
// until Stop is called or the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	s.logger.InfoContext(ctx, "Starting scheduler", "interval", s.interval)

	go s.loop(loopCtx)
}

// Stop requests a clean shutdown and waits for the in-flight tick to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()

		return
	}

	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
		s.logger.InfoContext(ctx, "Scheduler stopped")
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Scheduler stop timed out waiting for in-flight tick")
	}
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			// Stop cancels ctx to interrupt the wait between ticks, but an
			// in-flight batch must run to completion: detach it so runs
			// already picked up finish and persist their logs.
			s.Tick(context.WithoutCancel(ctx))
		}
	}
}

// Tick runs one poll cycle: load due rules and execute them through a
// bounded worker pool. Exported so the engine can run an immediate cycle at
// startup and so tests can drive the loop directly.
func (s *Scheduler) Tick(ctx context.Context) {
	now := s.clock.Now().UTC()

	due, err := s.persistence.Rules().Due(ctx, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load due rules", "error", err)

		return
	}

	if len(due) == 0 {
		return
	}

	s.logger.InfoContext(ctx, "Tick", "due_rules", len(due))

	// The repository orders by priority desc, next_run_at asc; the channel
	// preserves that order for pickup.
	queue := make(chan *models.Rule)

	var wg sync.WaitGroup

	for range s.workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for rule := range queue {
				s.executeOne(ctx, rule)
			}
		}()
	}

	for _, rule := range due {
		queue <- rule
	}

	close(queue)
	wg.Wait()
}

// executeOne isolates a single rule so one catastrophic failure cannot
// prevent other due rules from running in the same tick.
func (s *Scheduler) executeOne(ctx context.Context, rule *models.Rule) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.ErrorContext(ctx, "Panic executing scheduled rule",
				"rule_id", rule.ID, "panic", r)
		}
	}()

	if _, err := s.executor.Execute(ctx, rule.ID, models.TriggeredBySchedule, nil); err != nil {
		s.logger.ErrorContext(ctx, "Failed to execute scheduled rule",
			"rule_id", rule.ID, "error", err)
	}
}
