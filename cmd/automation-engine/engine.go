// Package main provides the automation engine daemon: the scheduler loop and
// the domain event consumer sharing one executor.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/eventbus"
	"github.com/talentlane/automation/pkg/executor"
	"github.com/talentlane/automation/pkg/locks"
	"github.com/talentlane/automation/pkg/persistence"
	"github.com/talentlane/automation/pkg/registry"
	"github.com/talentlane/automation/pkg/scheduler"
)

// Engine runs the scheduler loop and consumes domain events, executing rules
// through a shared executor.
type Engine struct {
	id           string
	persistence  persistence.Persistence
	eventBus     eventbus.EventBus
	scheduler    *scheduler.Scheduler
	dispatcher   *eventbus.RuleDispatcher
	logger       *slog.Logger
	restartCount int
}

// NewEngine wires the executor, scheduler, and event dispatcher together.
func NewEngine(
	id string,
	p persistence.Persistence,
	eventBus eventbus.EventBus,
	locker locks.RuleLocker,
	collabs collaborators.Set,
	logger *slog.Logger,
	pollInterval time.Duration,
	workers int,
	execOpts ...executor.Option,
) *Engine {
	reg := registry.Default(logger, collabs)
	exec := executor.NewExecutor(p, reg, locker, logger, execOpts...)

	return &Engine{
		id:          id,
		persistence: p,
		eventBus:    eventBus,
		scheduler: scheduler.NewScheduler(p, exec, logger,
			scheduler.WithInterval(pollInterval),
			scheduler.WithWorkers(workers),
		),
		dispatcher: eventbus.NewRuleDispatcher(p, exec, logger),
		logger:     logger.With("module", "engine"),
	}
}

// Start begins the engine and blocks until shutdown.
func (e *Engine) Start(ctx context.Context) {
	eCtx, cancel := context.WithCancel(ctx)

	e.logger.Info("Starting engine")

	e.handleSignals(eCtx, cancel)
	e.run(eCtx)
}

// handleSignals sets up signal handling for graceful shutdown and restart.
func (e *Engine) handleSignals(ctx context.Context, cancel context.CancelFunc) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		e.logger.Info("Received signal", "signal", sig)

		switch sig {
		case syscall.SIGHUP:
			e.logger.Info("Reloading...")
			e.restart(ctx, cancel)
		case syscall.SIGINT, syscall.SIGTERM:
			e.logger.Info("Shutting down gracefully...")
			e.stop(cancel)
			os.Exit(0)
		default:
			e.logger.Warn("Unhandled signal received", "signal", sig)
		}
	}()
}

// restart handles service restart with linear backoff.
func (e *Engine) restart(ctx context.Context, cancel context.CancelFunc) {
	e.restartCount++
	newCtx := context.WithoutCancel(ctx)

	e.stop(cancel)

	if e.restartCount > 5 {
		e.logger.Error("Restart limit reached, exiting...")
		os.Exit(1)
	}

	backoff := time.Duration(e.restartCount) * time.Second
	e.logger.Info("Restarting engine...", "backoff", backoff)
	time.Sleep(backoff)

	e.Start(newCtx)
}

func (e *Engine) stop(cancel context.CancelFunc) {
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	e.scheduler.Stop(stopCtx)
	cancel()

	if err := e.eventBus.Close(); err != nil {
		e.logger.Error("Failed to close event bus", "error", err)
	}
}

// run starts the event subscription and the scheduler loop, then blocks
// until the context is cancelled.
func (e *Engine) run(ctx context.Context) {
	e.eventBus.Handle(e.dispatcher.HandleEvent)

	if err := e.eventBus.Subscribe(ctx); err != nil {
		e.logger.Error("Failed to subscribe to event bus", "error", err)

		return
	}

	e.scheduler.Start(ctx)

	e.logger.Info("Engine running")

	<-ctx.Done()
	e.logger.Info("Engine context cancelled, stopping...")
}
