package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"

	"github.com/talentlane/automation/pkg/cmd"
	"github.com/talentlane/automation/pkg/executor"
	"github.com/talentlane/automation/pkg/log"
	"github.com/talentlane/automation/pkg/otelhelper"
	"github.com/talentlane/automation/pkg/scheduler"
)

func main() {
	logger := log.WithModule("engine")

	command := &cli.Command{
		Name:                  "automation-engine",
		Usage:                 "Run the rule scheduler and event consumer",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "engine-id",
				Aliases: []string{"id"},
				Usage:   "Custom engine ID (auto-generated if not provided)",
				Sources: cli.EnvVars("ENGINE_ID"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for cross-process rule locks",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				Usage:   "How often the scheduler checks for due rules",
				Value:   scheduler.DefaultInterval,
				Sources: cli.EnvVars("POLL_INTERVAL"),
			},
			&cli.IntFlag{
				Name:    "workers",
				Usage:   "How many due rules run concurrently per tick",
				Value:   scheduler.DefaultWorkers,
				Sources: cli.EnvVars("SCHEDULER_WORKERS"),
			},
			&cli.StringFlag{
				Name:    "smtp-host",
				Usage:   "SMTP relay host (emails are logged when empty)",
				Sources: cli.EnvVars("SMTP_HOST"),
			},
			&cli.IntFlag{
				Name:    "smtp-port",
				Usage:   "SMTP relay port",
				Value:   587,
				Sources: cli.EnvVars("SMTP_PORT"),
			},
			&cli.StringFlag{
				Name:    "smtp-username",
				Usage:   "SMTP username, also used as the From address",
				Sources: cli.EnvVars("SMTP_USERNAME"),
			},
			&cli.StringFlag{
				Name:    "smtp-password",
				Usage:   "SMTP password",
				Sources: cli.EnvVars("SMTP_PASSWORD"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export execution spans over OTLP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			engineID := command.String("engine-id")
			if engineID == "" {
				engineID = "engine-" + uuid.New().String()
			}

			logger := logger.With("engine_id", engineID)
			logger.InfoContext(ctx, "Initializing automation engine")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), "automation-engine", logger)
			if err != nil {
				return err
			}

			locker, err := cmd.NewRuleLocker(command.String("redis-url"))
			if err != nil {
				return err
			}

			collabs := cmd.NewCollaborators(logger, persistence, cmd.SMTPConfig{
				Host:     command.String("smtp-host"),
				Port:     command.Int("smtp-port"),
				Username: command.String("smtp-username"),
				Password: command.String("smtp-password"),
			})

			execOpts := []executor.Option{}
			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "automation-engine")
				if err != nil {
					return err
				}

				execOpts = append(execOpts, executor.WithTracer(tracer))
			}

			engine := NewEngine(
				engineID,
				persistence,
				eventBus,
				locker,
				collabs,
				logger,
				command.Duration("poll-interval"),
				command.Int("workers"),
				execOpts...,
			)

			engine.Start(ctx)

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
