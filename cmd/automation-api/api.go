// Package main provides the automation API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/eventbus"
	"github.com/talentlane/automation/pkg/executor"
	"github.com/talentlane/automation/pkg/locks"
	"github.com/talentlane/automation/pkg/persistence"
	"github.com/talentlane/automation/pkg/registry"
	"github.com/talentlane/automation/pkg/services"
	"github.com/talentlane/automation/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	locker      locks.RuleLocker
	eventBus    eventbus.EventBus
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	collabs collaborators.Set,
	locker locks.RuleLocker,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry.Default(logger, collabs),
		locker:      locker,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	ruleService := services.NewRule(a.persistence, a.registry)
	monitoringService := services.NewMonitoring(a.persistence)
	ruleExecutor := executor.NewExecutor(a.persistence, a.registry, a.locker, a.logger)

	handlers := web.NewAPIHandlers(
		ruleService,
		monitoringService,
		ruleExecutor,
		a.eventBus,
		a.validate,
		a.registry,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("TalentLane Automation API")
	})

	r := app.Group("/automation/rules")
	r.Get("/", handlers.GetRules)
	r.Post("/", handlers.CreateRule)
	r.Get("/:id", handlers.GetRule)
	r.Patch("/:id", handlers.UpdateRule)
	r.Delete("/:id", handlers.DeleteRule)
	r.Post("/:id/execute", handlers.ExecuteRule)
	r.Post("/:id/activate", handlers.ActivateRule)
	r.Post("/:id/deactivate", handlers.DeactivateRule)

	app.Post("/events", handlers.PublishEvent)

	m := app.Group("/monitoring")
	m.Get("/health", handlers.HealthCheck)
	m.Get("/logs", handlers.GetRecentLogs)
	m.Get("/metrics", handlers.GetSystemMetrics)
	m.Get("/rules/:id/logs", handlers.GetRuleLogs)
	m.Get("/rules/:id/metrics", handlers.GetRuleMetrics)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
