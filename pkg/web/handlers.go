// Package web provides HTTP handlers and REST API endpoints for automation
// rule management, manual execution, event intake, and monitoring.
package web

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/talentlane/automation/pkg/eventbus"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
	"github.com/talentlane/automation/pkg/registry"
	"github.com/talentlane/automation/pkg/services"
)

// RuleExecutor runs one rule and returns the execution log it wrote.
type RuleExecutor interface {
	Execute(ctx context.Context, ruleID string, triggeredBy models.TriggeredBy, event *models.DomainEvent) (*models.ExecutionLog, error)
}

type APIHandlers struct {
	ruleService       *services.Rule
	monitoringService *services.Monitoring
	executor          RuleExecutor
	publisher         eventbus.EventPublisher
	validator         *validator.Validate
	registry          *registry.Registry
}

func NewAPIHandlers(
	ruleService *services.Rule,
	monitoringService *services.Monitoring,
	executor RuleExecutor,
	publisher eventbus.EventPublisher,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		ruleService:       ruleService,
		monitoringService: monitoringService,
		executor:          executor,
		publisher:         publisher,
		validator:         validator,
		registry:          registry,
	}
}

func (h *APIHandlers) GetRules(c fiber.Ctx) error {
	filter, err := h.parseRuleFilter(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	rules, err := h.ruleService.List(c.Context(), *filter)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"rules": rules,
		"count": len(rules),
	})
}

// parseRuleFilter parses the trigger, type, and is_active query parameters.
func (h *APIHandlers) parseRuleFilter(c fiber.Ctx) (*persistence.RuleFilter, error) {
	filter := &persistence.RuleFilter{}

	if triggerStr := c.Query("trigger"); triggerStr != "" {
		trigger := models.TriggerType(triggerStr)
		filter.Trigger = &trigger
	}

	if typeStr := c.Query("type"); typeStr != "" {
		ruleType := models.RuleType(typeStr)
		filter.Type = &ruleType
	}

	if activeStr := c.Query("is_active"); activeStr != "" {
		active, err := strconv.ParseBool(activeStr)
		if err != nil {
			return nil, err
		}

		filter.IsActive = &active
	}

	return filter, nil
}

func (h *APIHandlers) GetRule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Rule ID is required")
	}

	rule, err := h.ruleService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) CreateRule(c fiber.Ctx) error {
	var req CreateRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.ruleService.Create(c.Context(), req.ToRule())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateRule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Rule ID is required")
	}

	var req UpdateRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.ruleService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	req.ApplyTo(existing)

	updated, err := h.ruleService.Update(c.Context(), id, existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteRule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Rule ID is required")
	}

	if err := h.ruleService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ExecuteRule runs a rule on an operator's explicit request. The optional
// payload is exposed to templates the same way an event payload would be.
func (h *APIHandlers) ExecuteRule(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Rule ID is required")
	}

	var req ExecuteRuleRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return badRequest(c, "Invalid JSON format")
		}
	}

	var event *models.DomainEvent
	if req.Payload != nil {
		event = &models.DomainEvent{
			ID:        uuid.New().String(),
			EventType: "manual",
			Payload:   req.Payload,
			Timestamp: time.Now().UTC(),
		}
	}

	log, err := h.executor.Execute(c.Context(), id, models.TriggeredByManual, event)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(log)
}

func (h *APIHandlers) ActivateRule(c fiber.Ctx) error {
	return h.setRuleActive(c, true)
}

func (h *APIHandlers) DeactivateRule(c fiber.Ctx) error {
	return h.setRuleActive(c, false)
}

func (h *APIHandlers) setRuleActive(c fiber.Ctx, active bool) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Rule ID is required")
	}

	if err := h.ruleService.SetActive(c.Context(), id, active); err != nil {
		return handleServiceError(c, err)
	}

	rule, err := h.ruleService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

// PublishEvent accepts a marketplace domain event and puts it on the bus.
// Rule matching happens asynchronously in the engine process.
func (h *APIHandlers) PublishEvent(c fiber.Ctx) error {
	var req PublishEventRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	event := &models.DomainEvent{
		ID:        uuid.New().String(),
		EventType: req.EventType,
		Payload:   req.Payload,
		Timestamp: time.Now().UTC(),
	}

	if err := h.publisher.Publish(c.Context(), event); err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"event_id": event.ID,
		"status":   "accepted",
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.ruleService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) GetRecentLogs(c fiber.Ctx) error {
	limit, err := h.parseLimit(c)
	if err != nil {
		return badRequest(c, "Invalid limit parameter")
	}

	var logs []*models.ExecutionLog

	// rule_id narrows the feed to one rule.
	if ruleID := c.Query("rule_id"); ruleID != "" {
		logs, err = h.monitoringService.RuleLogs(c.Context(), ruleID, limit)
	} else {
		logs, err = h.monitoringService.RecentLogs(c.Context(), limit)
	}

	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}

func (h *APIHandlers) GetRuleLogs(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Rule ID is required")
	}

	limit, err := h.parseLimit(c)
	if err != nil {
		return badRequest(c, "Invalid limit parameter")
	}

	logs, err := h.monitoringService.RuleLogs(c.Context(), id, limit)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"rule_id": id,
		"logs":    logs,
		"count":   len(logs),
	})
}

func (h *APIHandlers) GetRuleMetrics(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Rule ID is required")
	}

	metrics, err := h.monitoringService.RuleMetrics(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(metrics)
}

func (h *APIHandlers) GetSystemMetrics(c fiber.Ctx) error {
	metrics, err := h.monitoringService.SystemMetrics(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(metrics)
}

func (h *APIHandlers) parseLimit(c fiber.Ctx) (int, error) {
	limitStr := c.Query("limit")
	if limitStr == "" {
		return 50, nil
	}

	return strconv.Atoi(limitStr)
}
