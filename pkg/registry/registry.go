// Package registry maps action type tags to their factories and validates
// action parameters against each factory's JSON schema.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

type Registry struct {
	logger    *slog.Logger
	factories map[models.ActionType]protocol.ActionFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[models.ActionType]protocol.ActionFactory),
	}
}

// Register adds an action factory, replacing any previous one for the tag.
func (r *Registry) Register(factory protocol.ActionFactory) {
	r.factories[factory.ID()] = factory
}

// ActionTypes returns the registered tags.
func (r *Registry) ActionTypes() []models.ActionType {
	types := make([]models.ActionType, 0, len(r.factories))
	for actionType := range r.factories {
		types = append(types, actionType)
	}

	return types
}

// HealthCheck reports whether the registry is serviceable.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.factories) == 0 {
		return "No action factories registered", false
	}

	return fmt.Sprintf("Registry is healthy with %d action factories", len(r.factories)), true
}

// Create validates the parameters against the factory's schema and builds
// the action.
func (r *Registry) Create(actionType models.ActionType, parameters map[string]any) (protocol.Action, error) {
	factory, ok := r.factories[actionType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownActionType, actionType)
	}

	if err := r.validateParameters(factory, parameters); err != nil {
		return nil, err
	}

	return factory.Create(parameters)
}

// ValidateAction checks an action's tag and parameter shape without building
// it. The rule store calls this at creation time.
func (r *Registry) ValidateAction(action models.Action) error {
	factory, ok := r.factories[action.Type]
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrUnknownActionType, action.Type)
	}

	return r.validateParameters(factory, action.Parameters)
}

func (r *Registry) validateParameters(factory protocol.ActionFactory, parameters map[string]any) error {
	if parameters == nil {
		parameters = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(factory.Schema()),
		gojsonschema.NewGoLoader(parameters),
	)
	if err != nil {
		return fmt.Errorf("failed to validate %s parameters: %w", factory.ID(), err)
	}

	if !result.Valid() {
		detail := ""
		for _, desc := range result.Errors() {
			if detail != "" {
				detail += "; "
			}

			detail += desc.String()
		}

		return fmt.Errorf("invalid %s parameters: %s", factory.ID(), detail)
	}

	return nil
}
