// Package eventbus transports marketplace domain events to the automation
// engine. Publishing is fire-and-forget for the caller; events are not
// durably queued, only the execution logs of the rules they trigger persist.
package eventbus

import (
	"context"

	"github.com/talentlane/automation/pkg/models"
)

// Topic carries every marketplace domain event.
const Topic = "talentlane.automation.events"

const (
	EventIDMetadataKey   = "event_id"
	EventTypeMetadataKey = "event_type"
)

// EventHandler processes one domain event.
type EventHandler func(ctx context.Context, event *models.DomainEvent) error

// EventPublisher publishes domain events onto the bus.
type EventPublisher interface {
	Publish(ctx context.Context, event *models.DomainEvent) error
}

// EventSubscriber consumes domain events from the bus.
type EventSubscriber interface {
	Handle(handler EventHandler)
	Subscribe(ctx context.Context) error
}

// EventBus is the full pub/sub surface.
type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
}
