package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/talentlane/automation/pkg/models"
)

// WatermillEventBus adapts any watermill publisher/subscriber pair (in-memory
// gochannel or Kafka) to the domain event bus.
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	handler    EventHandler
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:  pub,
		subscriber: sub,
	}
}

func (eb *WatermillEventBus) Publish(ctx context.Context, event *models.DomainEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	if event.ID == "" {
		event.ID = watermill.NewULID()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal domain event: %w", err)
	}

	msg := message.NewMessage("msg-"+watermill.NewULID(), payload)
	msg.Metadata.Set(EventIDMetadataKey, event.ID)
	msg.Metadata.Set(EventTypeMetadataKey, event.EventType)
	msg.SetContext(ctx)

	return eb.publisher.Publish(Topic, msg)
}

// Handle registers the consumer callback. Call before Subscribe.
func (eb *WatermillEventBus) Handle(handler EventHandler) {
	eb.handler = handler
}

// Subscribe starts consuming in a background goroutine. Messages that fail
// to decode are nacked; handler errors are nacked for redelivery by
// transports that support it.
func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", Topic, err)
	}

	go func() {
		for msg := range messages {
			if eb.handler == nil {
				msg.Ack()

				continue
			}

			event := &models.DomainEvent{}
			if err := json.Unmarshal(msg.Payload, event); err != nil {
				msg.Nack()

				continue
			}

			if err := eb.handler(ctx, event); err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func (eb *WatermillEventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return err
	}

	return eb.subscriber.Close()
}
