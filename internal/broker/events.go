package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"checkout-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// Publisher is the outward notification surface of the cart/checkout core.
// Presentation layers (badge worker, navigation hooks) subscribe to these
// events instead of watching state directly.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, event *models.CartUpdatedEvent) error
	PublishCartCleared(ctx context.Context, event *models.CartClearedEvent) error
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}

// EventPublisher publishes domain events through Kafka.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishCartUpdated publishes CartUpdated event
func (ep *EventPublisher) PublishCartUpdated(ctx context.Context, event *models.CartUpdatedEvent) error {
	key := fmt.Sprintf("cart-%s", event.ScopeKey)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishCartCleared publishes CartCleared event
func (ep *EventPublisher) PublishCartCleared(ctx context.Context, event *models.CartClearedEvent) error {
	key := fmt.Sprintf("cart-%s", event.ScopeKey)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishOrderPlaced publishes OrderPlaced event
func (ep *EventPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	key := fmt.Sprintf("order-%s", event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// NopPublisher discards all events. Used in tests and when no broker is
// configured.
type NopPublisher struct{}

func (NopPublisher) PublishCartUpdated(ctx context.Context, event *models.CartUpdatedEvent) error {
	return nil
}

func (NopPublisher) PublishCartCleared(ctx context.Context, event *models.CartClearedEvent) error {
	return nil
}

func (NopPublisher) PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	return nil
}

// EventHandler handles incoming events
type EventHandler struct {
	onCartUpdated func(context.Context, *models.CartUpdatedEvent) error
	onCartCleared func(context.Context, *models.CartClearedEvent) error
	onOrderPlaced func(context.Context, *models.OrderPlacedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnCartUpdated registers a handler for CartUpdated events
func (eh *EventHandler) OnCartUpdated(handler func(context.Context, *models.CartUpdatedEvent) error) {
	eh.onCartUpdated = handler
}

// OnCartCleared registers a handler for CartCleared events
func (eh *EventHandler) OnCartCleared(handler func(context.Context, *models.CartClearedEvent) error) {
	eh.onCartCleared = handler
}

// OnOrderPlaced registers a handler for OrderPlaced events
func (eh *EventHandler) OnOrderPlaced(handler func(context.Context, *models.OrderPlacedEvent) error) {
	eh.onOrderPlaced = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeCartUpdated:
		if eh.onCartUpdated != nil {
			var event models.CartUpdatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CartUpdated event: %w", err)
			}
			return eh.onCartUpdated(ctx, &event)
		}

	case models.EventTypeCartCleared:
		if eh.onCartCleared != nil {
			var event models.CartClearedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal CartCleared event: %w", err)
			}
			return eh.onCartCleared(ctx, &event)
		}

	case models.EventTypeOrderPlaced:
		if eh.onOrderPlaced != nil {
			var event models.OrderPlacedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderPlaced event: %w", err)
			}
			return eh.onOrderPlaced(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
