package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/abdallah244/store-backend/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventPublisher publishes order lifecycle events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishOrderEvent publishes an order event of the given type, keyed by
// order id so events for one order stay in partition order
func (ep *EventPublisher) PublishOrderEvent(ctx context.Context, eventType string, order *models.Order) error {
	event := &models.OrderEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: eventType,
			Timestamp: time.Now(),
		},
		Order: *order,
	}

	key := fmt.Sprintf("order-%s", order.ID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes order events to registered callbacks
type EventHandler struct {
	onOrderEvent func(context.Context, *models.OrderEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnOrderEvent registers a handler for order events
func (eh *EventHandler) OnOrderEvent(handler func(context.Context, *models.OrderEvent) error) {
	eh.onOrderEvent = handler
}

// HandleMessage decodes a message and routes it to the registered handler
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var event models.OrderEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal order event: %w", err)
	}

	switch event.EventType {
	case models.EventTypeOrderCreated, models.EventTypeOrderApproved, models.EventTypeOrderRejected:
		if eh.onOrderEvent != nil {
			return eh.onOrderEvent(ctx, &event)
		}
	default:
		log.Printf("Unhandled event type: %s", event.EventType)
	}

	return nil
}
