package models

import "time"

// Event types published on the order-events topic
const (
	EventTypeOrderCreated  = "ORDER_CREATED"
	EventTypeOrderApproved = "ORDER_APPROVED"
	EventTypeOrderRejected = "ORDER_REJECTED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderEvent is published after an order state change commits. The embedded
// snapshot carries everything the notification channels need so consumers
// never have to read the database.
type OrderEvent struct {
	BaseEvent
	Order Order `json:"order"`
}
