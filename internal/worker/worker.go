package worker

import (
	"context"
	"log"

	"github.com/abdallah244/store-backend/internal/broker"
	"github.com/abdallah244/store-backend/internal/notify"
)

// NotificationWorker consumes order events and hands them to the dispatcher.
// It runs independently of the HTTP request path, so a slow notification
// channel can never block an order operation.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, dispatcher *notify.Dispatcher) *NotificationWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderEvent(dispatcher.HandleOrderEvent)

	return &NotificationWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	log.Println("Starting notification worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	log.Println("Stopping notification worker...")
	return w.consumer.Close()
}
