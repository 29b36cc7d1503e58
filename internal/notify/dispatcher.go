package notify

import (
	"context"

	"github.com/abdallah244/store-backend/internal/models"
	"github.com/abdallah244/store-backend/internal/util"

	"go.uber.org/zap"
)

// EmailSender sends the admin-facing new-order email
type EmailSender interface {
	SendNewOrderEmail(ctx context.Context, order *models.Order) error
}

// WhatsAppSender sends customer-facing status messages
type WhatsAppSender interface {
	SendMessage(ctx context.Context, phone, message string) error
}

// Dispatcher fans order events out to the notification channels. Delivery is
// best-effort: every failure is logged and none is returned to the caller, so
// a broken channel can never fail or redeliver an order event.
type Dispatcher struct {
	email    EmailSender
	whatsapp WhatsAppSender
	contact  string
	logger   *zap.Logger
}

// NewDispatcher creates a new dispatcher. contact is the store's support
// number included in rejection messages.
func NewDispatcher(email EmailSender, whatsapp WhatsAppSender, contact string) *Dispatcher {
	return &Dispatcher{
		email:    email,
		whatsapp: whatsapp,
		contact:  contact,
		logger:   util.GetLogger(),
	}
}

// HandleOrderEvent dispatches one order event to its channels
func (d *Dispatcher) HandleOrderEvent(ctx context.Context, event *models.OrderEvent) error {
	order := &event.Order

	switch event.EventType {
	case models.EventTypeOrderCreated:
		d.sendEmail(ctx, order)
	case models.EventTypeOrderApproved:
		d.sendWhatsApp(ctx, order, ApprovedMessage(order))
	case models.EventTypeOrderRejected:
		d.sendWhatsApp(ctx, order, RejectedMessage(order, d.contact))
	}

	return nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, order *models.Order) {
	if d.email == nil {
		return
	}
	if err := d.email.SendNewOrderEmail(ctx, order); err != nil {
		util.NotificationsFailedTotal.WithLabelValues("email").Inc()
		d.logger.Error("Email notification failed",
			zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	util.NotificationsSentTotal.WithLabelValues("email").Inc()
	d.logger.Info("Admin email sent", zap.String("order_id", order.ID))
}

func (d *Dispatcher) sendWhatsApp(ctx context.Context, order *models.Order, message string) {
	if d.whatsapp == nil {
		return
	}
	if err := d.whatsapp.SendMessage(ctx, order.CustomerPhone, message); err != nil {
		util.NotificationsFailedTotal.WithLabelValues("whatsapp").Inc()
		d.logger.Error("WhatsApp notification failed",
			zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	util.NotificationsSentTotal.WithLabelValues("whatsapp").Inc()
	d.logger.Info("WhatsApp message sent",
		zap.String("order_id", order.ID),
		zap.String("status", order.Status))
}
