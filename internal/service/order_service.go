package service

import (
	"context"
	"fmt"

	"github.com/abdallah244/store-backend/internal/models"
	"github.com/abdallah244/store-backend/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderStore persists orders
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderForAccount(ctx context.Context, accountID, orderID string) (*models.Order, error)
	GetOrdersByAccountID(ctx context.Context, accountID string) ([]models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID, status, notes string) error
	DeleteOrder(ctx context.Context, orderID string) error
}

// AccountStore resolves account identities (read-only collaborator)
type AccountStore interface {
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
}

// CatalogStore exposes the product stock operations the workflow needs
type CatalogStore interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	DeductStock(ctx context.Context, productID string, qty int) (bool, error)
	RestoreStock(ctx context.Context, productID string, qty int) error
}

// EventPublisher publishes order lifecycle events (best-effort)
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, order *models.Order) error
}

// OrderService orchestrates the order workflow
type OrderService struct {
	orders    OrderStore
	accounts  AccountStore
	catalog   CatalogStore
	publisher EventPublisher
	fees      FeeSource
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orders OrderStore,
	accounts AccountStore,
	catalog CatalogStore,
	publisher EventPublisher,
	fees FeeSource,
) *OrderService {
	return &OrderService{
		orders:    orders,
		accounts:  accounts,
		catalog:   catalog,
		publisher: publisher,
		fees:      fees,
		logger:    util.GetLogger(),
	}
}

// CreateOrderRequest represents the cart payload submitted by a customer
type CreateOrderRequest struct {
	Items         []CartItemRequest `json:"items"`
	DeliveryFee   *int64            `json:"delivery_fee,omitempty"`
	PaymentMethod string            `json:"payment_method"`
}

// Payload sanity limits. Anything beyond them is a malformed or hostile
// cart, and keeping each factor bounded keeps the int64 amount arithmetic
// far away from overflow.
const (
	maxOrderItems   = 200
	maxItemQuantity = 1000
	maxUnitPrice    = 100_000_000
)

// CartItemRequest represents one cart line. The name, image, unit price and
// size/color selection are snapshotted onto the order as submitted; the
// aggregate amounts are recomputed server-side.
type CartItemRequest struct {
	ProductID     string `json:"product_id" binding:"required"`
	ProductName   string `json:"product_name"`
	ProductImage  string `json:"product_image"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	UnitPrice     int64  `json:"unit_price"`
	SelectedSize  string `json:"selected_size"`
	SelectedColor string `json:"selected_color"`
}

// CreateOrder places a new order in status pending. Stock is not checked
// here; it is reserved only when an admin approves the order.
func (s *OrderService) CreateOrder(ctx context.Context, accountID string, req *CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	account, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("account_not_found").Inc()
		return nil, err
	}

	if !account.AccountCompleted {
		util.OrdersFailedTotal.WithLabelValues("profile_incomplete").Inc()
		return nil, models.ErrProfileIncomplete
	}

	if len(req.Items) == 0 {
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, models.ErrEmptyCart
	}
	if len(req.Items) > maxOrderItems {
		return nil, fmt.Errorf("%w: cart must not exceed %d items", models.ErrValidation, maxOrderItems)
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCOD
	}
	if !models.ValidPaymentMethod(paymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", models.ErrValidation, req.PaymentMethod)
	}

	deliveryFee := s.fees.DefaultDeliveryFee(ctx)
	if req.DeliveryFee != nil {
		if *req.DeliveryFee < 0 {
			return nil, fmt.Errorf("%w: delivery fee must not be negative", models.ErrValidation)
		}
		deliveryFee = *req.DeliveryFee
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	var subtotal int64
	for _, ci := range req.Items {
		if ci.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", models.ErrValidation)
		}
		if ci.Quantity > maxItemQuantity {
			return nil, fmt.Errorf("%w: quantity must not exceed %d", models.ErrValidation, maxItemQuantity)
		}
		if ci.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: unit price must not be negative", models.ErrValidation)
		}
		if ci.UnitPrice > maxUnitPrice {
			return nil, fmt.Errorf("%w: unit price must not exceed %d", models.ErrValidation, maxUnitPrice)
		}

		lineTotal := ci.UnitPrice * int64(ci.Quantity)
		subtotal += lineTotal

		items = append(items, models.OrderItem{
			ProductID:     ci.ProductID,
			ProductName:   ci.ProductName,
			ProductImage:  ci.ProductImage,
			Quantity:      ci.Quantity,
			UnitPrice:     ci.UnitPrice,
			SelectedSize:  ci.SelectedSize,
			SelectedColor: ci.SelectedColor,
			LineTotal:     lineTotal,
		})
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		AccountID:       account.ID,
		CustomerName:    account.Name,
		CustomerEmail:   account.Email,
		CustomerPhone:   account.Phone,
		CustomerAddress: account.Address,
		Items:           items,
		Subtotal:        subtotal,
		DeliveryFee:     deliveryFee,
		TotalAmount:     subtotal + deliveryFee,
		PaymentMethod:   paymentMethod,
		Status:          models.OrderStatusPending,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("account_id", account.ID),
		zap.Int64("total_amount", order.TotalAmount))

	s.publish(ctx, models.EventTypeOrderCreated, order)

	return order, nil
}

// ListOrders retrieves an account's orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, accountID string) ([]models.Order, error) {
	return s.orders.GetOrdersByAccountID(ctx, accountID)
}

// ListAllOrders retrieves every order; the actor must be an admin
func (s *OrderService) ListAllOrders(ctx context.Context, actorID string) ([]models.Order, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	return s.orders.GetAllOrders(ctx)
}

// CancelOrder cancels a pending order on behalf of its owner
func (s *OrderService) CancelOrder(ctx context.Context, accountID, orderID string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelOrder")
	defer span.End()

	order, err := s.orders.GetOrderForAccount(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusPending {
		return nil, models.ErrNotPending
	}

	if err := s.orders.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled, ""); err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	order.Status = models.OrderStatusCancelled

	util.OrdersCancelledTotal.Inc()
	s.logger.Info("Order cancelled",
		zap.String("order_id", order.ID),
		zap.String("account_id", accountID))

	return order, nil
}

// DeleteOrder removes an order; the actor must be an admin
func (s *OrderService) DeleteOrder(ctx context.Context, actorID, orderID string) error {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return err
	}

	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		return err
	}

	s.logger.Info("Order deleted",
		zap.String("order_id", orderID),
		zap.String("admin_id", actorID))
	return nil
}

func (s *OrderService) requireAdmin(ctx context.Context, actorID string) error {
	account, err := s.accounts.GetAccountByID(ctx, actorID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.ErrForbidden
		}
		return err
	}
	if !account.IsAdmin() {
		s.logger.Warn("Non-admin access attempt", zap.String("account_id", actorID))
		return models.ErrForbidden
	}
	return nil
}

// publish sends a lifecycle event. Failures are logged and swallowed: the
// order state is already committed and notification delivery is best-effort.
func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, eventType, order); err != nil {
		s.logger.Error("Failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", order.ID),
			zap.Error(err))
	}
}
