package service

import (
	"context"
	"fmt"
	"time"

	"github.com/abdallah244/store-backend/internal/models"
	"github.com/abdallah244/store-backend/internal/util"

	"go.uber.org/zap"
)

// transitions is the legal-edge table for admin status changes. A status
// always permits itself so admins can reapply notes without moving the order.
var transitions = map[string][]string{
	models.OrderStatusPending: {
		models.OrderStatusApproved,
		models.OrderStatusRejected,
		models.OrderStatusCancelled,
		models.OrderStatusCompleted,
	},
	models.OrderStatusApproved: {
		models.OrderStatusCompleted,
		models.OrderStatusCancelled,
	},
	models.OrderStatusRejected:  {},
	models.OrderStatusCompleted: {},
	models.OrderStatusCancelled: {},
}

// canTransition reports whether an order may move from one status to another
func canTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// TransitionOrder applies an admin status change. Approving a pending order
// deducts stock for every line item first; the deduction is all-or-nothing.
// Moving an already-approved order never touches stock again.
func (s *OrderService) TransitionOrder(ctx context.Context, actorID, orderID, target, notes string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.TransitionOrder")
	defer span.End()

	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	if !models.ValidStatus(target) {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, target)
	}

	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !canTransition(order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, order.Status, target)
	}

	statusChanged := order.Status != target

	deducted := false
	if target == models.OrderStatusApproved && order.Status != models.OrderStatusApproved {
		if err := s.deductStockForOrder(ctx, order); err != nil {
			return nil, err
		}
		deducted = true
	}

	if err := s.orders.UpdateOrderStatus(ctx, order.ID, target, notes); err != nil {
		// The order is still pending, so the approval must leave no trace:
		// give back the stock it just took.
		if deducted {
			s.compensateDeductions(ctx, order.ID, order.Items)
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = target
	if notes != "" {
		order.AdminNotes = notes
	}
	order.UpdatedAt = time.Now()

	s.logger.Info("Order status updated",
		zap.String("order_id", order.ID),
		zap.String("status", target),
		zap.String("admin_id", actorID))

	if statusChanged {
		switch target {
		case models.OrderStatusApproved:
			util.OrdersApprovedTotal.Inc()
			s.publish(ctx, models.EventTypeOrderApproved, order)
		case models.OrderStatusRejected:
			util.OrdersRejectedTotal.Inc()
			s.publish(ctx, models.EventTypeOrderRejected, order)
		}
	}

	return order, nil
}

// deductStockForOrder checks every line item against current stock, then
// applies one conditional decrement per item. The pre-check exists so a
// rejection can report every short item; the decrement itself re-checks
// atomically, and any later failure rolls back the decrements already made.
func (s *OrderService) deductStockForOrder(ctx context.Context, order *models.Order) error {
	start := time.Now()
	defer func() {
		util.StockDeductionLatency.Observe(time.Since(start).Seconds())
	}()

	ids := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.catalog.GetProductsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check stock for order %s: %w", order.ID, err)
	}
	byID := make(map[string]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var shortfalls []models.StockShortfall
	for _, item := range order.Items {
		product, found := byID[item.ProductID]
		if !found {
			// Product deleted since the cart was placed.
			shortfalls = append(shortfalls, models.StockShortfall{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Required:    item.Quantity,
				Available:   0,
			})
			continue
		}

		if product.Stock < item.Quantity {
			shortfalls = append(shortfalls, models.StockShortfall{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Required:    item.Quantity,
				Available:   product.Stock,
			})
		}
	}

	if len(shortfalls) > 0 {
		util.StockDeductionsFailed.WithLabelValues("insufficient_stock").Inc()
		return &models.InsufficientStockError{Shortfalls: shortfalls}
	}

	deducted := make([]models.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		ok, err := s.catalog.DeductStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			s.compensateDeductions(ctx, order.ID, deducted)
			util.StockDeductionsFailed.WithLabelValues("error").Inc()
			return fmt.Errorf("failed to deduct stock for product %s: %w", item.ProductID, err)
		}

		if !ok {
			// A concurrent approval won the remaining stock between the
			// pre-check and this decrement.
			s.compensateDeductions(ctx, order.ID, deducted)
			util.StockDeductionsFailed.WithLabelValues("insufficient_stock").Inc()

			available := 0
			if product, perr := s.catalog.GetProductByID(ctx, item.ProductID); perr == nil {
				available = product.Stock
			}
			return &models.InsufficientStockError{Shortfalls: []models.StockShortfall{{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Required:    item.Quantity,
				Available:   available,
			}}}
		}

		deducted = append(deducted, item)
	}

	util.StockDeductionsTotal.Inc()
	return nil
}

// compensateDeductions re-increments stock for items already deducted
func (s *OrderService) compensateDeductions(ctx context.Context, orderID string, deducted []models.OrderItem) {
	for _, item := range deducted {
		if err := s.catalog.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("Failed to compensate stock deduction",
				zap.String("order_id", orderID),
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}
}
