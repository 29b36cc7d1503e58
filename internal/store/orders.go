package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/abdallah244/store-backend/internal/models"
)

// CreateOrder persists an order and its line items in one transaction
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, account_id, customer_name, customer_email, customer_phone,
			customer_address, subtotal, delivery_fee, total_amount, payment_method, status, admin_notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	if err := tx.QueryRowxContext(ctx, query,
		order.ID, order.AccountID, order.CustomerName, order.CustomerEmail,
		order.CustomerPhone, order.CustomerAddress, order.Subtotal, order.DeliveryFee,
		order.TotalAmount, order.PaymentMethod, order.Status, order.AdminNotes,
	).Scan(&order.CreatedAt, &order.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, product_name, product_image,
			quantity, unit_price, selected_size, selected_color, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		if err := tx.QueryRowxContext(ctx, itemQuery,
			item.OrderID, item.ProductID, item.ProductName, item.ProductImage,
			item.Quantity, item.UnitPrice, item.SelectedSize, item.SelectedColor,
			item.LineTotal,
		).Scan(&item.ID); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

// GetOrderByID retrieves an order with its line items
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderForAccount retrieves an order scoped to its owning account
func (s *Store) GetOrderForAccount(ctx context.Context, accountID, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 AND account_id = $2", orderID, accountID)
	if err == sql.ErrNoRows {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrdersByAccountID retrieves an account's orders, newest first
func (s *Store) GetOrdersByAccountID(ctx context.Context, accountID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE account_id = $1 ORDER BY created_at DESC", accountID)
	if err != nil {
		return nil, err
	}
	return s.attachItemsToAll(ctx, orders)
}

// GetAllOrders retrieves every order, newest first
func (s *Store) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, "SELECT * FROM orders ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	return s.attachItemsToAll(ctx, orders)
}

// UpdateOrderStatus updates an order's status and, when notes is non-empty,
// its admin notes
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status, notes string) error {
	var res sql.Result
	var err error
	if notes != "" {
		res, err = s.db.ExecContext(ctx,
			"UPDATE orders SET status = $1, admin_notes = $2, updated_at = NOW() WHERE id = $3",
			status, notes, orderID)
	} else {
		res, err = s.db.ExecContext(ctx,
			"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2",
			status, orderID)
	}
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

// DeleteOrder removes an order and its items
func (s *Store) DeleteOrder(ctx context.Context, orderID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", orderID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrOrderNotFound
	}
	return nil
}

// GetOrderItemsByOrderID retrieves all items for an order
func (s *Store) GetOrderItemsByOrderID(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM order_items WHERE order_id = $1 ORDER BY id", orderID)
	return items, err
}

func (s *Store) attachItems(ctx context.Context, order *models.Order) error {
	items, err := s.GetOrderItemsByOrderID(ctx, order.ID)
	if err != nil {
		return err
	}
	order.Items = items
	return nil
}

func (s *Store) attachItemsToAll(ctx context.Context, orders []models.Order) ([]models.Order, error) {
	for i := range orders {
		if err := s.attachItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}
