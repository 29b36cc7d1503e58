package models

import (
	"errors"
	"fmt"
	"strings"
)

// Business-rule errors returned by the order workflow. Handlers map these to
// HTTP statuses; anything not in this set is treated as a server error.
var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrProfileIncomplete = errors.New("please complete your profile before placing an order")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrForbidden         = errors.New("access denied - admin only")
	ErrNotPending        = errors.New("only pending orders can be cancelled")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("invalid request")
)

// StockShortfall describes one line item that cannot be fulfilled
type StockShortfall struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Required    int    `json:"required"`
	Available   int    `json:"available"`
}

// InsufficientStockError is returned when an approval fails the stock check.
// It carries every short item, not just the first.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s: need %d, have %d", s.ProductName, s.Required, s.Available))
	}
	return "stock not available. " + strings.Join(parts, ", ")
}

// IsNotFound reports whether err is one of the not-found errors
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrProductNotFound)
}
