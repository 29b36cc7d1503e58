package models

import "time"

// Account represents a storefront customer or admin
type Account struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	Phone            string    `db:"phone" json:"phone"`
	Address          string    `db:"address" json:"address"`
	Role             string    `db:"role" json:"role"`
	AccountCompleted bool      `db:"account_completed" json:"account_completed"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Account roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IsAdmin reports whether the account may perform admin actions
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Product represents a catalog product; the order workflow only touches its stock
type Product struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Image     string    `db:"image" json:"image"`
	Price     int64     `db:"price" json:"price"`
	Discount  int       `db:"discount" json:"discount"`
	Stock     int       `db:"stock" json:"stock"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Order represents a customer order. Contact fields are snapshotted from the
// account at creation time and never updated afterwards.
type Order struct {
	ID              string      `db:"id" json:"id"`
	AccountID       string      `db:"account_id" json:"account_id"`
	CustomerName    string      `db:"customer_name" json:"customer_name"`
	CustomerEmail   string      `db:"customer_email" json:"customer_email"`
	CustomerPhone   string      `db:"customer_phone" json:"customer_phone"`
	CustomerAddress string      `db:"customer_address" json:"customer_address"`
	Items           []OrderItem `db:"-" json:"items"`
	Subtotal        int64       `db:"subtotal" json:"subtotal"`
	DeliveryFee     int64       `db:"delivery_fee" json:"delivery_fee"`
	TotalAmount     int64       `db:"total_amount" json:"total_amount"`
	PaymentMethod   string      `db:"payment_method" json:"payment_method"`
	Status          string      `db:"status" json:"status"`
	AdminNotes      string      `db:"admin_notes" json:"admin_notes"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at" json:"updated_at"`
}

// ShortRef returns the trailing fragment of the order id used in
// customer-facing messages.
func (o *Order) ShortRef() string {
	if len(o.ID) <= 8 {
		return o.ID
	}
	return o.ID[len(o.ID)-8:]
}

// OrderItem represents a line item snapshotted from the cart
type OrderItem struct {
	ID            int64  `db:"id" json:"id"`
	OrderID       string `db:"order_id" json:"order_id"`
	ProductID     string `db:"product_id" json:"product_id"`
	ProductName   string `db:"product_name" json:"product_name"`
	ProductImage  string `db:"product_image" json:"product_image"`
	Quantity      int    `db:"quantity" json:"quantity"`
	UnitPrice     int64  `db:"unit_price" json:"unit_price"`
	SelectedSize  string `db:"selected_size" json:"selected_size"`
	SelectedColor string `db:"selected_color" json:"selected_color"`
	LineTotal     int64  `db:"line_total" json:"line_total"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusApproved  = "approved"
	OrderStatusRejected  = "rejected"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Payment methods
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
)

// ValidStatus reports whether s is a known order status
func ValidStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// ValidPaymentMethod reports whether m is a known payment method
func ValidPaymentMethod(m string) bool {
	return m == PaymentMethodCOD || m == PaymentMethodOnline
}
