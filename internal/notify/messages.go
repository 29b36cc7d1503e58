package notify

import (
	"fmt"
	"strings"

	"github.com/abdallah244/store-backend/internal/models"
)

// ApprovedMessage builds the customer WhatsApp text for an approved order
func ApprovedMessage(order *models.Order) string {
	return fmt.Sprintf(
		"Hello %s!\n\nYour order #%s has been APPROVED!\n\nTotal Amount: %d EGP\n\n"+
			"Our team will contact you soon to confirm delivery details.\n\nThank you for your order!",
		order.CustomerName, order.ShortRef(), order.TotalAmount)
}

// RejectedMessage builds the customer WhatsApp text for a rejected order.
// contact is the store's support number, appended when configured.
func RejectedMessage(order *models.Order, contact string) string {
	msg := fmt.Sprintf(
		"Hello %s,\n\nWe're sorry, but your order #%s could not be accepted.\n\n"+
			"Please contact our administration team to determine the reason.",
		order.CustomerName, order.ShortRef())
	if contact != "" {
		msg += fmt.Sprintf("\n\nPhone: %s", contact)
	}
	return msg + "\n\nWe apologize for any inconvenience."
}

// NewOrderEmailBody builds the plain-text admin summary for a new order
func NewOrderEmailBody(order *models.Order, dashboardURL string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "New order #%s received!\n\n", order.ShortRef())
	fmt.Fprintf(&b, "Customer: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "Email: %s\n", order.CustomerEmail)
	fmt.Fprintf(&b, "Phone: %s\n", order.CustomerPhone)
	fmt.Fprintf(&b, "Address: %s\n\n", order.CustomerAddress)

	b.WriteString("Items:\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  - %s x%d @ %d EGP = %d EGP\n",
			item.ProductName, item.Quantity, item.UnitPrice, item.LineTotal)
	}

	fmt.Fprintf(&b, "\nSubtotal: %d EGP\n", order.Subtotal)
	fmt.Fprintf(&b, "Delivery Fee: %d EGP\n", order.DeliveryFee)
	fmt.Fprintf(&b, "Total Amount: %d EGP\n", order.TotalAmount)
	fmt.Fprintf(&b, "Payment Method: %s\n", paymentMethodLabel(order.PaymentMethod))

	if dashboardURL != "" {
		fmt.Fprintf(&b, "\nReview the order: %s/admin/orders\n", dashboardURL)
	}

	return b.String()
}

func paymentMethodLabel(method string) string {
	if method == models.PaymentMethodCOD {
		return "Cash on Delivery"
	}
	return "Online Payment"
}
