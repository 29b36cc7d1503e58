package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/abdallah244/store-backend/internal/models"
)

// EmailClient sends admin notifications over SMTP
type EmailClient struct {
	host       string
	port       string
	user       string
	password   string
	adminEmail string
	frontend   string
}

// NewEmailClient creates a new email client. Returns nil when credentials are
// not configured so the dispatcher skips the channel.
func NewEmailClient(host, port, user, password, adminEmail, frontendURL string) *EmailClient {
	if user == "" || password == "" || adminEmail == "" {
		return nil
	}
	return &EmailClient{
		host:       host,
		port:       port,
		user:       user,
		password:   password,
		adminEmail: adminEmail,
		frontend:   frontendURL,
	}
}

// SendNewOrderEmail sends the new-order summary to the admin address
func (c *EmailClient) SendNewOrderEmail(ctx context.Context, order *models.Order) error {
	subject := fmt.Sprintf("New Order from %s - Order #%s", order.CustomerName, order.ShortRef())
	body := NewOrderEmailBody(order, c.frontend)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		c.user, c.adminEmail, subject, body))

	done := make(chan error, 1)
	go func() {
		auth := smtp.PlainAuth("", c.user, c.password, c.host)
		addr := fmt.Sprintf("%s:%s", c.host, c.port)
		done <- smtp.SendMail(addr, auth, c.user, []string{c.adminEmail}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
