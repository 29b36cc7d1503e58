package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WhatsAppClient sends customer messages through the Ultramsg API
type WhatsAppClient struct {
	instanceID string
	token      string
	httpClient *http.Client
	baseURL    string
}

// NewWhatsAppClient creates a new WhatsApp client. Returns nil when the API
// is not configured so the dispatcher skips the channel.
func NewWhatsAppClient(instanceID, token string) *WhatsAppClient {
	if instanceID == "" || token == "" {
		return nil
	}
	return &WhatsAppClient{
		instanceID: instanceID,
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    "https://api.ultramsg.com",
	}
}

type whatsAppRequest struct {
	Token string `json:"token"`
	To    string `json:"to"`
	Body  string `json:"body"`
}

type whatsAppResponse struct {
	Sent json.RawMessage `json:"sent"`
}

// SendMessage sends a chat message to a phone number
func (c *WhatsAppClient) SendMessage(ctx context.Context, phone, message string) error {
	payload, err := json.Marshal(whatsAppRequest{
		Token: c.token,
		To:    FormatPhone(phone),
		Body:  message,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/messages/chat", c.baseURL, c.instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("whatsapp api returned status %d", resp.StatusCode)
	}

	var result whatsAppResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode whatsapp response: %w", err)
	}

	// The API reports sent as either the string "true" or a bare boolean.
	sent := strings.Trim(string(result.Sent), `"`)
	if sent != "true" {
		return fmt.Errorf("whatsapp message not sent: %s", string(result.Sent))
	}
	return nil
}

// FormatPhone normalizes an Egyptian phone number for the API: digits only,
// prefixed with the country code (leading 0 replaced by 20).
func FormatPhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	formatted := digits.String()
	if strings.HasPrefix(formatted, "0") {
		formatted = "2" + formatted
	}
	if !strings.HasPrefix(formatted, "2") {
		formatted = "2" + formatted
	}
	return formatted
}
