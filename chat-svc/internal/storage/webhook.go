package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/service"
)

// WebhookChannel POSTs each order update as JSON to a configured endpoint,
// typically the staff dashboard bridge.
type WebhookChannel struct {
	URL    string
	Client *http.Client
}

func NewWebhookChannel(url string, client *http.Client) *WebhookChannel {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookChannel{URL: url, Client: client}
}

var _ service.NotificationChannel = (*WebhookChannel)(nil)

func (c *WebhookChannel) Name() string { return "webhook" }

func (c *WebhookChannel) Send(ctx context.Context, update domain.OrderUpdate) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
