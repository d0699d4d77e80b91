package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// discordLimit is the maximum content length Discord accepts per message.
const discordLimit = 2000

// DiscordNotifier sends notifications to a Discord webhook.
type DiscordNotifier struct {
	WebhookURL string
	Client     *http.Client
}

// NewDiscordNotifier creates a new DiscordNotifier.
func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends a message to the configured Discord webhook.
func (n *DiscordNotifier) Notify(ctx context.Context, message string) error {
	if n.WebhookURL == "" {
		return fmt.Errorf("discord webhook URL is not configured")
	}

	if r := []rune(message); len(r) > discordLimit {
		message = string(r[:discordLimit-3]) + "..."
	}

	body, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send discord notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord notification failed with status: %d", resp.StatusCode)
	}

	return nil
}
