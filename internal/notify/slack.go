package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

// SlackNotifier posts messages to Slack, either through an incoming
// webhook or through chat.postMessage with a bot token.
type SlackNotifier struct {
	WebhookURL string
	Token      string
	Channel    string
	Client     *http.Client

	// APIURL overrides the Web API base URL (with trailing slash).
	APIURL string
}

// NewSlackWebhookNotifier creates a SlackNotifier bound to an incoming webhook.
func NewSlackWebhookNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// NewSlackBotNotifier creates a SlackNotifier that posts as a bot user.
func NewSlackBotNotifier(token, channel string) *SlackNotifier {
	return &SlackNotifier{
		Token:   token,
		Channel: channel,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends message to the webhook when one is configured, otherwise to
// the bot channel.
func (s *SlackNotifier) Notify(ctx context.Context, message string) error {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	if s.WebhookURL != "" {
		msg := &slack.WebhookMessage{Text: message}
		if err := slack.PostWebhookCustomHTTPContext(ctx, s.WebhookURL, client, msg); err != nil {
			return fmt.Errorf("failed to send slack webhook: %w", err)
		}
		return nil
	}

	if s.Token == "" {
		return fmt.Errorf("slack webhook URL or token is not configured")
	}

	channel := s.Channel
	if channel == "" {
		channel = "#general"
	}

	opts := []slack.Option{slack.OptionHTTPClient(client)}
	if s.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(s.APIURL))
	}
	api := slack.New(s.Token, opts...)

	if _, _, err := api.PostMessageContext(ctx, channel, slack.MsgOptionText(message, false)); err != nil {
		return fmt.Errorf("failed to post slack message: %w", err)
	}
	return nil
}
