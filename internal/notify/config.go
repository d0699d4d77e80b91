package notify

import "benchtrack/internal/config"

// NewFromConfig builds a Manager from the notification settings. It
// returns nil when no provider is enabled.
func NewFromConfig(cfg config.Config) *Manager {
	m := NewManager()

	if s := cfg.Slack; s.Enabled {
		switch {
		case s.WebhookURL != "":
			m.Add("slack", NewSlackWebhookNotifier(s.WebhookURL))
		case s.Token != "":
			m.Add("slack", NewSlackBotNotifier(s.Token, s.Channel))
		}
	}

	if d := cfg.Discord; d.Enabled && d.WebhookURL != "" {
		m.Add("discord", NewDiscordNotifier(d.WebhookURL))
	}

	if m.Len() == 0 {
		return nil
	}
	return m
}
