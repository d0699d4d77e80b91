package config

import (
	"time"

	"github.com/spf13/viper"

	"benchtrack/internal/benchmark"
	"benchtrack/internal/db"
)

// Config is a typed snapshot of the loaded settings.
type Config struct {
	DataFile       string
	Key            string
	Tool           benchmark.Tool
	RepoURL        string
	Remote         string
	Username       string
	AlertThreshold benchmark.Threshold
	FailThreshold  benchmark.Threshold
	FailOnAlert    bool
	MaxItems       int
	Verbose        bool
	LogFile        string

	BenchPattern string
	BenchCount   int
	BenchMem     bool
	BenchTimeout time.Duration

	ArchiveEnabled bool
	Archive        db.StoreConfig

	Slack   SlackConfig
	Discord DiscordConfig

	ServeHost string
	ServePort int
}

// SlackConfig holds the Slack delivery settings. WebhookURL wins over Token.
type SlackConfig struct {
	Enabled    bool
	WebhookURL string
	Token      string
	Channel    string
}

type DiscordConfig struct {
	Enabled    bool
	WebhookURL string
}

// Get builds a Config from viper. Call ValidateConfig first; invalid values
// fall back to their defaults here.
func Get() Config {
	tool, err := benchmark.ParseTool(viper.GetString("tool"))
	if err != nil {
		tool = benchmark.ToolGo
	}
	alert, err := benchmark.ParseThreshold(viper.GetString("alert_threshold"))
	if err != nil {
		alert = benchmark.DefaultThreshold
	}
	fail := alert
	if s := viper.GetString("fail_threshold"); s != "" {
		if t, err := benchmark.ParseThreshold(s); err == nil {
			fail = t
		}
	}

	timeout := getDuration("bench.timeout")
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}

	return Config{
		DataFile:       viper.GetString("data_file"),
		Key:            viper.GetString("key"),
		Tool:           tool,
		RepoURL:        viper.GetString("repo_url"),
		Remote:         viper.GetString("remote"),
		Username:       viper.GetString("username"),
		AlertThreshold: alert,
		FailThreshold:  fail,
		FailOnAlert:    viper.GetBool("fail_on_alert"),
		MaxItems:       viper.GetInt("max_items"),
		Verbose:        viper.GetBool("verbose"),
		LogFile:        viper.GetString("log_file"),

		BenchPattern: viper.GetString("bench.pattern"),
		BenchCount:   viper.GetInt("bench.count"),
		BenchMem:     viper.GetBool("bench.benchmem"),
		BenchTimeout: timeout,

		ArchiveEnabled: viper.GetBool("archive.enabled"),
		Archive: db.StoreConfig{
			Type:             viper.GetString("archive.type"),
			ConnectionString: viper.GetString("archive.dsn"),
		},

		Slack: SlackConfig{
			Enabled:    viper.GetBool("notifications.slack.enabled"),
			WebhookURL: viper.GetString("notifications.slack.webhook_url"),
			Token:      viper.GetString("notifications.slack.token"),
			Channel:    viper.GetString("notifications.slack.channel"),
		},
		Discord: DiscordConfig{
			Enabled:    viper.GetBool("notifications.discord.enabled"),
			WebhookURL: viper.GetString("notifications.discord.webhook_url"),
		},

		ServeHost: viper.GetString("serve.host"),
		ServePort: viper.GetInt("serve.port"),
	}
}

// getDuration reads a duration string ("10m") or a bare number of seconds.
func getDuration(key string) time.Duration {
	switch v := viper.Get(key).(type) {
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	}
	return viper.GetDuration(key)
}
