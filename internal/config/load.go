package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// BENCHTRACK_DATA_FILE or BENCHTRACK_NOTIFICATIONS_SLACK_TOKEN.
const EnvPrefix = "BENCHTRACK"

// DefaultConfigName is the file searched for in the working directory.
const DefaultConfigName = "benchtrack"

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("data_file", "dev/bench/data.js")
	viper.SetDefault("key", "Benchmark")
	viper.SetDefault("tool", "go")
	viper.SetDefault("repo_url", "")
	viper.SetDefault("remote", "origin")
	viper.SetDefault("username", "")
	viper.SetDefault("alert_threshold", "200%")
	viper.SetDefault("fail_threshold", "")
	viper.SetDefault("fail_on_alert", false)
	viper.SetDefault("max_items", 0)
	viper.SetDefault("verbose", false)
	viper.SetDefault("log_file", "")

	viper.SetDefault("bench.pattern", ".")
	viper.SetDefault("bench.count", 1)
	viper.SetDefault("bench.benchmem", true)
	viper.SetDefault("bench.timeout", "30m")

	viper.SetDefault("archive.enabled", false)
	viper.SetDefault("archive.type", "sqlite")
	viper.SetDefault("archive.dsn", ".benchtrack.db")

	// Notification Defaults
	slackEnabled := os.Getenv("SLACK_WEBHOOK_URL") != "" || os.Getenv("SLACK_BOT_USER_TOKEN") != ""
	viper.SetDefault("notifications.slack.enabled", slackEnabled)
	viper.SetDefault("notifications.slack.webhook_url", os.Getenv("SLACK_WEBHOOK_URL"))
	viper.SetDefault("notifications.slack.token", os.Getenv("SLACK_BOT_USER_TOKEN"))
	viper.SetDefault("notifications.slack.channel", "#benchmarks")
	viper.SetDefault("notifications.discord.enabled", os.Getenv("DISCORD_WEBHOOK_URL") != "")
	viper.SetDefault("notifications.discord.webhook_url", os.Getenv("DISCORD_WEBHOOK_URL"))

	viper.SetDefault("serve.port", 8080)
	viper.SetDefault("serve.host", "127.0.0.1")
}

// Load initializes the configuration from file and environment variables.
// A missing config file is not an error unless cfgFile names one.
func Load(cfgFile string) error {
	// explicit .env loading, a missing .env is fine
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("failed to load .env", "error", err)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(DefaultConfigName)
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	SetDefaults()

	// GITHUB_ACTOR fills the username when running in Actions
	if os.Getenv(EnvPrefix+"_USERNAME") == "" && os.Getenv("GITHUB_ACTOR") != "" {
		viper.SetDefault("username", os.Getenv("GITHUB_ACTOR"))
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	slog.Debug("using config file", "path", viper.ConfigFileUsed())
	return nil
}
