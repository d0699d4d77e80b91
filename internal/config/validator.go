package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"benchtrack/internal/benchmark"
)

// ValidateConfig validates configuration values and returns an error if any are invalid.
// This function should be called after viper has loaded the configuration.
func ValidateConfig() error {
	var errors []string

	if viper.GetString("data_file") == "" {
		errors = append(errors, "data_file must not be empty")
	}
	if viper.GetString("key") == "" {
		errors = append(errors, "key must not be empty")
	}

	if _, err := benchmark.ParseTool(viper.GetString("tool")); err != nil {
		errors = append(errors, err.Error())
	}

	if _, err := benchmark.ParseThreshold(viper.GetString("alert_threshold")); err != nil {
		errors = append(errors, fmt.Sprintf("alert_threshold: %v", err))
	}
	if s := viper.GetString("fail_threshold"); s != "" {
		if _, err := benchmark.ParseThreshold(s); err != nil {
			errors = append(errors, fmt.Sprintf("fail_threshold: %v", err))
		}
	}

	if n := viper.GetInt("max_items"); n < 0 {
		errors = append(errors, fmt.Sprintf("max_items must not be negative, got: %d", n))
	}
	if n := viper.GetInt("bench.count"); n < 0 {
		errors = append(errors, fmt.Sprintf("bench.count must not be negative, got: %d", n))
	}

	// durations accept "10m" or a bare number of seconds
	if viper.IsSet("bench.timeout") {
		if timeout := getDuration("bench.timeout"); timeout <= 0 {
			errors = append(errors, fmt.Sprintf("bench.timeout must be positive, got: %v", timeout))
		}
	}

	switch strings.ToLower(viper.GetString("archive.type")) {
	case "", "sqlite", "sqlite3", "postgres", "postgresql":
	default:
		errors = append(errors, fmt.Sprintf("archive.type must be sqlite or postgres, got: %s", viper.GetString("archive.type")))
	}

	if viper.GetBool("notifications.slack.enabled") {
		if viper.GetString("notifications.slack.webhook_url") == "" && viper.GetString("notifications.slack.token") == "" {
			errors = append(errors, "notifications.slack requires webhook_url or token")
		}
	}

	if viper.GetBool("notifications.discord.enabled") && viper.GetString("notifications.discord.webhook_url") == "" {
		errors = append(errors, "notifications.discord requires webhook_url")
	}

	// Validate port numbers (if set, must be in valid range 1-65535)
	if viper.IsSet("serve.port") {
		port := viper.GetInt("serve.port")
		if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("serve.port must be between 1 and 65535, got: %d", port))
		}
	}

	// If there are any errors, return them
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(errors, "\n  "))
	}

	return nil
}
