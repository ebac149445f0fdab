package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// validateConfig checks all config values for validity.
// Returns nil if valid, or joined errors for all validation failures.
func validateConfig(cfg *Config) error {
	var errs []error

	// API.BaseURL must be an absolute http(s) URL
	if u, err := url.Parse(cfg.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, &ValidationError{
			Field:   "api.base_url",
			Value:   cfg.API.BaseURL,
			Message: "must be an absolute http or https URL",
		})
	}

	durations := []struct {
		field    string
		value    string
		positive bool
	}{
		{"api.timeout", cfg.API.Timeout, false},
		{"cache.metadata_ttl", cfg.Cache.MetadataTTL, false},
		{"refresh.estimate_delay", cfg.Refresh.EstimateDelay, false},
		{"refresh.poll_interval", cfg.Refresh.PollInterval, true},
		{"refresh.badge_interval", cfg.Refresh.BadgeInterval, true},
		{"wizard.discovery_poll_interval", cfg.Wizard.DiscoveryPollInterval, true},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(d.value)
		if err != nil {
			errs = append(errs, &ValidationError{
				Field:   d.field,
				Value:   d.value,
				Message: fmt.Sprintf("invalid duration: %v", err),
			})
			continue
		}
		if v < 0 || (d.positive && v == 0) {
			errs = append(errs, &ValidationError{
				Field:   d.field,
				Value:   d.value,
				Message: "must be positive",
			})
		}
	}

	if cfg.StateDB == "" {
		errs = append(errs, &ValidationError{
			Field:   "state_db",
			Value:   cfg.StateDB,
			Message: "must not be empty",
		})
	}

	// LogLevel must be one of: debug, info, warn, error (case-sensitive)
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, &ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: "must be one of: debug, info, warn, error",
		})
	}

	for i, backend := range cfg.Notify.Backends {
		switch backend {
		case "terminal":
		case "slack":
			if cfg.Notify.SlackWebhook == "" {
				errs = append(errs, &ValidationError{
					Field:   fmt.Sprintf("notify.backends[%d]", i),
					Value:   backend,
					Message: "slack backend requires notify.slack_webhook",
				})
			}
		case "webhook":
			if cfg.Notify.WebhookURL == "" {
				errs = append(errs, &ValidationError{
					Field:   fmt.Sprintf("notify.backends[%d]", i),
					Value:   backend,
					Message: "webhook backend requires notify.webhook_url",
				})
			}
		default:
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("notify.backends[%d]", i),
				Value:   backend,
				Message: "must be one of: terminal, slack, webhook",
			})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
