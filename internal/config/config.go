package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the zenem client.
// It is immutable after creation via Load().
type Config struct {
	// API controls how the backend is reached
	API APIConfig `yaml:"api"`

	// Cache controls the in-process metadata cache
	Cache CacheConfig `yaml:"cache"`

	// Refresh controls refresh orchestration timings
	Refresh RefreshConfig `yaml:"refresh"`

	// Wizard controls the connector job wizard
	Wizard WizardConfig `yaml:"wizard"`

	// Notify selects where toast notifications are delivered
	Notify NotifyConfig `yaml:"notify"`

	// StateDB is the path of the local token/user store
	StateDB string `yaml:"state_db"`

	// LogLevel controls log verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// APIConfig identifies the REST backend.
type APIConfig struct {
	// BaseURL is the backend root, e.g. http://localhost:8080/api
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a single HTTP request ("0" disables the bound)
	Timeout string `yaml:"timeout"`
}

// CacheConfig controls the metadata cache for roles and leave types.
type CacheConfig struct {
	// MetadataTTL is how long cached metadata stays fresh
	MetadataTTL string `yaml:"metadata_ttl"`
}

// RefreshConfig controls the refresh controller.
type RefreshConfig struct {
	// EstimateDelay is the debounce applied to selection changes before estimating
	EstimateDelay string `yaml:"estimate_delay"`

	// PollInterval is the status polling period used when streaming fails
	PollInterval string `yaml:"poll_interval"`

	// BadgeInterval is how often the active-operation count is refreshed
	BadgeInterval string `yaml:"badge_interval"`
}

// WizardConfig controls the connector job wizard.
type WizardConfig struct {
	// DiscoveryPollInterval is how often discovery status is polled
	DiscoveryPollInterval string `yaml:"discovery_poll_interval"`
}

// NotifyConfig selects notification backends.
type NotifyConfig struct {
	// Backends lists notifier names: terminal, slack, webhook
	Backends []string `yaml:"backends"`

	// SlackWebhook is the incoming-webhook URL for the slack backend
	SlackWebhook string `yaml:"slack_webhook,omitempty"`

	// WebhookURL is the endpoint for the generic webhook backend
	WebhookURL string `yaml:"webhook_url,omitempty"`
}

// Durations is the parsed form of every duration setting.
type Durations struct {
	APITimeout            time.Duration
	MetadataTTL           time.Duration
	EstimateDelay         time.Duration
	PollInterval          time.Duration
	BadgeInterval         time.Duration
	DiscoveryPollInterval time.Duration
}

// Durations parses all duration settings. Load has already validated them,
// so errors only occur for hand-built configs.
func (c *Config) Durations() (Durations, error) {
	var d Durations
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"api.timeout", c.API.Timeout, &d.APITimeout},
		{"cache.metadata_ttl", c.Cache.MetadataTTL, &d.MetadataTTL},
		{"refresh.estimate_delay", c.Refresh.EstimateDelay, &d.EstimateDelay},
		{"refresh.poll_interval", c.Refresh.PollInterval, &d.PollInterval},
		{"refresh.badge_interval", c.Refresh.BadgeInterval, &d.BadgeInterval},
		{"wizard.discovery_poll_interval", c.Wizard.DiscoveryPollInterval, &d.DiscoveryPollInterval},
	}
	for _, f := range fields {
		v, err := time.ParseDuration(f.value)
		if err != nil {
			return Durations{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return d, nil
}

// DefaultPath returns ~/.zenem/config.yaml, or a relative path when the
// home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".zenem", "config.yaml")
	}
	return filepath.Join(home, ".zenem", "config.yaml")
}

// Load reads configuration from path.
// It applies defaults, then file values, then environment overrides,
// then validates. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case os.IsNotExist(err):
			// defaults
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	cfg.StateDB = expandHome(cfg.StateDB)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// expandHome expands a leading ~ in path.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
