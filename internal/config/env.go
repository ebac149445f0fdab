package config

import "os"

// envOverrides maps environment variables to config field setters.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "ZENEM_API_BASE_URL",
		apply: func(c *Config, v string) {
			c.API.BaseURL = v
		},
	},
	{
		envVar: "ZENEM_LOG_LEVEL",
		apply: func(c *Config, v string) {
			c.LogLevel = v
		},
	},
	{
		envVar: "ZENEM_STATE_DB",
		apply: func(c *Config, v string) {
			c.StateDB = v
		},
	},
	{
		envVar: "ZENEM_SLACK_WEBHOOK",
		apply: func(c *Config, v string) {
			c.Notify.SlackWebhook = v
		},
	},
}

// applyEnvOverrides modifies config in place with environment variable values.
func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}
