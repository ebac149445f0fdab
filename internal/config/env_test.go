package config

import (
	"path/filepath"
	"testing"
)

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ZENEM_API_BASE_URL", "https://env.example.com/api")
	t.Setenv("ZENEM_LOG_LEVEL", "error")
	t.Setenv("ZENEM_STATE_DB", "/var/tmp/z.db")
	t.Setenv("ZENEM_SLACK_WEBHOOK", "https://hooks.slack.test/x")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.API.BaseURL != "https://env.example.com/api" {
		t.Errorf("expected env base URL, got %q", cfg.API.BaseURL)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("expected LogLevel 'error', got %q", cfg.LogLevel)
	}
	if cfg.StateDB != "/var/tmp/z.db" {
		t.Errorf("expected StateDB '/var/tmp/z.db', got %q", cfg.StateDB)
	}
	if cfg.Notify.SlackWebhook != "https://hooks.slack.test/x" {
		t.Errorf("expected slack webhook override, got %q", cfg.Notify.SlackWebhook)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "api:\n  base_url: https://file.example.com/api\n")
	t.Setenv("ZENEM_API_BASE_URL", "https://env.example.com/api")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.com/api" {
		t.Errorf("expected env to win, got %q", cfg.API.BaseURL)
	}
}
