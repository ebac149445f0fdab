package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeFile creates a file with the given content for testing
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	err := os.WriteFile(path, []byte(content), 0644)
	if err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != DefaultBaseURL {
		t.Errorf("expected API.BaseURL to be %q, got %q", DefaultBaseURL, cfg.API.BaseURL)
	}
	if cfg.Refresh.EstimateDelay != DefaultEstimateDelay {
		t.Errorf("expected Refresh.EstimateDelay to be %q, got %q", DefaultEstimateDelay, cfg.Refresh.EstimateDelay)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("expected LogLevel to be %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	expectedDB := filepath.Join(dir, ".zenem", "state.db")
	if cfg.StateDB != expectedDB {
		t.Errorf("expected StateDB to be %q, got %q", expectedDB, cfg.StateDB)
	}
	if len(cfg.Notify.Backends) != 1 || cfg.Notify.Backends[0] != "terminal" {
		t.Errorf("expected terminal notify backend, got %v", cfg.Notify.Backends)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	configContent := `
api:
  base_url: https://zenem.example.com/api/
  timeout: 10s
cache:
  metadata_ttl: 1m
refresh:
  estimate_delay: 250ms
  poll_interval: 5s
  badge_interval: 1m
wizard:
  discovery_poll_interval: 4s
state_db: /tmp/zenem-state.db
log_level: debug
`
	writeFile(t, path, configContent)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://zenem.example.com/api" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.API.BaseURL)
	}
	if cfg.StateDB != "/tmp/zenem-state.db" {
		t.Errorf("expected StateDB '/tmp/zenem-state.db', got %q", cfg.StateDB)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected LogLevel 'debug', got %q", cfg.LogLevel)
	}

	d, err := cfg.Durations()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.EstimateDelay != 250*time.Millisecond {
		t.Errorf("expected EstimateDelay 250ms, got %v", d.EstimateDelay)
	}
	if d.PollInterval != 5*time.Second {
		t.Errorf("expected PollInterval 5s, got %v", d.PollInterval)
	}
	if d.BadgeInterval != time.Minute {
		t.Errorf("expected BadgeInterval 1m, got %v", d.BadgeInterval)
	}
	if d.DiscoveryPollInterval != 4*time.Second {
		t.Errorf("expected DiscoveryPollInterval 4s, got %v", d.DiscoveryPollInterval)
	}
	if d.MetadataTTL != time.Minute {
		t.Errorf("expected MetadataTTL 1m, got %v", d.MetadataTTL)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, "api: [unclosed")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Errorf("expected parse config error, got %v", err)
	}
}

func TestLoad_ValidationErrorsJoined(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, `
api:
  base_url: not-a-url
refresh:
  poll_interval: soon
log_level: chatty
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError in chain, got %T", err)
	}
	for _, field := range []string{"api.base_url", "refresh.poll_interval", "log_level"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("expected error to mention %s, got %v", field, err)
		}
	}
}

func TestDurations_InvalidHandBuilt(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Refresh.BadgeInterval = "often"

	if _, err := cfg.Durations(); err == nil {
		t.Error("expected error for invalid duration")
	}
}
