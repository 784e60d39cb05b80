package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, resolved, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if cfg.APIBaseURL == "" || cfg.PollInterval != 3*time.Second {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadReadsExistingConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_base_url: https://api.example.com\nlog_level: debug\npoll_interval: 5s\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, _, err := Load(nil, path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIBaseURL != "https://api.example.com" {
		t.Fatalf("api_base_url = %q", cfg.APIBaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("log_level = %q", cfg.LogLevel)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Fatalf("poll_interval = %v", cfg.PollInterval)
	}
	// Values absent from the file keep their defaults.
	if cfg.CredentialsPath == "" {
		t.Fatal("credentials_path default lost")
	}
}

func TestUpdateFromSkipsZeroValues(t *testing.T) {
	cfg := Default()
	base := cfg.APIBaseURL

	cfg.UpdateFrom(Config{LogLevel: "trace"})
	if cfg.LogLevel != "trace" {
		t.Fatalf("log_level = %q", cfg.LogLevel)
	}
	if cfg.APIBaseURL != base {
		t.Fatal("zero-valued override clobbered the base url")
	}

	cfg.UpdateFrom(Config{APIBaseURL: "http://localhost:8080", HTTPTimeout: time.Minute})
	if cfg.APIBaseURL != "http://localhost:8080" || cfg.HTTPTimeout != time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}
