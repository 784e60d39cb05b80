package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds client configuration values.
type Config struct {
	// APIBaseURL is the root of the remote platform API, e.g. https://readspace.example.com
	APIBaseURL string `mapstructure:"api_base_url" yaml:"api_base_url"`
	// TransportURL is the realtime audio server the spaces feature connects to.
	// Empty means the transport is unavailable and joining a space fails fast.
	TransportURL string `mapstructure:"transport_url" yaml:"transport_url"`
	// CredentialsPath is the sqlite file holding the sealed session token.
	CredentialsPath string        `mapstructure:"credentials_path" yaml:"credentials_path"`
	LogLevel        string        `mapstructure:"log_level" yaml:"log_level"`
	PollInterval    time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// HTTPTimeout of zero means requests run until their context is cancelled.
	HTTPTimeout time.Duration `mapstructure:"http_timeout" yaml:"http_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		APIBaseURL:      "https://boookify.runasp.net",
		TransportURL:    "",
		CredentialsPath: defaultCredentialsPath(),
		LogLevel:        "info",
		PollInterval:    3 * time.Second,
		HTTPTimeout:     0,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.APIBaseURL != "" {
		c.APIBaseURL = other.APIBaseURL
	}
	if other.TransportURL != "" {
		c.TransportURL = other.TransportURL
	}
	if other.CredentialsPath != "" {
		c.CredentialsPath = other.CredentialsPath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.PollInterval != 0 {
		c.PollInterval = other.PollInterval
	}
	if other.HTTPTimeout != 0 {
		c.HTTPTimeout = other.HTTPTimeout
	}
}

func defaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "readspace-credentials.db"
	}
	return filepath.Join(home, ".readspace", "credentials.db")
}
