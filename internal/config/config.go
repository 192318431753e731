// Package config handles khub configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration structure for khub.
type Config struct {
	// API settings for the Kindra platform backend.
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Hub settings for the live-sync engine.
	Hub HubConfig `yaml:"hub" mapstructure:"hub"`

	// Logging settings.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// TUI settings.
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// BaseURL is the platform API root, e.g. https://kindra.example.org/api.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Role is the platform role of the authenticated user. It only gates
	// moderation affordances client-side; the server enforces regardless.
	Role string `yaml:"role" mapstructure:"role"`
}

// HubConfig contains live-sync engine settings.
type HubConfig struct {
	// PollInterval is the fixed delay between sync cycles. The next cycle is
	// armed only after the previous one fully resolves.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`

	// ContentPreviewLength is how many characters of a chat message survive
	// into a chat-derived notification body.
	ContentPreviewLength int `yaml:"content_preview_length" mapstructure:"content_preview_length"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// ShowTimestamps shows absolute timestamps instead of relative ones.
	ShowTimestamps bool `yaml:"show_timestamps" mapstructure:"show_timestamps"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: 15 * time.Second,
			Role:    "MEMBER",
		},
		Hub: HubConfig{
			PollInterval:         20 * time.Second,
			ContentPreviewLength: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		TUI: TUIConfig{
			Theme:          "default",
			ShowTimestamps: false,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if _, err := url.ParseRequestURI(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url is not a valid URL: %w", err)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Hub.PollInterval < time.Second {
		return fmt.Errorf("hub.poll_interval must be at least 1s")
	}
	if c.Hub.ContentPreviewLength < 1 {
		return fmt.Errorf("hub.content_preview_length must be at least 1")
	}
	return nil
}
