package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8000/api", cfg.API.BaseURL)
	require.Equal(t, 20*time.Second, cfg.Hub.PollInterval)
	require.Equal(t, 50, cfg.Hub.ContentPreviewLength)
	require.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	payload := []byte("api:\n  base_url: https://kindra.example.org/api\nhub:\n  poll_interval: 5s\nlogging:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	require.Equal(t, "https://kindra.example.org/api", cfg.API.BaseURL)
	require.Equal(t, 5*time.Second, cfg.Hub.PollInterval)
	require.Equal(t, "debug", cfg.Logging.Level)
	// Untouched keys keep defaults.
	require.Equal(t, 50, cfg.Hub.ContentPreviewLength)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "empty base url", mutate: func(c *Config) { c.API.BaseURL = "" }, wantErr: true},
		{name: "garbage base url", mutate: func(c *Config) { c.API.BaseURL = "::://" }, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.API.Timeout = 0 }, wantErr: true},
		{name: "sub-second poll interval", mutate: func(c *Config) { c.Hub.PollInterval = 200 * time.Millisecond }, wantErr: true},
		{name: "zero preview length", mutate: func(c *Config) { c.Hub.ContentPreviewLength = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
