package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, int64(256*1024), cfg.Flatten.MaxFileSize)
	assert.Equal(t, 8, cfg.Flatten.Concurrency)
	assert.Equal(t, 3, cfg.Retry.MaxRetries)
	assert.Equal(t, time.Second, cfg.Retry.InitialBackoff.Duration())
	assert.Equal(t, 30*time.Second, cfg.Retry.MaxBackoff.Duration())
	assert.Equal(t, "json", cfg.Logging.Format)

	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.Flatten.MaxFileSize = 0 },
			wantErr: "max_file_size",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Flatten.Concurrency = 0 },
			wantErr: "concurrency",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.Retry.MaxRetries = -1 },
			wantErr: "max_retries",
		},
		{
			name:    "multiplier below one",
			mutate:  func(c *Config) { c.Retry.BackoffMultiplier = 0.5 },
			wantErr: "backoff_multiplier",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDefaultListsAreCopies(t *testing.T) {
	a := DefaultBinaryExtensions()
	a[0] = ".mutated"
	b := DefaultBinaryExtensions()
	assert.NotEqual(t, a[0], b[0])

	p := DefaultExcludePatterns()
	p[0] = "mutated/"
	q := DefaultExcludePatterns()
	assert.NotEqual(t, p[0], q[0])
}
