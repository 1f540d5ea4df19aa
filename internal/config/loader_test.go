package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Nonexistent file falls back to defaults.
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(256*1024), cfg.Flatten.MaxFileSize)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfigFile(t, `
flatten:
  max_file_size: 1024
  concurrency: 2
  exclude_patterns:
    - "*.generated.go"
retry:
  max_retries: 5
  initial_backoff: 50ms
server:
  port: 9999
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, int64(1024), cfg.Flatten.MaxFileSize)
	assert.Equal(t, 2, cfg.Flatten.Concurrency)
	assert.Equal(t, []string{"*.generated.go"}, cfg.Flatten.ExcludePatterns)
	assert.Equal(t, 5, cfg.Retry.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.Retry.InitialBackoff.Duration())
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9999
`)

	t.Setenv("REPOFLAT_SERVER_PORT", "8888")
	t.Setenv("REPOFLAT_GITHUB_TOKEN", "ghp_testtoken")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.Port)
	assert.Equal(t, "ghp_testtoken", cfg.GitHub.Token.Value())
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := writeConfigFile(t, `
flatten:
  concurrency: -1
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency")
}

func TestTransformEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"REPOFLAT_GITHUB_TOKEN", "github.token"},
		{"REPOFLAT_GITHUB_BASE_URL", "github.base_url"},
		{"REPOFLAT_FLATTEN_MAX_FILE_SIZE", "flatten.max_file_size"},
		{"REPOFLAT_SERVER_PORT", "server.port"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, transformEnvKey(tt.in), tt.in)
	}
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("super-secret")
	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "super-secret", s.Value())
	assert.True(t, s.IsSet())

	data, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "super-secret")

	var empty Secret
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}
