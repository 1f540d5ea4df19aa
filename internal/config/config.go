// Package config provides configuration loading for repoflat.
//
// Configuration is loaded from a YAML file, then overridden by environment
// variables. All knobs that the flattening pipeline treats as policy (size
// limits, exclusion patterns, retry budgets) live here so they stay explicit
// and testable rather than buried in call sites.
package config

import (
	"fmt"
	"time"
)

// Config holds the complete repoflat configuration.
type Config struct {
	GitHub  GitHubConfig  `koanf:"github"`
	Flatten FlattenConfig `koanf:"flatten"`
	Retry   RetryConfig   `koanf:"retry"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// GitHubConfig holds remote API client configuration.
type GitHubConfig struct {
	// Token is the API token used for authenticated requests. Optional;
	// unauthenticated requests work for public repositories at a lower
	// rate limit.
	Token Secret `koanf:"token"`

	// BaseURL overrides the API endpoint. Used for tests and GitHub
	// Enterprise installs. Empty means api.github.com.
	BaseURL string `koanf:"base_url"`
}

// FlattenConfig holds filtering and fetching policy for a render.
type FlattenConfig struct {
	// MaxFileSize is the largest file, in bytes, that will be fetched and
	// rendered. Larger files are excluded with an oversize reason.
	MaxFileSize int64 `koanf:"max_file_size"`

	// ExcludePatterns are gitignore-style lines excluding paths from the
	// render. Appended to the built-in defaults.
	ExcludePatterns []string `koanf:"exclude_patterns"`

	// BinaryExtensions overrides the built-in known-binary extension list
	// when non-empty. Entries include the leading dot.
	BinaryExtensions []string `koanf:"binary_extensions"`

	// Concurrency is the bounded worker count for content fetches.
	Concurrency int `koanf:"concurrency"`

	// RequestsPerSecond paces outgoing content requests. Zero disables
	// pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second"`

	// SkippedPlaceholders controls whether transcript output carries a
	// placeholder line per skipped file instead of omitting them.
	SkippedPlaceholders bool `koanf:"skipped_placeholders"`
}

// RetryConfig configures backoff behavior for remote API calls. The same
// budget applies to tree resolution and to each individual file fetch.
type RetryConfig struct {
	MaxRetries        int      `koanf:"max_retries"`
	InitialBackoff    Duration `koanf:"initial_backoff"`
	MaxBackoff        Duration `koanf:"max_backoff"`
	BackoffMultiplier float64  `koanf:"backoff_multiplier"`
}

// ServerConfig holds HTTP server configuration for serve mode.
type ServerConfig struct {
	Host            string   `koanf:"host"`
	Port            int      `koanf:"port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`

	// JobTTL is how long finished render jobs are kept before pruning.
	JobTTL Duration `koanf:"job_ttl"`
}

// LoggingConfig holds logger configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// defaultExcludePatterns cover VCS metadata, vendored dependencies, build
// output and lockfiles. Callers extend these via FlattenConfig.ExcludePatterns.
var defaultExcludePatterns = []string{
	".git/",
	".svn/",
	".hg/",
	"node_modules/",
	"vendor/",
	"__pycache__/",
	"dist/",
	"build/",
	"target/",
	".idea/",
	".vscode/",
	"*.min.js",
	"*.min.css",
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"Cargo.lock",
	"go.sum",
	"poetry.lock",
}

// defaultBinaryExtensions is the known-binary extension list. Files matching
// one of these are excluded before any fetch is attempted.
var defaultBinaryExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".ico",
	".pdf", ".zip", ".tar", ".gz", ".bz2", ".xz", ".7z", ".rar",
	".mp3", ".mp4", ".mov", ".avi", ".mkv", ".wav", ".ogg", ".flac",
	".ttf", ".otf", ".eot", ".woff", ".woff2",
	".so", ".dll", ".dylib", ".class", ".jar", ".exe", ".bin",
	".wasm", ".o", ".a", ".pyc",
}

// DefaultExcludePatterns returns a copy of the built-in exclusion list.
func DefaultExcludePatterns() []string {
	out := make([]string, len(defaultExcludePatterns))
	copy(out, defaultExcludePatterns)
	return out
}

// DefaultBinaryExtensions returns a copy of the built-in binary extension list.
func DefaultBinaryExtensions() []string {
	out := make([]string, len(defaultBinaryExtensions))
	copy(out, defaultBinaryExtensions)
	return out
}

// NewDefaultConfig returns config with production-ready defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Flatten: FlattenConfig{
			MaxFileSize:       256 * 1024,
			BinaryExtensions:  DefaultBinaryExtensions(),
			Concurrency:       8,
			RequestsPerSecond: 10,
		},
		Retry: RetryConfig{
			MaxRetries:        3,
			InitialBackoff:    Duration(time.Second),
			MaxBackoff:        Duration(30 * time.Second),
			BackoffMultiplier: 2.0,
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8470,
			ShutdownTimeout: Duration(10 * time.Second),
			JobTTL:          Duration(24 * time.Hour),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Flatten.MaxFileSize <= 0 {
		return fmt.Errorf("flatten.max_file_size must be positive, got %d", c.Flatten.MaxFileSize)
	}
	if c.Flatten.Concurrency <= 0 {
		return fmt.Errorf("flatten.concurrency must be positive, got %d", c.Flatten.Concurrency)
	}
	if c.Flatten.RequestsPerSecond < 0 {
		return fmt.Errorf("flatten.requests_per_second cannot be negative")
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries cannot be negative")
	}
	if c.Retry.BackoffMultiplier < 1 {
		return fmt.Errorf("retry.backoff_multiplier must be >= 1, got %v", c.Retry.BackoffMultiplier)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}
