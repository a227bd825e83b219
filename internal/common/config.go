package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the ambient bootstrap configuration: logging, storage location,
// the thin MCP transport's listen address, and the Anthropic collaborator's
// credentials. Domain tunables (§6.5's token budgets) live in
// internal/config.Tunables, loaded and threaded separately — this struct
// never carries them, so core logic never reaches for a package global.
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Claude      ClaudeConfig  `toml:"claude"`
}

// ServerConfig is cmd/ndk-mcp's listen address — the one concrete transport
// this repo ships, kept deliberately thin.
type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

// StorageConfig configures internal/history's badger-backed store.
type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig is BadgerDB-specific configuration.
type BadgerConfig struct {
	Path           string `toml:"path"`             // database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // delete database on startup for clean test runs
}

// LoggingConfig configures the arbor logger built by SetupLogger.
type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // default: "15:04:05.000"
}

// ClaudeConfig carries the Anthropic collaborator's credentials, passed to
// internal/collaborators/anthropic's constructor — never read by core logic.
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	RateLimit   string  `toml:"rate_limit"`
	Temperature float32 `toml:"temperature"`
}

// NewDefaultConfig returns a Config with production-safe defaults.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{Path: "./data"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "5m",
			RateLimit:   "1s",
			Temperature: 0.7,
		},
	}
}

// LoadFromFiles loads configuration starting from defaults, merging each
// TOML file in order (later files override earlier ones), then applying
// environment variable overrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

// applyEnvOverrides applies NDK_*-prefixed environment variable overrides,
// highest priority over file and default values.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("NDK_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("NDK_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("NDK_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if path := os.Getenv("NDK_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if level := os.Getenv("NDK_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("NDK_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // NDK_ prefix takes priority
	}
	if model := os.Getenv("NDK_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
}

// IsProduction reports whether Environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// ClaudeRequestTimeout parses Claude.Timeout, falling back to 5 minutes on
// an unparseable or empty value.
func (c *Config) ClaudeRequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Claude.Timeout)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}
