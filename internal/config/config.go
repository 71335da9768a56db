// Package config loads adapter construction options from defaults, an
// optional TOML file, and environment variable overrides, in that order.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config mirrors the adapter's construction-time options.
type Config struct {
	APIKey                 string  `toml:"api_key"`
	BaseURL                string  `toml:"base_url"`
	Model                  string  `toml:"model"`
	EnableStatefulChaining bool    `toml:"enable_stateful_chaining"`
	MaxOutputTokens        int     `toml:"max_output_tokens"`
	Temperature            float64 `toml:"temperature"`
	AutoCompactEnabled     bool    `toml:"auto_compact_enabled"`

	Retry   RetryConfig   `toml:"retry"`
	Garbled GarbledConfig `toml:"garbled"`
}

type RetryConfig struct {
	MaxRetries     int `toml:"max_retries"`
	BaseDelayMS    int `toml:"base_delay_ms"`
	MaxDelayMS     int `toml:"max_delay_ms"`
	RetryAllErrors bool `toml:"retry_all_errors"`
}

type GarbledConfig struct {
	Patterns []string `toml:"patterns"`
}

// Default returns a Config with all defaults applied,
func Default() Config {
	return Config{
		BaseURL:                "https://api.openai.com/v1",
		Model:                  "gpt-5-codex",
		EnableStatefulChaining: true,
		Temperature:            1.0,
		AutoCompactEnabled:     true,
		Retry: RetryConfig{
			MaxRetries:  3,
			BaseDelayMS: 1000,
			MaxDelayMS:  10000,
		},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
// path == "" defaults to "respbridge.toml"; a missing file is not an error.
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "respbridge.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	if v := os.Getenv("RESPBRIDGE_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("RESPBRIDGE_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("RESPBRIDGE_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("RESPBRIDGE_AUTO_COMPACT"); v != "" {
		cfg.AutoCompactEnabled = v == "true" || v == "1"
	}
	if v := os.Getenv("RESPBRIDGE_STATEFUL_CHAINING"); v != "" {
		cfg.EnableStatefulChaining = v == "true" || v == "1"
	}

	return cfg
}
