package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Model != "gpt-5-codex" {
		t.Errorf("expected gpt-5-codex, got %s", cfg.Model)
	}
	if !cfg.EnableStatefulChaining {
		t.Error("expected stateful chaining enabled by default")
	}
	if !cfg.AutoCompactEnabled {
		t.Error("expected auto-compact enabled by default")
	}
	if cfg.Temperature != 1.0 {
		t.Errorf("expected temperature 1.0, got %v", cfg.Temperature)
	}
	if cfg.Retry.MaxRetries != 3 {
		t.Errorf("expected 3 max retries, got %d", cfg.Retry.MaxRetries)
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.toml")
	os.WriteFile(path, []byte(`
model = "gpt-5-codex-mini"
auto_compact_enabled = false

[retry]
max_retries = 5
`), 0644)

	cfg := Load(path)
	if cfg.Model != "gpt-5-codex-mini" {
		t.Errorf("expected gpt-5-codex-mini, got %s", cfg.Model)
	}
	if cfg.AutoCompactEnabled {
		t.Error("expected auto-compact disabled by TOML")
	}
	if cfg.Retry.MaxRetries != 5 {
		t.Errorf("expected 5 max retries, got %d", cfg.Retry.MaxRetries)
	}
	// Defaults preserved
	if cfg.BaseURL == "" {
		t.Error("default base URL should be preserved")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RESPBRIDGE_API_KEY", "env-key")
	t.Setenv("RESPBRIDGE_MODEL", "env-model")
	t.Setenv("RESPBRIDGE_AUTO_COMPACT", "0")

	cfg := Load("/nonexistent/path.toml")
	if cfg.APIKey != "env-key" {
		t.Errorf("expected env-key, got %s", cfg.APIKey)
	}
	if cfg.Model != "env-model" {
		t.Errorf("expected env-model, got %s", cfg.Model)
	}
	if cfg.AutoCompactEnabled {
		t.Error("expected auto-compact disabled by env override")
	}
}
