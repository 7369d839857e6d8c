package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("a missing config file must not be an error: %v", err)
	}
	if cfg.BackendURL != DefaultBackendURL {
		t.Errorf("BackendURL = %q, want %q", cfg.BackendURL, DefaultBackendURL)
	}
	if cfg.Timeout() != DefaultRequestTimeout {
		t.Errorf("Timeout() = %v, want %v", cfg.Timeout(), DefaultRequestTimeout)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `backend_url: http://backend:9000
timeout_ms: 5000
legacy_contract: true
options:
  per_term_k: 4
  call_gemini: false
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.BackendURL != "http://backend:9000" {
		t.Errorf("BackendURL = %q", cfg.BackendURL)
	}
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
	if !cfg.LegacyContract {
		t.Error("LegacyContract should be true")
	}

	opts := cfg.QueryOptions()
	if opts.PerTermK != 4 {
		t.Errorf("PerTermK = %d", opts.PerTermK)
	}
	if opts.CallGemini == nil || *opts.CallGemini {
		t.Errorf("CallGemini = %v, want false", opts.CallGemini)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend_url: [not: valid"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("malformed config must not silently fall back to defaults")
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("error should be a *ConfigError, got %T", err)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("backend_url: http://from-file:1\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATAWARE_BACKEND_URL", "http://from-env:2")
	t.Setenv("DATAWARE_TIMEOUT_MS", "1234")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.BackendURL != "http://from-env:2" {
		t.Errorf("BackendURL = %q, env must win over file", cfg.BackendURL)
	}
	if cfg.TimeoutMS != 1234 {
		t.Errorf("TimeoutMS = %d, want 1234", cfg.TimeoutMS)
	}
}

func TestConfigTimeoutFallback(t *testing.T) {
	cfg := Config{TimeoutMS: -5}
	if cfg.Timeout() != DefaultRequestTimeout {
		t.Errorf("Timeout() = %v, want default for non-positive values", cfg.Timeout())
	}
}
