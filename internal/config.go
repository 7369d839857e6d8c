package internal

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultBackendURL points at a local query_generation service
const DefaultBackendURL = "http://localhost:5001"

// Config holds everything the commands need to reach the backend.
// Precedence: flags > environment > config file > defaults; flags are
// applied by the cmd layer on top of what Load returns.
type Config struct {
	BackendURL     string `yaml:"backend_url"`
	TimeoutMS      int    `yaml:"timeout_ms"`
	LegacyContract bool   `yaml:"legacy_contract"`

	Options struct {
		PerTermK        int    `yaml:"per_term_k"`
		WholeQueryK     int    `yaml:"whole_query_k"`
		CallGemini      *bool  `yaml:"call_gemini"`
		MaxRetries      int    `yaml:"max_retries"`
		ChartPreference string `yaml:"chart_preference"`
	} `yaml:"options"`
}

// DefaultConfigPath is ~/.dataware-chatbot.yaml
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".dataware-chatbot.yaml")
}

// LoadConfig builds the effective config from defaults, an optional YAML
// file and the environment. A missing file is fine; a malformed one is an
// error so a typo does not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		BackendURL: DefaultBackendURL,
		TimeoutMS:  int(DefaultRequestTimeout / time.Millisecond),
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, &ConfigError{Path: path, Err: err}
			}
			LogDebug("loaded config from %s", path)
		} else if !os.IsNotExist(err) {
			return cfg, &ConfigError{Path: path, Err: err}
		}
	}

	cfg.BackendURL = envStr("DATAWARE_BACKEND_URL", cfg.BackendURL)
	cfg.TimeoutMS = envInt("DATAWARE_TIMEOUT_MS", cfg.TimeoutMS)
	return cfg, nil
}

// Timeout returns the request timeout as a duration
func (c Config) Timeout() time.Duration {
	if c.TimeoutMS <= 0 {
		return DefaultRequestTimeout
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// QueryOptions maps the configured knobs to request options
func (c Config) QueryOptions() QueryOptions {
	return QueryOptions{
		PerTermK:        c.Options.PerTermK,
		WholeQueryK:     c.Options.WholeQueryK,
		CallGemini:      c.Options.CallGemini,
		MaxRetries:      c.Options.MaxRetries,
		ChartPreference: c.Options.ChartPreference,
	}
}

// NewBackendClient builds a Client from the effective config
func (c Config) NewBackendClient() *Client {
	client := NewClient(c.BackendURL, c.Timeout())
	client.UseLegacy(c.LegacyContract)
	return client
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
