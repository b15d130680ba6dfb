// Package config loads the buildcheck tool configuration (YAML with
// environment overrides) and the per-project stage configuration (JSON).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all buildcheck configuration.
type Config struct {
	// Endpoint is the triage service URL errors are submitted to.
	Endpoint string `yaml:"endpoint"`

	// Timeouts per task, as duration strings.
	Timeouts TimeoutsConfig `yaml:"timeouts"`

	// Browser configures the website smoke check.
	Browser BrowserConfig `yaml:"browser"`

	// Gemini configures the AI-assisted classifier (serve side).
	Gemini GeminiConfig `yaml:"gemini"`

	// Server configures the triage service (serve side).
	Server ServerConfig `yaml:"server"`
}

// TimeoutsConfig bounds each task's external process.
type TimeoutsConfig struct {
	Lint      string `yaml:"lint"`
	Typecheck string `yaml:"typecheck"`
	Build     string `yaml:"build"`
	Test      string `yaml:"test"`
	Website   string `yaml:"website"`
}

// BrowserConfig configures the headless smoke check.
type BrowserConfig struct {
	Bin                 string `yaml:"bin"`
	NavigationTimeoutMs int    `yaml:"navigation_timeout_ms"`
}

// GeminiConfig configures the AI classifier.
type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Timeout string `yaml:"timeout"`
}

// ServerConfig configures the triage HTTP service.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	DatabasePath string `yaml:"database_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: "http://localhost:3000/api/report-errors",
		Timeouts: TimeoutsConfig{
			Lint:      "60s",
			Typecheck: "60s",
			Build:     "120s",
			Test:      "120s",
			Website:   "60s",
		},
		Browser: BrowserConfig{
			NavigationTimeoutMs: 10000,
		},
		Gemini: GeminiConfig{
			Model:   "gemini-2.0-flash",
			Timeout: "30s",
		},
		Server: ServerConfig{
			Addr:         ":3000",
			DatabasePath: "data/buildcheck.db",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file is absent, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides lets the environment win over the config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("BUILDCHECK_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("BUILDCHECK_DB"); v != "" {
		c.Server.DatabasePath = v
	}
	if v := os.Getenv("BUILDCHECK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
}

// DefaultPath returns the tool config path inside a project root.
func DefaultPath(root string) string {
	return filepath.Join(root, "buildcheck.yaml")
}
