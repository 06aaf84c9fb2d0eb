// Package config resolves provider and credential configuration. Precedence,
// lowest to highest: built-in defaults, environment variables, then the
// optional user-supplied YAML override file. A locally persisted override
// always beats the build/environment credential.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"
)

// Config carries everything the binaries need to talk to a provider and find
// their data.
type Config struct {
	// Provider selects the parsing backend: deepseek, gemini or claude.
	Provider string `yaml:"provider"`

	// APIKey is the credential for the selected provider.
	APIKey string `yaml:"api_key"`

	// Model overrides the provider's default model name.
	Model string `yaml:"model"`

	// BaseURL overrides the DeepSeek endpoint root; ignored by the SDK-backed
	// providers.
	BaseURL string `yaml:"base_url"`

	// AuthToken, when set, is required as a bearer token on API requests.
	AuthToken string `yaml:"auth_token"`

	// DataFile is the path of the persisted transaction collection.
	DataFile string `yaml:"data_file"`
}

// DefaultPath returns the conventional location of the override file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "expense-ledger.yaml"
	}
	return filepath.Join(home, ".config", "expense-ledger", "config.yaml")
}

// Load resolves the configuration. path may be empty, in which case the
// default location is consulted; a missing override file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Provider: "deepseek",
		DataFile: "transactions.json",
	}

	applyEnv(cfg)

	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	merge(cfg, &override)

	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LEDGER_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("LEDGER_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("LEDGER_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("LEDGER_AUTH_TOKEN"); v != "" {
		cfg.AuthToken = v
	}

	// Generic key first, then the provider-specific conventions.
	if v := os.Getenv("LEDGER_API_KEY"); v != "" {
		cfg.APIKey = v
		return
	}
	for _, name := range []string{"DEEPSEEK_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			cfg.APIKey = v
			return
		}
	}
}

// merge copies the non-empty fields of src over dst.
func merge(dst, src *Config) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.AuthToken != "" {
		dst.AuthToken = src.AuthToken
	}
	if src.DataFile != "" {
		dst.DataFile = src.DataFile
	}
}
