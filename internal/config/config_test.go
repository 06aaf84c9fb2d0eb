package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "deepseek" {
		t.Errorf("Provider = %q, want deepseek", cfg.Provider)
	}
	if cfg.DataFile != "transactions.json" {
		t.Errorf("DataFile = %q, want transactions.json", cfg.DataFile)
	}
	if cfg.APIKey != "" {
		t.Errorf("APIKey = %q, want empty", cfg.APIKey)
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "gemini" || cfg.APIKey != "g-key" {
		t.Errorf("got provider=%q key=%q", cfg.Provider, cfg.APIKey)
	}
}

func TestLoadGenericKeyWinsOverProviderKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER_API_KEY", "generic")
	t.Setenv("DEEPSEEK_API_KEY", "specific")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "generic" {
		t.Errorf("APIKey = %q, want generic", cfg.APIKey)
	}
}

func TestLoadFileOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEEPSEEK_API_KEY", "env-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "api_key: file-key\nmodel: deepseek-chat\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIKey != "file-key" {
		t.Errorf("APIKey = %q, want file override to win", cfg.APIKey)
	}
	if cfg.Provider != "deepseek" {
		t.Errorf("Provider = %q, want default kept when file omits it", cfg.Provider)
	}
}

func TestLoadBadYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n\t-bad"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unparseable config file")
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"LEDGER_PROVIDER", "LEDGER_MODEL", "LEDGER_DATA_FILE", "LEDGER_AUTH_TOKEN",
		"LEDGER_API_KEY", "DEEPSEEK_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY",
	} {
		t.Setenv(name, "")
	}
}
