package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv blanks every variable that could leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, e := range []string{
		EnvSourcesAPIKey, EnvAlphaVantageKey,
		"FINCHART_API_PORT", "FINCHART_LOGGING_LEVEL", "FINCHART_SOURCES_INCOME_URL",
	} {
		t.Setenv(e, "")
	}
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Source defaults
	if cfg.Sources.IncomeURL != "http://localhost:3000/api/income?ticker={symbol}" {
		t.Errorf("Sources.IncomeURL: got %q", cfg.Sources.IncomeURL)
	}
	if cfg.Sources.IncomePath != "$.data" {
		t.Errorf("Sources.IncomePath: got %q, want %q", cfg.Sources.IncomePath, "$.data")
	}
	if cfg.Sources.PricePath != "$.prices" {
		t.Errorf("Sources.PricePath: got %q, want %q", cfg.Sources.PricePath, "$.prices")
	}
	if cfg.Sources.TimeoutSec != 30 {
		t.Errorf("Sources.TimeoutSec: got %d, want 30", cfg.Sources.TimeoutSec)
	}
	if cfg.Sources.RateLimit != 5 || cfg.Sources.RateWindowSec != 60 {
		t.Errorf("Sources rate limit: got %d/%ds, want 5/60s", cfg.Sources.RateLimit, cfg.Sources.RateWindowSec)
	}
	if cfg.Sources.MaxBodyBytes != 10<<20 {
		t.Errorf("Sources.MaxBodyBytes: got %d", cfg.Sources.MaxBodyBytes)
	}
	if cfg.Sources.LenientJSON {
		t.Error("Sources.LenientJSON should be false by default")
	}

	// API defaults
	if cfg.API.Host != "0.0.0.0" {
		t.Errorf("API.Host: got %q, want %q", cfg.API.Host, "0.0.0.0")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if len(cfg.API.CORSOrigins) != 1 || cfg.API.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("API.CORSOrigins: got %v", cfg.API.CORSOrigins)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("FINCHART_API_PORT", "9191")
	t.Setenv("FINCHART_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.API.Port != 9191 {
		t.Errorf("API.Port: got %d, want 9191", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want debug", cfg.Logging.Level)
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
sources:
  income_url: "https://www.alphavantage.co/query?function=INCOME_STATEMENT&symbol={symbol}&apikey={apikey}"
  income_path: "$.quarterlyReports"
  price_url: "https://example.com/prices/{symbol}.json"
  price_path: "$"
  api_key: "demo_key_1234567890"
  timeout_sec: 10
  lenient_json: true
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Sources.IncomePath != "$.quarterlyReports" {
		t.Errorf("Sources.IncomePath: got %q", cfg.Sources.IncomePath)
	}
	if cfg.Sources.PricePath != "$" {
		t.Errorf("Sources.PricePath: got %q", cfg.Sources.PricePath)
	}
	if cfg.Sources.APIKey != "demo_key_1234567890" {
		t.Errorf("Sources.APIKey: got %q", cfg.Sources.APIKey)
	}
	if cfg.Sources.TimeoutSec != 10 {
		t.Errorf("Sources.TimeoutSec: got %d, want 10", cfg.Sources.TimeoutSec)
	}
	if !cfg.Sources.LenientJSON {
		t.Error("Sources.LenientJSON should be true")
	}
	// Unset keys keep their defaults.
	if cfg.Sources.RateLimit != 5 {
		t.Errorf("Sources.RateLimit: got %d, want 5", cfg.Sources.RateLimit)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format: got %q, want %q", cfg.Logging.Format, "json")
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"bad port", "api:\n  port: 70000\n", "Port"},
		{"bad log level", "logging:\n  level: \"loud\"\n", "Level"},
		{"bad log format", "logging:\n  format: \"xml\"\n", "Format"},
		{"url without symbol", "sources:\n  income_url: \"https://example.com/income\"\n", "IncomeURL"},
		{"path not jsonpath", "sources:\n  price_path: \"prices\"\n", "PricePath"},
		{"zero timeout", "sources:\n  timeout_sec: 0\n", "TimeoutSec"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadFromFile(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should name %s: %v", tt.field, err)
			}
		})
	}
}

// ── overrideFromEnv ──

func TestOverrideFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvSourcesAPIKey, "finchart-key-123456")

	cfg := &Config{Sources: SourcesConfig{APIKey: "from-config"}}
	overrideFromEnv(cfg)

	if cfg.Sources.APIKey != "finchart-key-123456" {
		t.Errorf("APIKey: got %q", cfg.Sources.APIKey)
	}
}

func TestOverrideFromEnvAlphaVantageFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAlphaVantageKey, "av-key-123456")

	cfg := &Config{}
	overrideFromEnv(cfg)
	if cfg.Sources.APIKey != "av-key-123456" {
		t.Errorf("APIKey: got %q", cfg.Sources.APIKey)
	}

	// A configured key is not replaced by the vendor variable.
	cfg = &Config{Sources: SourcesConfig{APIKey: "from-config"}}
	overrideFromEnv(cfg)
	if cfg.Sources.APIKey != "from-config" {
		t.Errorf("APIKey should stay 'from-config', got %q", cfg.Sources.APIKey)
	}
}

func TestOverrideFromEnvNoEnvSet(t *testing.T) {
	clearEnv(t)

	cfg := &Config{Sources: SourcesConfig{APIKey: "from-config"}}
	overrideFromEnv(cfg)

	// Should retain the original value when env is not set
	if cfg.Sources.APIKey != "from-config" {
		t.Errorf("APIKey should stay as 'from-config' when env is unset, got %q", cfg.Sources.APIKey)
	}
}

// ── maskKey ──

func TestMaskKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "***"},
		{"abcd", "***"},
		{"12345678", "***"},
		{"123456789", "123...789"},
		{"ABCDEFGHIJKLMNOP", "ABC...NOP"},
	}
	for _, tc := range tests {
		got := maskKey(tc.input)
		if got != tc.want {
			t.Errorf("maskKey(%q): got %q, want %q", tc.input, got, tc.want)
		}
	}
}

// ── CheckAPIKeys / checkKey ──

func TestCheckAPIKeysEmpty(t *testing.T) {
	clearEnv(t)

	statuses := CheckAPIKeys(&Config{})
	if len(statuses) != 1 {
		t.Fatalf("CheckAPIKeys: got %d statuses, want 1", len(statuses))
	}
	if statuses[0].IsSet {
		t.Error("key should not be set")
	}
	if statuses[0].Source != KeySourceNone {
		t.Errorf("source: got %q, want %q", statuses[0].Source, KeySourceNone)
	}
}

func TestCheckAPIKeysFromConfig(t *testing.T) {
	clearEnv(t)

	cfg := &Config{Sources: SourcesConfig{APIKey: "cfg-very-long-key-value"}}
	s := CheckAPIKeys(cfg)[0]
	if !s.IsSet {
		t.Error("key should be set")
	}
	if s.Source != KeySourceConfig {
		t.Errorf("Source: got %q, want %q", s.Source, KeySourceConfig)
	}
	if s.Masked != "cfg...lue" {
		t.Errorf("Masked: got %q, want %q", s.Masked, "cfg...lue")
	}
}

func TestCheckKeySourceDetection(t *testing.T) {
	clearEnv(t)

	s := checkKey("Test", "", EnvAlphaVantageKey)
	if s.Source != KeySourceNone || s.IsSet {
		t.Errorf("empty value: got %+v", s)
	}

	t.Setenv(EnvAlphaVantageKey, "env-value-long-enough")
	s = checkKey("Test", "env-value-long-enough", EnvSourcesAPIKey, EnvAlphaVantageKey)
	if s.Source != KeySourceEnv {
		t.Errorf("env value: got source %q, want %q", s.Source, KeySourceEnv)
	}

	s = checkKey("Test", "something-else-entirely", EnvSourcesAPIKey, EnvAlphaVantageKey)
	if s.Source != KeySourceConfig {
		t.Errorf("config value: got source %q, want %q", s.Source, KeySourceConfig)
	}
}
