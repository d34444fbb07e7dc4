package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
database:
  host: localhost
  name: stockdata
  user: etl
  password: secret
sources:
  wikipedia:
    indices:
      SP500:
        url: https://en.wikipedia.org/wiki/List_of_S%26P_500_companies
        expected_range: [480, 520]
        columns:
          ticker: [symbol, ticker]
          company: [security, company]
          sector: [gics sector, sector]
`

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempFile(t, minimalYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
	src, ok := cfg.Sources.Wikipedia.Indices["SP500"]
	if !ok {
		t.Fatal("missing SP500 index source")
	}
	if len(src.Columns["ticker"]) != 2 {
		t.Errorf("ticker synonyms = %v, want 2 entries", src.Columns["ticker"])
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := strings.Replace(minimalYAML, "password: secret", "password: ${TEST_DB_PASSWORD}", 1)
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, minimalYAML)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.Database.SSLMode != DefaultDBSSLMode {
		t.Errorf("Database.SSLMode = %q, want %q", cfg.Database.SSLMode, DefaultDBSSLMode)
	}
	if cfg.Sources.Prices.Timeout != 10*time.Second {
		t.Errorf("Prices.Timeout = %v, want %v", cfg.Sources.Prices.Timeout, 10*time.Second)
	}
	if cfg.Paths.RetentionDays != DefaultRetention {
		t.Errorf("Paths.RetentionDays = %d, want %d", cfg.Paths.RetentionDays, DefaultRetention)
	}
	if cfg.Dashboard.Port != DefaultDashboardPort {
		t.Errorf("Dashboard.Port = %d, want %d", cfg.Dashboard.Port, DefaultDashboardPort)
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTempFile(t, minimalYAML)

	if _, err := LoadAndValidate(path); err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "missing db host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantSub: "database.host",
		},
		{
			name:    "missing db password",
			mutate:  func(c *Config) { c.Database.Password = "" },
			wantSub: "database.password",
		},
		{
			name:    "min conns above max",
			mutate:  func(c *Config) { c.Database.MinConns = 20 },
			wantSub: "min_conns",
		},
		{
			name:    "no indices",
			mutate:  func(c *Config) { c.Sources.Wikipedia.Indices = nil },
			wantSub: "at least one index",
		},
		{
			name: "index without url",
			mutate: func(c *Config) {
				src := c.Sources.Wikipedia.Indices["SP500"]
				src.URL = ""
				c.Sources.Wikipedia.Indices["SP500"] = src
			},
			wantSub: "url is required",
		},
		{
			name: "too few columns",
			mutate: func(c *Config) {
				src := c.Sources.Wikipedia.Indices["SP500"]
				src.Columns = map[string][]string{"ticker": {"symbol"}}
				c.Sources.Wikipedia.Indices["SP500"] = src
			},
			wantSub: "at least two fields",
		},
		{
			name:    "bad dashboard port",
			mutate:  func(c *Config) { c.Dashboard.Port = 70000 },
			wantSub: "dashboard.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, minimalYAML)
			cfg, err := LoadWithDefaults(path)
			if err != nil {
				t.Fatalf("LoadWithDefaults failed: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Validate() = %q, want substring %q", err, tt.wantSub)
			}
		})
	}
}
