package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		PathEnv, "SUBSTACK_BASE_DOMAIN", "SUBSTACK_BATCH_DELAY", "SUBSTACK_CONTENT_LIMIT",
		"SUBSTACK_CONTENT_CONVERTER", "SUBSTACK_HTTP_TIMEOUT", "SUBSTACK_USER_AGENT",
		"SUBSTACK_RPS", "SUBSTACK_BURST", "SUBSTACK_MAX_RETRIES",
		"HTTP_ADDR", "HTTP_CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	s := cfg.Substack
	if s.BaseDomain != "substack.com" || s.BatchDelay != 500*time.Millisecond || s.ContentLimit != 8000 {
		t.Errorf("unexpected substack defaults: %+v", s)
	}
	if s.ContentConverter != "plain" || s.HTTPTimeout != 30*time.Second {
		t.Errorf("unexpected client defaults: %+v", s)
	}
	if s.RequestsPerSecond != 4 || s.Burst != 4 || s.MaxRetries != 2 {
		t.Errorf("unexpected throttle defaults: %+v", s)
	}
	if cfg.HTTP.Addr != ":8080" || len(cfg.HTTP.CORSOrigins) != 1 || cfg.HTTP.CORSOrigins[0] != "*" {
		t.Errorf("unexpected http defaults: %+v", cfg.HTTP)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults: %+v", cfg.Log)
	}
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUBSTACK_BATCH_DELAY", "2s")
	t.Setenv("SUBSTACK_CONTENT_LIMIT", "100")
	t.Setenv("SUBSTACK_CONTENT_CONVERTER", "markdown")
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.test,https://b.test")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Substack.BatchDelay != 2*time.Second || cfg.Substack.ContentLimit != 100 || cfg.Substack.ContentConverter != "markdown" {
		t.Errorf("env not applied: %+v", cfg.Substack)
	}
	if strings.Join(cfg.HTTP.CORSOrigins, " ") != "https://a.test https://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.HTTP.CORSOrigins)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q", cfg.Log.Format)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
substack:
  batch_delay: 1s
  max_retries: 1
http:
  addr: "127.0.0.1:9090"
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("explicit path", func(t *testing.T) {
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Substack.BatchDelay != time.Second || cfg.Substack.MaxRetries != 1 {
			t.Errorf("file values not applied: %+v", cfg.Substack)
		}
		if cfg.HTTP.Addr != "127.0.0.1:9090" || cfg.Log.Level != "debug" {
			t.Errorf("file values not applied: %+v %+v", cfg.HTTP, cfg.Log)
		}
		if cfg.Substack.ContentLimit != 8000 {
			t.Errorf("defaults should fill unset fields, ContentLimit = %d", cfg.Substack.ContentLimit)
		}
	})

	t.Run("CONFIG_PATH", func(t *testing.T) {
		t.Setenv(PathEnv, path)
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.HTTP.Addr != "127.0.0.1:9090" {
			t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
		}
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("HTTP_ADDR", ":7070")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.HTTP.Addr != ":7070" {
			t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Substack: SubstackConfig{
				BaseDomain:        "substack.com",
				BatchDelay:        500 * time.Millisecond,
				ContentLimit:      8000,
				ContentConverter:  "plain",
				HTTPTimeout:       30 * time.Second,
				RequestsPerSecond: 4,
				Burst:             4,
				MaxRetries:        2,
			},
			HTTP: HTTPConfig{Addr: ":8080"},
			Log:  LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero delay allowed", mutate: func(c *Config) { c.Substack.BatchDelay = 0 }},
		{name: "negative delay", mutate: func(c *Config) { c.Substack.BatchDelay = -time.Second }, wantErr: "batch_delay"},
		{name: "zero content limit", mutate: func(c *Config) { c.Substack.ContentLimit = 0 }, wantErr: "content_limit"},
		{name: "unknown converter", mutate: func(c *Config) { c.Substack.ContentConverter = "rich" }, wantErr: "content_converter"},
		{name: "zero timeout", mutate: func(c *Config) { c.Substack.HTTPTimeout = 0 }, wantErr: "http_timeout"},
		{name: "zero rps", mutate: func(c *Config) { c.Substack.RequestsPerSecond = 0 }, wantErr: "requests_per_second"},
		{name: "zero burst", mutate: func(c *Config) { c.Substack.Burst = 0 }, wantErr: "burst"},
		{name: "negative retries", mutate: func(c *Config) { c.Substack.MaxRetries = -1 }, wantErr: "max_retries"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
