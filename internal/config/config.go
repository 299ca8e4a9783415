// Package config loads substack-tools settings from an optional YAML file
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// PathEnv names the environment variable holding the YAML config path.
const PathEnv = "CONFIG_PATH"

// Config is the root configuration.
type Config struct {
	Substack SubstackConfig `yaml:"substack"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
}

// SubstackConfig tunes the Substack client and the tools built on it.
type SubstackConfig struct {
	BaseDomain string `yaml:"base_domain" env:"SUBSTACK_BASE_DOMAIN" env-default:"substack.com"`
	// BatchDelay is the pause between publications in a batch.
	BatchDelay time.Duration `yaml:"batch_delay" env:"SUBSTACK_BATCH_DELAY" env-default:"500ms"`
	// ContentLimit is the number of characters of content shown per post in listings.
	ContentLimit int `yaml:"content_limit" env:"SUBSTACK_CONTENT_LIMIT" env-default:"8000"`
	// ContentConverter is "plain" or "markdown".
	ContentConverter  string        `yaml:"content_converter" env:"SUBSTACK_CONTENT_CONVERTER" env-default:"plain"`
	HTTPTimeout       time.Duration `yaml:"http_timeout" env:"SUBSTACK_HTTP_TIMEOUT" env-default:"30s"`
	UserAgent         string        `yaml:"user_agent" env:"SUBSTACK_USER_AGENT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"SUBSTACK_RPS" env-default:"4"`
	Burst             int           `yaml:"burst" env:"SUBSTACK_BURST" env-default:"4"`
	MaxRetries        int           `yaml:"max_retries" env:"SUBSTACK_MAX_RETRIES" env-default:"2"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Addr        string   `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	CORSOrigins []string `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-separator:"," env-default:"*"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	// Format is "text", "json" or "compact".
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Load reads the configuration. The YAML file is taken from path, or from
// CONFIG_PATH when path is empty; without either only the environment is
// used. Environment variables override file values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(PathEnv)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	s := c.Substack
	var errs []error
	if strings.TrimSpace(s.BaseDomain) == "" {
		errs = append(errs, errors.New("substack.base_domain must not be empty"))
	}
	if s.BatchDelay < 0 {
		errs = append(errs, errors.New("substack.batch_delay must be >= 0"))
	}
	if s.ContentLimit <= 0 {
		errs = append(errs, errors.New("substack.content_limit must be > 0"))
	}
	if s.ContentConverter != "plain" && s.ContentConverter != "markdown" {
		errs = append(errs, fmt.Errorf("substack.content_converter must be plain or markdown, got %q", s.ContentConverter))
	}
	if s.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("substack.http_timeout must be > 0"))
	}
	if s.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("substack.requests_per_second must be > 0"))
	}
	if s.Burst <= 0 {
		errs = append(errs, errors.New("substack.burst must be > 0"))
	}
	if s.MaxRetries < 0 {
		errs = append(errs, errors.New("substack.max_retries must be >= 0"))
	}
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr must not be empty"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json", "compact":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text, json or compact, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
