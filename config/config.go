// Package config loads client settings from defaults, an optional YAML
// file and CARBONE_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/adamwoolhether/carbone/client"
)

// EnvPrefix is stripped from environment variables before they are
// mapped onto keys. A double underscore marks nesting:
// CARBONE_RETRY__MAX_ATTEMPTS sets retry.max_attempts.
const EnvPrefix = "CARBONE_"

// Config mirrors the settings a [client.Client] is built from.
type Config struct {
	APIKey     string            `koanf:"api_key"`
	BaseURL    string            `koanf:"base_url"`
	APIVersion string            `koanf:"api_version"`
	Timeout    time.Duration     `koanf:"timeout"`
	UserAgent  string            `koanf:"user_agent"`
	Headers    map[string]string `koanf:"headers"`
	Retry      RetryConfig       `koanf:"retry"`
	Throttle   ThrottleConfig    `koanf:"throttle"`

	// ReturnBuffer is read for compatibility with existing configuration
	// files. Callers pick buffered or streamed retrieval by calling
	// FetchTemplate or OpenTemplate, so it has no effect.
	ReturnBuffer bool `koanf:"return_buffer"`
}

// RetryConfig holds the retry policy settings.
type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts"`
	Interval    time.Duration `koanf:"interval"`
}

// ThrottleConfig enables client-side rate limiting when RPS is positive.
type ThrottleConfig struct {
	RPS   int `koanf:"rps"`
	Burst int `koanf:"burst"`
}

// Load reads the configuration. path may be empty, in which case only
// defaults and the environment are consulted; a named file must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return strings.ReplaceAll(key, "__", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"base_url":           client.DefaultBaseURL,
		"api_version":        client.DefaultAPIVersion,
		"timeout":            client.DefaultTimeout.String(),
		"retry.max_attempts": 2,
		"retry.interval":     "0s",
		"return_buffer":      true,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// Options converts the configuration into client options. Validation is
// left to [client.Build].
func (c *Config) Options() []client.Option {
	opts := []client.Option{
		client.WithBaseURL(c.BaseURL),
		client.WithAPIVersion(c.APIVersion),
		client.WithTimeout(c.Timeout),
		client.WithRetry(c.Retry.MaxAttempts, c.Retry.Interval),
	}

	if c.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(c.UserAgent))
	}

	if len(c.Headers) > 0 {
		opts = append(opts, client.WithHeaders(c.Headers))
	}

	if c.Throttle.RPS > 0 {
		burst := c.Throttle.Burst
		if burst <= 0 {
			burst = c.Throttle.RPS
		}
		opts = append(opts, client.WithThrottle(c.Throttle.RPS, burst))
	}

	return opts
}

// NewClient builds a client from the configuration. extra options are
// applied after the loaded ones.
func (c *Config) NewClient(extra ...client.Option) (*client.Client, error) {
	return client.Build(c.APIKey, append(c.Options(), extra...)...)
}
