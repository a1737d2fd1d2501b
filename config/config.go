// Package config loads the mountd server configuration and its mount table.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/en9inerd/go-mount/mount"
)

// EnvPrefix is the prefix of environment overrides; "__" separates levels
// (MOUNTD_SERVER__PORT sets server.port).
const EnvPrefix = "MOUNTD_"

// Config is the full mountd configuration.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Mounts  []MountConfig `koanf:"mounts"`
}

// ServerConfig holds listener and request limits.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	MaxBodyBytes    int64         `koanf:"max_body_bytes"`
	MaxInFlight     int64         `koanf:"max_in_flight"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // auto, text, json
}

// MetricsConfig enables the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// TracingConfig enables OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// MountConfig is one mount point. Exactly one of Static, Proxy, Respond may
// be set; a mount with none of them only hosts its nested Mounts.
//
// Prefix is a regular expression anchored at the start of the path, so
// metacharacters must be escaped: "/v1\.0" matches only "/v1.0" while
// "/v1.0" also matches "/v1x0", and "/c++" is rejected as invalid.
type MountConfig struct {
	Prefix    string           `koanf:"prefix"`
	Policy    string           `koanf:"policy"` // terminal, non-terminal, filter
	Headers   []string         `koanf:"headers"`
	RateLimit *RateLimitConfig `koanf:"rate_limit"`
	Static    *StaticConfig    `koanf:"static"`
	Proxy     *ProxyConfig     `koanf:"proxy"`
	Respond   *RespondConfig   `koanf:"respond"`
	Mounts    []MountConfig    `koanf:"mounts"`
}

// RateLimitConfig limits a mount to RPS requests per second with bursts of
// up to Burst.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// StaticConfig serves files from Dir.
type StaticConfig struct {
	Dir string `koanf:"dir"`
}

// ProxyConfig forwards requests to Upstream.
type ProxyConfig struct {
	Upstream string `koanf:"upstream"`
}

// RespondConfig answers with a fixed response.
type RespondConfig struct {
	Status      int    `koanf:"status"`
	Body        string `koanf:"body"`
	ContentType string `koanf:"content_type"`
}

// Load reads path (skipped when empty or missing) and then environment
// overrides, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, errors.Wrapf(err, "load config file %s", path)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load environment")
	}

	setDefault(k, "server.port", 8080)
	setDefault(k, "server.shutdown_timeout", "10s")
	setDefault(k, "log.level", "info")
	setDefault(k, "log.format", "auto")
	setDefault(k, "metrics.path", "/metrics")
	setDefault(k, "tracing.service_name", "mountd")

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefault(k *koanf.Koanf, key string, value any) {
	if !k.Exists(key) {
		_ = k.Set(key, value)
	}
}

// Validate checks the configuration without touching the file system.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Log.Format {
	case "auto", "text", "json":
	default:
		return errors.Errorf("log.format %q: want auto, text or json", c.Log.Format)
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.Errorf("metrics.path %q must start with /", c.Metrics.Path)
	}
	return validateMounts("mounts", c.Mounts)
}

func validateMounts(where string, mounts []MountConfig) error {
	for i, m := range mounts {
		at := where + "[" + strconv.Itoa(i) + "]"
		if m.Prefix == "" {
			return errors.Errorf("%s: prefix is required", at)
		}
		if err := mount.CheckPrefix(m.Prefix); err != nil {
			return errors.Wrap(err, at)
		}
		if _, err := mount.ParsePolicy(m.Policy); err != nil {
			return errors.Wrap(err, at)
		}
		targets := 0
		for _, set := range []bool{m.Static != nil, m.Proxy != nil, m.Respond != nil} {
			if set {
				targets++
			}
		}
		if targets > 1 {
			return errors.Errorf("%s (%s): static, proxy and respond are mutually exclusive", at, m.Prefix)
		}
		if targets == 0 && len(m.Mounts) == 0 {
			return errors.Errorf("%s (%s): nothing to serve", at, m.Prefix)
		}
		if m.Static != nil && m.Static.Dir == "" {
			return errors.Errorf("%s (%s): static.dir is required", at, m.Prefix)
		}
		if m.Proxy != nil && m.Proxy.Upstream == "" {
			return errors.Errorf("%s (%s): proxy.upstream is required", at, m.Prefix)
		}
		if rl := m.RateLimit; rl != nil && (rl.RPS <= 0 || rl.Burst < 0) {
			return errors.Errorf("%s (%s): rate_limit needs rps > 0 and burst >= 0", at, m.Prefix)
		}
		if err := validateMounts(at+".mounts", m.Mounts); err != nil {
			return err
		}
	}
	return nil
}
