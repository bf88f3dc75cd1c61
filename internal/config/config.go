// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

// Package config loads marquee configuration from defaults, a YAML file,
// command-line flags and the environment, in increasing precedence.
package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/marquee/marquee/internal/logging"
)

// MinSecretLength is the shortest accepted signing secret, in bytes.
const MinSecretLength = 32

// Config is the complete marquee configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http" envPrefix:"HTTP_"`
	Metrics  MetricsConfig  `koanf:"metrics" envPrefix:"METRICS_"`
	Database DatabaseConfig `koanf:"database" envPrefix:"DATABASE_"`
	Auth     AuthConfig     `koanf:"auth" envPrefix:"AUTH_"`
	Log      LogConfig      `koanf:"log" envPrefix:"LOG_"`
	CORS     CORSConfig     `koanf:"cors" envPrefix:"CORS_"`
}

// HTTPConfig configures the public API listener.
type HTTPConfig struct {
	Addr            string        `koanf:"addr" env:"ADDR"`
	RequestTimeout  time.Duration `koanf:"request_timeout" env:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// LegacyStatus keeps the 200 {success:false} replies of the session
	// routes instead of 401/409/400.
	LegacyStatus bool `koanf:"legacy_status" env:"LEGACY_STATUS"`
}

// MetricsConfig configures the observability listener.
type MetricsConfig struct {
	Addr string `koanf:"addr" env:"ADDR"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL             string `koanf:"url" env:"URL"`
	ConnectAttempts int    `koanf:"connect_attempts" env:"CONNECT_ATTEMPTS"`
	AutoMigrate     bool   `koanf:"auto_migrate" env:"AUTO_MIGRATE"`
}

// AuthConfig configures sessions and bearer tokens.
type AuthConfig struct {
	// Secret is used for both signers when the split secrets are unset.
	Secret        string        `koanf:"secret" env:"SECRET"`
	SessionSecret string        `koanf:"session_secret" env:"SESSION_SECRET"`
	TokenSecret   string        `koanf:"token_secret" env:"TOKEN_SECRET"`
	SessionTTL    time.Duration `koanf:"session_ttl" env:"SESSION_TTL"`
	SessionSweep  time.Duration `koanf:"session_sweep" env:"SESSION_SWEEP"`
	TokenValidity time.Duration `koanf:"token_validity" env:"TOKEN_VALIDITY"`
	CookieSecure  bool          `koanf:"cookie_secure" env:"COOKIE_SECURE"`
}

// SessionSigningSecret returns the secret that signs session cookies.
func (a AuthConfig) SessionSigningSecret() string {
	if a.SessionSecret != "" {
		return a.SessionSecret
	}
	return a.Secret
}

// TokenSigningSecret returns the secret that signs bearer tokens.
func (a AuthConfig) TokenSigningSecret() string {
	if a.TokenSecret != "" {
		return a.TokenSecret
	}
	return a.Secret
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `koanf:"level" env:"LEVEL"`
	Format string `koanf:"format" env:"FORMAT"`
}

// CORSConfig configures cross-origin access to the API.
type CORSConfig struct {
	// AllowedOrigins are glob patterns matched against the Origin header.
	AllowedOrigins []string `koanf:"allowed_origins" env:"ALLOWED_ORIGINS"`
}

// Default returns the compiled-in configuration.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            ":3000",
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			LegacyStatus:    true,
		},
		Metrics: MetricsConfig{Addr: "127.0.0.1:9100"},
		Database: DatabaseConfig{
			ConnectAttempts: 5,
		},
		Auth: AuthConfig{
			SessionTTL:    24 * time.Hour,
			SessionSweep:  10 * time.Minute,
			TokenValidity: 604800 * time.Second,
		},
		Log:  LogConfig{Level: "info", Format: "json"},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

// RegisterFlags adds the overridable settings to flags, with compiled defaults.
// Secrets are not flags; they come from the file or environment.
func RegisterFlags(flags *pflag.FlagSet) {
	d := Default()
	flags.String("http.addr", d.HTTP.Addr, "API listen address")
	flags.Duration("http.request_timeout", d.HTTP.RequestTimeout, "per-request timeout")
	flags.Bool("http.legacy_status", d.HTTP.LegacyStatus, "answer session failures with 200 {success:false}")
	flags.String("metrics.addr", d.Metrics.Addr, "observability listen address (empty disables)")
	flags.String("database.url", "", "PostgreSQL connection URL")
	flags.Bool("database.auto_migrate", d.Database.AutoMigrate, "apply pending migrations on start")
	flags.String("log.level", d.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log.format", d.Log.Format, "log format (json, text)")
	flags.StringSlice("cors.allowed_origins", d.CORS.AllowedOrigins, "allowed origin glob patterns")
}

// legacyEnv holds the unprefixed variables earlier deployments set.
type legacyEnv struct {
	DatabaseURL string `env:"DATABASE_URL"`
	MongoURI    string `env:"MONGODB_URI"`
	Port        string `env:"PORT"`
	Secret      string `env:"SECRET"`
	SessionKey  string `env:"SESSION_SECRET"`
	TokenKey    string `env:"TOKEN_SECRET"`
}

// Load builds a Config. path may be empty; a missing file is only an error
// when required is true. flags may be nil.
func Load(path string, required bool, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if required || !errors.Is(err, fs.ErrNotExist) {
				return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
			}
		}
	}
	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays the legacy variables and then the MARQUEE_* ones.
func applyEnv(cfg *Config) error {
	var legacy legacyEnv
	if err := env.Parse(&legacy); err != nil {
		return oops.Code("CONFIG_ENV_INVALID").Wrap(err)
	}
	switch {
	case legacy.DatabaseURL != "":
		cfg.Database.URL = legacy.DatabaseURL
	case legacy.MongoURI != "":
		cfg.Database.URL = legacy.MongoURI
	}
	if legacy.Port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(legacy.Port, ":")
	}
	if legacy.Secret != "" {
		cfg.Auth.Secret = legacy.Secret
	}
	if legacy.SessionKey != "" {
		cfg.Auth.SessionSecret = legacy.SessionKey
	}
	if legacy.TokenKey != "" {
		cfg.Auth.TokenSecret = legacy.TokenKey
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "MARQUEE_"}); err != nil {
		return oops.Code("CONFIG_ENV_INVALID").Wrap(err)
	}
	return nil
}

// Validate reports the first setting that would stop the server from
// running correctly.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return invalid("database.url", "database URL is required")
	}
	if c.Database.ConnectAttempts < 1 {
		return invalid("database.connect_attempts", "must be at least 1")
	}
	if c.HTTP.Addr == "" {
		return invalid("http.addr", "listen address is required")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return invalid("http.request_timeout", "must be positive")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return invalid("http.shutdown_timeout", "must be positive")
	}
	if err := checkSecret("auth.session_secret", c.Auth.SessionSigningSecret()); err != nil {
		return err
	}
	if err := checkSecret("auth.token_secret", c.Auth.TokenSigningSecret()); err != nil {
		return err
	}
	if c.Auth.SessionTTL <= 0 {
		return invalid("auth.session_ttl", "must be positive")
	}
	if c.Auth.SessionSweep <= 0 {
		return invalid("auth.session_sweep", "must be positive")
	}
	if c.Auth.TokenValidity <= 0 {
		return invalid("auth.token_validity", "must be positive")
	}
	if !logging.ValidFormat(c.Log.Format) {
		return invalid("log.format", "must be json or text")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "must be debug, info, warn or error")
	}
	return nil
}

func checkSecret(key, secret string) error {
	if secret == "" {
		return invalid(key, "secret is required (set SECRET or the split secrets)")
	}
	if len(secret) < MinSecretLength {
		return oops.Code("CONFIG_INVALID").
			With("key", key).
			With("min_length", MinSecretLength).
			Errorf("%s: secret must be at least %d bytes", key, MinSecretLength)
	}
	return nil
}

func invalid(key, msg string) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf("%s: %s", key, msg)
}
