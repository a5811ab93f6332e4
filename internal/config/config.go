// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

// Package config loads Clipmark configuration from a YAML file and command
// line flags. Flags win over the file; the DATABASE_URL environment variable
// wins for the database DSN.
package config

import (
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is the full runtime configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Database      DatabaseConfig      `koanf:"database"`
	GitHub        GitHubConfig        `koanf:"github"`
	Logging       LoggingConfig       `koanf:"logging"`
	Observability ObservabilityConfig `koanf:"observability"`
	Session       SessionConfig       `koanf:"session"`
}

// ServerConfig configures the API listener.
type ServerConfig struct {
	Addr          string `koanf:"addr"`
	SecureCookies bool   `koanf:"secure_cookies"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// GitHubConfig configures the OAuth app. Empty ClientID disables the
// GitHub login routes.
type GitHubConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	RedirectURL  string `koanf:"redirect_url"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ObservabilityConfig configures the metrics/health listener.
type ObservabilityConfig struct {
	Addr string `koanf:"addr"`
}

// SessionConfig configures the expired-session sweeper.
type SessionConfig struct {
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// RegisterFlags declares the command line flags Load reads. Flag names use
// dots so posflag maps them straight onto config keys.
func RegisterFlags(f *pflag.FlagSet) {
	f.String("server.addr", ":8080", "API listen address")
	f.Bool("server.secure_cookies", true, "set the Secure attribute on cookies")
	f.String("database.url", "postgres://localhost:5432/clipmark", "PostgreSQL connection URL")
	f.String("github.client_id", "", "GitHub OAuth client ID")
	f.String("github.client_secret", "", "GitHub OAuth client secret")
	f.String("github.redirect_url", "", "GitHub OAuth redirect URL")
	f.String("logging.level", "info", "log level (debug, info, warn, error)")
	f.String("logging.format", "json", "log format (json, text)")
	f.String("observability.addr", ":9090", "metrics/health listen address")
	f.Duration("session.sweep_interval", time.Hour, "expired-session sweep interval")
}

// Load merges the config file (when path is non-empty or the file exists)
// and the flag set, then applies the DATABASE_URL override.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_PARSE_FAILED").Wrap(err)
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		cfg.Database.URL = dsn
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return oops.Code("CONFIG_INVALID").
			With("format", c.Logging.Format).
			Errorf("logging.format must be json or text")
	}
	if c.Session.SweepInterval <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("session.sweep_interval must be positive")
	}
	return nil
}

// GitHubEnabled reports whether the OAuth routes should be mounted.
func (c *Config) GitHubEnabled() bool {
	return c.GitHub.ClientID != "" && c.GitHub.ClientSecret != ""
}
