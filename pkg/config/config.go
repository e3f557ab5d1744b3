// Package config loads chatrelay settings from a TOML file, a .env file and
// the process environment, in that order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvUpstreamURL = "AI_API_URL"
	EnvAPIKey      = "AI_API_KEY"
	EnvListen      = "CHATRELAY_LISTEN"
	EnvRoute       = "CHATRELAY_ROUTE"
	EnvTimeout     = "CHATRELAY_TIMEOUT"
	EnvDebug       = "CHATRELAY_DEBUG"
)

// Config is the full chatrelay server configuration.
type Config struct {
	Listen   string   `toml:"listen"`
	Route    string   `toml:"route"`
	Timeout  Duration `toml:"timeout"`
	Debug    bool     `toml:"debug"`
	Upstream Upstream `toml:"upstream"`
}

// Upstream holds the completion endpoint and its bearer credential.
// A missing value is not a load error; the relay reports it per request.
type Upstream struct {
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
}

// Duration is a time.Duration that decodes from strings like "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Listen:  ":8080",
		Route:   "/api/chat",
		Timeout: Duration{2 * time.Minute},
	}
}

// Loader loads a Config from its sources.
type Loader struct {
	// Path is the TOML config file. Empty or missing files are skipped.
	Path string

	// EnvFile is a dotenv file whose values are added to the environment
	// without overriding variables that are already set. Missing files are
	// skipped.
	EnvFile string

	// Override, when set, is applied last. Command-line flags use it so
	// that they survive reloads.
	Override func(*Config)
}

// Load reads every source and returns the merged config.
func (l Loader) Load() (Config, error) {
	cfg := Default()

	if l.Path != "" {
		if _, err := toml.DecodeFile(l.Path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("parse config file %s: %w", l.Path, err)
		}
	}

	if l.EnvFile != "" {
		if err := godotenv.Load(l.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", l.EnvFile, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if l.Override != nil {
		l.Override(&cfg)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvUpstreamURL); v != "" {
		cfg.Upstream.URL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.Upstream.APIKey = v
	}
	if v := os.Getenv(EnvListen); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv(EnvRoute); v != "" {
		cfg.Route = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		if err := cfg.Timeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: invalid boolean %q", EnvDebug, v)
		}
		cfg.Debug = debug
	}
	return nil
}
