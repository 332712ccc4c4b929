// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads tortoise settings from defaults, the tortoise.yaml
// file, TORTOISE_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RuntimeOS is the operating system used to pick config locations.
// Tests override it.
var RuntimeOS = runtime.GOOS

// LegacyPasswordEnv is the variable older releases read the API password from.
const LegacyPasswordEnv = "ECLAIR_TORTOISE_API_PASSWORD"

// Config is the full set of runtime settings.
type Config struct {
	Node     NodeConfig    `mapstructure:"node" yaml:"node"`
	State    StateConfig   `mapstructure:"state" yaml:"state"`
	Log      LogConfig     `mapstructure:"log" yaml:"log"`
	Refresh  RefreshConfig `mapstructure:"refresh" yaml:"refresh"`
	UI       UIConfig      `mapstructure:"ui" yaml:"ui"`
	Language string        `mapstructure:"language" yaml:"language"`
	Metrics  MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// NodeConfig describes how to reach the Eclair API.
type NodeConfig struct {
	URL      string        `mapstructure:"url" yaml:"url"`
	User     string        `mapstructure:"user" yaml:"user"`
	Password string        `mapstructure:"password" yaml:"password,omitempty"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	DumpDir  string        `mapstructure:"dump_dir" yaml:"dump_dir,omitempty"`
}

// StateConfig selects the local state database.
type StateConfig struct {
	Type string `mapstructure:"type" yaml:"type"`
	DSN  string `mapstructure:"dsn" yaml:"dsn"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

type RefreshConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

type UIConfig struct {
	Tick time.Duration `mapstructure:"tick" yaml:"tick"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Defaults returns the built-in default values keyed by their dotted path.
func Defaults() map[string]any {
	return map[string]any{
		"node.url":         "http://127.0.0.1:8080",
		"node.user":        "",
		"node.password":    "",
		"node.timeout":     10 * time.Second,
		"node.dump_dir":    "",
		"state.type":       "sqlite",
		"state.dsn":        "./tortoise.db",
		"log.level":        "warn",
		"log.file":         "./eclair-tortoise.log",
		"refresh.interval": 20 * time.Second,
		"ui.tick":          time.Second,
		"language":         "en",
		"metrics.addr":     "127.0.0.1:9737",
	}
}

// Default returns a Config populated from Defaults.
func Default() Config {
	return Config{
		Node:     NodeConfig{URL: "http://127.0.0.1:8080", Timeout: 10 * time.Second},
		State:    StateConfig{Type: "sqlite", DSN: "./tortoise.db"},
		Log:      LogConfig{Level: "warn", File: "./eclair-tortoise.log"},
		Refresh:  RefreshConfig{Interval: 20 * time.Second},
		UI:       UIConfig{Tick: time.Second},
		Language: "en",
		Metrics:  MetricsConfig{Addr: "127.0.0.1:9737"},
	}
}

// FlagKeys maps command-line flag names to config keys.
var FlagKeys = map[string]string{
	"url":        "node.url",
	"user":       "node.user",
	"password":   "node.password",
	"dump-dir":   "node.dump_dir",
	"state":      "state.dsn",
	"state-type": "state.type",
	"level":      "log.level",
	"logfile":    "log.file",
	"interval":   "refresh.interval",
	"lang":       "language",
	"listen":     "metrics.addr",
}

// DefaultConfigPath returns where tortoise.yaml lives for the current user,
// or system-wide when system is true.
func DefaultConfigPath(system bool) (string, error) {
	var dir string
	if system {
		switch RuntimeOS {
		case "windows":
			dir = filepath.Join(os.Getenv("ProgramData"), "Tortoise")
		default:
			dir = "/etc/tortoise"
		}
	} else {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		dir = filepath.Join(base, "tortoise")
	}
	return filepath.Join(dir, "tortoise.yaml"), nil
}

// IsNotFound reports whether err only says that no config file was found.
func IsNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf)
}

// LoadConfig builds a T from defaults, config file, environment and the
// flags of cmd. When no config file exists the populated value is returned
// together with a viper.ConfigFileNotFoundError.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("tortoise")
	v.SetConfigType("yaml")
	if explicitPath != nil && *explicitPath != "" {
		if _, err := os.Stat(*explicitPath); err != nil {
			return c, fmt.Errorf("config file: %w", err)
		}
		v.SetConfigFile(*explicitPath)
	}
	if p, err := DefaultConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(p))
	}
	if p, err := DefaultConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(p))
	}
	v.AddConfigPath(".")

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		if !IsNotFound(err) {
			return c, fmt.Errorf("read config: %w", err)
		}
		notFound = err
	}

	v.SetEnvPrefix("tortoise")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.AllowEmptyEnv(false)
	if err := v.BindEnv("node.password", "TORTOISE_NODE_PASSWORD", LegacyPasswordEnv); err != nil {
		return c, err
	}

	if cmd != nil {
		if err := bindFlags(v, cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	return c, notFound
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		key, ok := FlagKeys[f.Name]
		if !ok {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

var knownStateTypes = map[string]bool{"sqlite": true, "postgres": true, "mysql": true}

// Validate checks the settings the monitor cannot run without.
func (c Config) Validate() error {
	if c.Node.URL == "" {
		return errors.New("node url is empty")
	}
	u, err := url.Parse(c.Node.URL)
	if err != nil {
		return fmt.Errorf("node url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("node url %q: scheme must be http or https", c.Node.URL)
	}
	if c.Node.Password == "" {
		return fmt.Errorf("node password is empty; set TORTOISE_NODE_PASSWORD or %s", LegacyPasswordEnv)
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", c.Refresh.Interval)
	}
	if !knownStateTypes[c.State.Type] {
		return fmt.Errorf("unsupported state type %q", c.State.Type)
	}
	return nil
}

// WriteConfigFile stores c as YAML at the user or system location.
// The file is created with mode 0600 since it may hold the API password.
func WriteConfigFile[T any](c *T, system bool) (string, error) {
	path, err := DefaultConfigPath(system)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
