// Package config loads the TOML service configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
)

type Config struct {
	Port int
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	// storage
	DBPath string `toml:"db_path"`
	// capture
	CameraID int `toml:"camera_id"`
	// motivation
	PluginDir        string `toml:"plugin_dir"`
	GeneratorPlugin  string `toml:"generator_plugin"`
	GeneratorTimeout string `toml:"generator_timeout"`
	// ui
	TrayEnabled bool `toml:"tray_enabled"`
	// per exercise threshold overrides
	Profiles map[string]exercise.Override `toml:"profiles"`
}

// Timeout returns the generator timeout, falling back to def when unset.
func (c *Config) Timeout(def time.Duration) (time.Duration, error) {
	if c.GeneratorTimeout == "" {
		return def, nil
	}
	d, err := time.ParseDuration(c.GeneratorTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid generator_timeout %q: %w", c.GeneratorTimeout, err)
	}
	return d, nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the section for env.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config %s has no section for env %s", path, env)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.DBPath == "" {
		c.DBPath = "fitflow.db"
	}
	if c.PluginDir == "" {
		c.PluginDir = "plugins"
	}
}
