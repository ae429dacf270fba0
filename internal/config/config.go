// Package config loads crossfader's YAML configuration over built-in
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig `yaml:"server"`
	MIDI     MIDIConfig   `yaml:"midi"`
	Learn    LearnConfig  `yaml:"learn"`
	Log      LogConfig    `yaml:"log"`
	StateDir string       `yaml:"state_dir"`
}

type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	MaxConnections int           `yaml:"max_connections"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	PongTimeout    time.Duration `yaml:"pong_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

type MIDIConfig struct {
	Device       string        `yaml:"device"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Buffer       int           `yaml:"buffer"`
}

type LearnConfig struct {
	Window     time.Duration `yaml:"window"`
	MinRange   int           `yaml:"min_range"`
	MinChanges int           `yaml:"min_changes"`
}

type LogConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "localhost",
			Port:         8765,
			IdleTimeout:  time.Second,
			PongTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		MIDI: MIDIConfig{
			PollInterval: 10 * time.Millisecond,
			Buffer:       1024,
		},
		Learn: LearnConfig{
			Window:     5 * time.Second,
			MinRange:   20,
			MinChanges: 5,
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load reads path over the defaults. A missing file yields the defaults.
// The result is not validated; callers apply overrides first.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxConnections < 0 {
		errs = append(errs, errors.New("server.max_connections must not be negative"))
	}
	for name, d := range map[string]time.Duration{
		"server.idle_timeout":  c.Server.IdleTimeout,
		"server.pong_timeout":  c.Server.PongTimeout,
		"server.write_timeout": c.Server.WriteTimeout,
		"midi.poll_interval":   c.MIDI.PollInterval,
		"learn.window":         c.Learn.Window,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	if c.Learn.MinRange < 0 || c.Learn.MinChanges < 0 {
		errs = append(errs, errors.New("learn thresholds must not be negative"))
	}
	return errors.Join(errs...)
}
