package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/raoulx24/irotate/internal/logging"
	"github.com/raoulx24/irotate/internal/schedule"
)

// ErrMissingFile means a watched path is unset or does not exist.
var ErrMissingFile = errors.New("missing file")

type Config struct {
	Target  TargetConfig  `yaml:"target"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
}

type TargetConfig struct {
	LogFile      string `yaml:"logFile"`
	SettingsFile string `yaml:"settingsFile"`
}

type WatchConfig struct {
	Mode         string        `yaml:"mode"`         // "auto", "poll", "fsnotify"
	PollInterval time.Duration `yaml:"pollInterval"` // e.g. 2s
	QueueSize    int           `yaml:"queueSize"`
	ProbeLimit   int           `yaml:"probeLimit"`
	Schedule     string        `yaml:"schedule"` // cron, empty disables
}

type LoggingConfig struct {
	Level      string `yaml:"level"`  // "info", "debug", etc.
	Format     string `yaml:"format"` // "json", "console"
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
}

func Default() *Config {
	return &Config{
		Watch: WatchConfig{
			Mode:         "auto",
			PollInterval: 2 * time.Second,
			QueueSize:    3,
			ProbeLimit:   100_000,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

func (l LoggingConfig) Options() logging.Options {
	return logging.Options{
		Level:      l.Level,
		Format:     l.Format,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
	}
}

// Validate checks everything that must hold before watching starts.
func (c *Config) Validate() error {
	for _, f := range []struct{ name, path string }{
		{"log file", c.Target.LogFile},
		{"settings file", c.Target.SettingsFile},
	} {
		if f.path == "" {
			return fmt.Errorf("%s not set: %w", f.name, ErrMissingFile)
		}
		if _, err := os.Stat(f.path); err != nil {
			return fmt.Errorf("%s %s: %w", f.name, f.path, ErrMissingFile)
		}
	}

	switch c.Watch.Mode {
	case "auto", "poll", "fsnotify":
	default:
		return fmt.Errorf("unknown watch mode %q", c.Watch.Mode)
	}
	if c.Watch.QueueSize < 1 {
		return fmt.Errorf("queueSize must be at least 1, got %d", c.Watch.QueueSize)
	}
	if c.Watch.ProbeLimit < 1 {
		return fmt.Errorf("probeLimit must be at least 1, got %d", c.Watch.ProbeLimit)
	}
	return schedule.Validate(c.Watch.Schedule)
}
