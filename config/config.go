// Package config holds idlectl's own settings (daemon address, poll
// cadence), stored as YAML under the user config directory.
package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the client-side configuration file. Zero values fall back to
// the defaults at read time, so a partial file is fine.
type Config struct {
	Addr             string `yaml:"addr,omitempty"`
	StatusPollMillis int    `yaml:"status_poll_millis,omitempty"`
	LogPollMillis    int    `yaml:"log_poll_millis,omitempty"`
}

const (
	defaultStatusPollMillis = 500
	defaultLogPollMillis    = 1000

	// LogPollStagger delays the first log poll so it lands between status
	// ticks instead of on top of one.
	LogPollStagger = 300 * time.Millisecond
)

func Default() Config {
	return Config{
		StatusPollMillis: defaultStatusPollMillis,
		LogPollMillis:    defaultLogPollMillis,
	}
}

// StatusPoll returns the status polling period, floored to keep a
// misconfigured file from hot-looping.
func (c Config) StatusPoll() time.Duration {
	return millis(c.StatusPollMillis, defaultStatusPollMillis, 100)
}

// LogPoll returns the log polling period.
func (c Config) LogPoll() time.Duration {
	return millis(c.LogPollMillis, defaultLogPollMillis, 250)
}

func millis(value, fallback, floor int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	if value < floor {
		value = floor
	}
	return time.Duration(value) * time.Millisecond
}

// Dir resolves idlectl's per-user state directory.
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "idlectl")
}

// Path is the config file location.
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the file at path, falling back to defaults on any problem;
// a missing or broken config never blocks startup. The IDLECTL_ADDR
// environment variable overrides the stored address.
func Load(path string) Config {
	cfg := Default()
	if data, err := os.ReadFile(path); err == nil {
		var file Config
		if err := yaml.Unmarshal(data, &file); err == nil {
			merge(&cfg, file)
		}
	}
	if addr := os.Getenv("IDLECTL_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	return cfg
}

func merge(dst *Config, src Config) {
	if src.Addr != "" {
		dst.Addr = src.Addr
	}
	if src.StatusPollMillis > 0 {
		dst.StatusPollMillis = src.StatusPollMillis
	}
	if src.LogPollMillis > 0 {
		dst.LogPollMillis = src.LogPollMillis
	}
}

// Save writes cfg to path, creating the directory as needed.
func Save(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
