// Package config loads the agentdeck configuration file.
//
// Configuration is optional: a missing file yields pure defaults so the
// server can run unconfigured. When a targets list is present, dispatch
// validates requested targets against it; when absent, any target name
// is accepted and passed through to the wrapper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that overrides the
// configuration file location.
const EnvConfigPath = "AGENTDECK_CONFIG"

// Target describes one known worker kind the wrapper can launch.
type Target struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// Config is the root configuration for the agentdeck controller.
type Config struct {
	// DataDir holds the ledger, CRUD documents, history database,
	// and the instance lock.
	DataDir string `yaml:"data_dir"`
	// SessionsDir is where per-task session directories are created.
	SessionsDir string `yaml:"sessions_dir"`
	// Wrapper is the worker-launching executable. Relative names are
	// resolved against PATH at spawn time.
	Wrapper string `yaml:"wrapper"`
	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string `yaml:"log_level"`
	// Targets, when non-empty, is the closed set of dispatchable
	// worker kinds.
	Targets []Target `yaml:"targets,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	base := ".agentdeck"
	if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".agentdeck")
	}
	return &Config{
		DataDir:     base,
		SessionsDir: filepath.Join(base, "sessions"),
		Wrapper:     "agentdeck-wrapper",
		LogLevel:    "INFO",
	}
}

// Load reads configuration from path. An empty path falls back to the
// AGENTDECK_CONFIG environment variable; if that is also unset or the
// file does not exist, defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills unset fields from the default configuration.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.SessionsDir == "" {
		cfg.SessionsDir = filepath.Join(cfg.DataDir, "sessions")
	}
	if cfg.Wrapper == "" {
		cfg.Wrapper = def.Wrapper
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
}

func validate(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Targets))
	for _, t := range cfg.Targets {
		if t.Name == "" {
			return fmt.Errorf("target with empty name")
		}
		if seen[t.Name] {
			return fmt.Errorf("duplicate target %q", t.Name)
		}
		seen[t.Name] = true
		if t.TimeoutSeconds < 0 {
			return fmt.Errorf("target %q: negative timeout", t.Name)
		}
	}
	return nil
}

// FindTarget returns the named target and whether it exists.
func (c *Config) FindTarget(name string) (Target, bool) {
	for _, t := range c.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return Target{}, false
}

// KnowsTargets reports whether a closed target set is configured.
func (c *Config) KnowsTargets() bool { return len(c.Targets) > 0 }

// LockPath returns the instance lock location under the data dir.
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, "agentdeck.lock")
}

// HistoryPath returns the sqlite transition log location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}
