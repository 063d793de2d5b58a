// Package config loads the harness configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/spiceqa/rvdispatch/logging"
)

// DefaultFileName is read from the working directory when no path is given.
const DefaultFileName = "rvdispatch.yaml"

// Config holds the user-adjustable settings of the harness.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Registry RegistryConfig `yaml:"registry"`
	Profiles ProfilesConfig `yaml:"profiles"`

	// Source is where the configuration came from, a file path or "<defaults>".
	Source string `yaml:"-"`
}

// LoggingConfig defines log verbosity and formatting.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Journal bool   `yaml:"journal"`
}

// RegistryConfig controls how registrations are accepted.
type RegistryConfig struct {
	// Strict rejects duplicate registrations. When false the last one wins.
	Strict bool `yaml:"strict"`
}

// ProfilesConfig locates VM profiles.
type ProfilesConfig struct {
	Store string `yaml:"store"`
	Dir   string `yaml:"dir"`
	Glob  string `yaml:"glob"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Registry: RegistryConfig{
			Strict: true,
		},
		Profiles: ProfilesConfig{
			Store: defaultStorePath(),
			Dir:   "profiles",
			Glob:  "**/*.{yaml,yml,json,cfg}",
		},
		Source: "<defaults>",
	}
}

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "rvdispatch", "profiles.yaml")
	}
	return filepath.Join(".rvdispatch", "profiles.yaml")
}

// Load reads path over the defaults. An empty path tries DefaultFileName and
// tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	candidate := strings.TrimSpace(path)
	explicit := candidate != ""
	if !explicit {
		candidate = DefaultFileName
	}

	data, err := os.ReadFile(candidate)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file %q: %w", candidate, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %q: %w", candidate, err)
	}
	cfg.Source = candidate
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config file %q: %w", candidate, err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Profiles.Store = strings.TrimSpace(c.Profiles.Store)
	c.Profiles.Dir = strings.TrimSpace(c.Profiles.Dir)
	c.Profiles.Glob = strings.TrimSpace(c.Profiles.Glob)
}

// Validate ensures the values are usable.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "", "text", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported format %q", c.Logging.Format)
	}
	if c.Profiles.Store == "" {
		return errors.New("profiles.store must not be empty")
	}
	if c.Profiles.Glob != "" && !doublestar.ValidatePattern(c.Profiles.Glob) {
		return fmt.Errorf("profiles.glob: invalid pattern %q", c.Profiles.Glob)
	}
	return nil
}

// LoggingOptions converts the logging section for logging.New.
func (c Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level:   c.Logging.Level,
		Format:  c.Logging.Format,
		Journal: c.Logging.Journal,
	}
}
