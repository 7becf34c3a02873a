// Package config loads the YAML configuration file of the v8value command.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config is the v8value command configuration.
type Config struct {
	MaxDepth    int     `yaml:"max_depth"`
	HostObjects string  `yaml:"host_objects"`
	Logging     Logging `yaml:"logging"`
	Decode      Decode  `yaml:"decode"`
	Encode      Encode  `yaml:"encode"`
}

// Logging selects the zap logger the command builds.
type Logging struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Decode holds the default formats of the decode command.
type Decode struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

// Encode holds the default formats of the encode command.
type Encode struct {
	From   string `yaml:"from"`
	Output string `yaml:"output"`
}

// Accepted format names.
var (
	WireFormats   = []string{"raw", "hex", "base64"}
	DumpFormats   = []string{"dump", "json", "cbor"}
	SourceFormats = []string{"json", "cbor"}
	HostModes     = []string{"none", "length-prefixed"}
	LogLevels     = []string{"debug", "info", "warn", "error"}
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		MaxDepth:    256,
		HostObjects: "none",
		Logging: Logging{
			Level: "warn",
		},
		Decode: Decode{
			Input:  "raw",
			Output: "dump",
		},
		Encode: Encode{
			From:   "json",
			Output: "raw",
		},
	}
}

// LoadConfig reads the file at path over the defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		path = abs
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, creating the directory if needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks every field against its accepted values.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	checks := []struct {
		field, value string
		allowed      []string
	}{
		{"host_objects", c.HostObjects, HostModes},
		{"logging.level", c.Logging.Level, LogLevels},
		{"decode.input", c.Decode.Input, WireFormats},
		{"decode.output", c.Decode.Output, DumpFormats},
		{"encode.from", c.Encode.From, SourceFormats},
		{"encode.output", c.Encode.Output, WireFormats},
	}
	for _, ch := range checks {
		if !slices.Contains(ch.allowed, ch.value) {
			return fmt.Errorf("%s: unknown value %q (want one of %v)", ch.field, ch.value, ch.allowed)
		}
	}
	return nil
}

// DefaultConfigPath returns the per-user config location, or "" when the
// user config directory is unknown.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "v8value", "config.yaml")
}
