package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 256, cfg.MaxDepth)
	assert.Equal(t, "none", cfg.HostObjects)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "raw", cfg.Decode.Input)
	assert.Equal(t, "dump", cfg.Decode.Output)
	assert.Equal(t, "json", cfg.Encode.From)
	assert.Equal(t, "raw", cfg.Encode.Output)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "max_depth: 32\ndecode:\n  output: json\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 32, cfg.MaxDepth)
		assert.Equal(t, "json", cfg.Decode.Output)
		assert.Equal(t, "raw", cfg.Decode.Input)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("max_depth: [1"), 0600))

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "failed to parse")
	})

	t.Run("unknown format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("encode:\n  output: xml\n"), 0600))

		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "encode.output")
	})
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.HostObjects = "length-prefixed"
	cfg.Logging.Development = true

	require.NoError(t, SaveConfig(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }, "max_depth"},
		{"host mode", func(c *Config) { c.HostObjects = "custom" }, "host_objects"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"decode input", func(c *Config) { c.Decode.Input = "json" }, "decode.input"},
		{"encode from", func(c *Config) { c.Encode.From = "dump" }, "encode.from"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.field)
		})
	}
}
