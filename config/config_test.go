package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spiceqa/rvdispatch/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rvdispatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Registry.Strict)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "<defaults>", cfg.Source)
	assert.NotEmpty(t, cfg.Profiles.Store)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeFile(t, `
logging:
  level: DEBUG
  format: json
registry:
  strict: false
profiles:
  dir: ./vms
  glob: "**/*.yaml"
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Registry.Strict)
	assert.Equal(t, "./vms", cfg.Profiles.Dir)
	assert.Equal(t, "**/*.yaml", cfg.Profiles.Glob)
	assert.Equal(t, config.Default().Profiles.Store, cfg.Profiles.Store)
	assert.Equal(t, path, cfg.Source)

	opts := cfg.LoggingOptions()
	assert.Equal(t, "debug", opts.Level)
	assert.Equal(t, "json", opts.Format)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
		{"bad glob", "profiles:\n  glob: \"[\"\n", "profiles.glob"},
		{"empty store", "profiles:\n  store: \"  \"\n", "profiles.store"},
		{"not yaml", "logging: [\n", "parse config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Load(writeFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
