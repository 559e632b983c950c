package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TestEnvironmentDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":memory:", cfg.DatabaseFilePath)
	assert.Equal(t, 0, cfg.ServerPort)
	assert.Equal(t, 10, cfg.ItemsPerPage)
	assert.NotEmpty(t, cfg.Hostname)
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("RODOKU_SERVER_PORT", "9999")
	t.Setenv("RODOKU_JWT_SECRET", "supersecret")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.ServerPort)
	assert.Equal(t, "supersecret", cfg.JWTSecret)
}

func TestNew_ConfigFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte("items_per_page: 25\nserver_host: 0.0.0.0\n"), 0600)
	require.NoError(t, err)

	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.ItemsPerPage)
	assert.Equal(t, "0.0.0.0", cfg.ServerHost)
}
