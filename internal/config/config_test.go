package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefaultOnMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.xml")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8090", cfg.GetServerAddr())
	assert.Equal(t, 30*time.Second, cfg.ScriptTimeout())

	// Relative storage paths are anchored at the config directory.
	assert.Equal(t, filepath.Join(dir, "data"), cfg.Storage.DataDirectory)
	assert.Equal(t, filepath.Join(dir, "data", "store"), cfg.Storage.StoreDirectory)
}

func TestLoadConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.xml")

	cfg := DefaultConfig()
	cfg.Server.Port = 9999
	cfg.Chart.ScriptTimeoutSeconds = 5
	cfg.Advanced.LogLevel = "debug"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, loaded.Server.Port)
	assert.Equal(t, 5*time.Second, loaded.ScriptTimeout())
	assert.Equal(t, "debug", loaded.Advanced.LogLevel)
}

func TestLoadConfig_MalformedXML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.xml")
	require.NoError(t, os.WriteFile(path, []byte("<SalesVisualizer><Server>"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.xml")
	require.NoError(t, DefaultConfig().Save(path))

	t.Setenv("PORT", "7070")
	override := filepath.Join(dir, "override")
	t.Setenv("DATA_DIR", override)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, override, cfg.Storage.DataDirectory)
	assert.Equal(t, filepath.Join(override, "store"), cfg.Storage.StoreDirectory)
	assert.Equal(t, filepath.Join(override, "metadata.db"), cfg.Storage.DatabasePath)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.resolvePaths(dir)

	require.NoError(t, cfg.EnsureDirectories())
	assert.DirExists(t, cfg.Storage.DataDirectory)
	assert.DirExists(t, cfg.Storage.StoreDirectory)
}
