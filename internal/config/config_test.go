package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadFiles_Defaults(t *testing.T) {
	cfg, err := LoadFiles(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "fs", cfg.Adapter)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, ".knowhub", cfg.SystemDir)
	assert.True(t, cfg.DevSafety)
	assert.Nil(t, cfg.Versioning)
	assert.Empty(t, cfg.Sources)
}

func TestLoadFiles_LaterFileWins(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global", FileName)
	vault := VaultPath(filepath.Join(dir, "vault"))

	writeFile(t, global, "adapter: sqlite\nformat: yaml\nlog_level: debug\n")
	writeFile(t, vault, "adapter: fs\nversioning: true\n")

	cfg, err := LoadFiles(global, vault)
	require.NoError(t, err)

	assert.Equal(t, "fs", cfg.Adapter)
	assert.Equal(t, "yaml", cfg.Format, "keys absent from the vault file keep the global value")
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	require.NotNil(t, cfg.Versioning)
	assert.True(t, *cfg.Versioning)
	assert.Equal(t, []string{global, vault}, cfg.Sources)
}

func TestLoadFiles_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "adapter: sqlite\n")

	t.Setenv("KNOWHUB_ADAPTER", "memory")
	t.Setenv("KNOWHUB_READ_ONLY", "true")
	t.Setenv("KNOWHUB_VERSIONING", "false")

	cfg, err := LoadFiles(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Adapter)
	assert.True(t, cfg.ReadOnly)
	require.NotNil(t, cfg.Versioning)
	assert.False(t, *cfg.Versioning)
}

func TestLoadFiles_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "adapter: [unclosed\n")

	_, err := LoadFiles(path)
	assert.Error(t, err)
}

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)
	on := true

	cfg := Default()
	cfg.Adapter = "sqlite"
	cfg.Versioning = &on
	require.NoError(t, Write(path, cfg))

	loaded, err := LoadFiles(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", loaded.Adapter)
	require.NotNil(t, loaded.Versioning)
	assert.True(t, *loaded.Versioning)
}

func TestLevel_Unknown(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.Options(), 6)

	off := false
	cfg.Versioning = &off
	assert.Len(t, cfg.Options(), 7)
}
