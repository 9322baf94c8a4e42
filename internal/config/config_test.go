package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TASKDECK_BACKEND_URL", "https://example.supabase.co")
	t.Setenv("TASKDECK_ANON_KEY", "anon-key")
}

func TestNew_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := New(WithSkipDotenv(true))
	require.NoError(t, err)

	assert.Equal(t, "https://example.supabase.co", cfg.BackendURL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://taskdeck.app/reset-password", cfg.ResetRedirectURL)
	assert.NotEmpty(t, cfg.StateDir)
}

func TestNew_MissingBackendURL(t *testing.T) {
	t.Setenv("TASKDECK_BACKEND_URL", "")
	t.Setenv("TASKDECK_ANON_KEY", "anon-key")

	_, err := New(WithSkipDotenv(true))
	require.Error(t, err)
}

func TestNew_InvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TASKDECK_LOG_LEVEL", "verbose")

	_, err := New(WithSkipDotenv(true))
	require.Error(t, err)
}

func TestNew_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TASKDECK_LOG_LEVEL", "debug")
	t.Setenv("TASKDECK_RESET_REDIRECT_URL", "https://other.example.com/reset")

	cfg, err := New(WithSkipDotenv(true))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://other.example.com/reset", cfg.ResetRedirectURL)
}

func TestWithStateDir_WinsOverEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TASKDECK_STATE_DIR", "/tmp/from-env")
	dir := t.TempDir()

	cfg, err := New(WithSkipDotenv(true), WithStateDir(dir))
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.StateDir)
}

func TestDefaultStateDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", AppName), DefaultStateDir())
}

func TestSessionFileLifecycle(t *testing.T) {
	cfg := &Config{StateDir: filepath.Join(t.TempDir(), "nested")}

	assert.False(t, cfg.HasSession())

	require.NoError(t, cfg.EnsureStateDir())
	info, err := os.Stat(cfg.StateDir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())

	require.NoError(t, os.WriteFile(cfg.SessionPath(), []byte("{}"), 0600))
	assert.True(t, cfg.HasSession())

	require.NoError(t, cfg.RemoveSession())
	assert.False(t, cfg.HasSession())
}
