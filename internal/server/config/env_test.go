package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"NOTIFIER", "ses")
	t.Setenv(EnvPrefix+"EMAIL_SOURCE", "auth@example.com")
	t.Setenv(EnvPrefix+"REQUEST_TIMEOUT", "2s")

	cfg := &Config{AppName: "kept"}
	parseEnv(cfg)

	assert.Equal(t, NotifierSES, cfg.Notifier)
	assert.Equal(t, "auth@example.com", cfg.EmailSource)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "kept", cfg.AppName)
}

func TestParseEnv_BadDurationPanics(t *testing.T) {
	t.Setenv(EnvPrefix+"REQUEST_TIMEOUT", "later")

	assert.Panics(t, func() { parseEnv(&Config{}) })
}

func TestLoadEnvFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GOPHAUTH_TABLE_PREFIX=test_\n"), 0o600))

	// registers cleanup so the loaded variable does not leak into other tests
	t.Setenv(EnvPrefix+"TABLE_PREFIX", "")
	require.NoError(t, os.Unsetenv(EnvPrefix+"TABLE_PREFIX"))

	os.Args = []string{"testbin", "-env", path}
	loadEnvFile()

	cfg := &Config{}
	parseEnv(cfg)
	assert.Equal(t, "test_", cfg.TablePrefix)
}

func TestLoadEnvFile_MissingFilePanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"testbin", "-env", filepath.Join(t.TempDir(), "absent.env")}
	assert.Panics(t, loadEnvFile)
}
