package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.ServerURL)
	assert.Equal(t, "native", cfg.Platform)
	assert.Equal(t, filepath.Join("/data", "winelog", "winelog.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("/data", "winelog", "journal.db"), cfg.JournalPath)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "left-bottom-right-top", cfg.Layout)
	assert.Equal(t, "ios", cfg.LoginPlatform())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
server_url: https://file.example
platform: web
debounce: 400ms
log_level: info
`)
	t.Setenv("WINELOG_SERVER_URL", "https://env.example")
	t.Setenv("WINELOG_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example", cfg.ServerURL, "env wins over file")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "web", cfg.Platform, "file wins over defaults")
	assert.Equal(t, 400*time.Millisecond, cfg.Debounce)
	assert.Equal(t, "console", cfg.LogFormat, "defaults fill the rest")
	assert.Equal(t, "web", cfg.LoginPlatform())
}

func TestLoad_DebounceClamped(t *testing.T) {
	cfg, err := Load(writeConfig(t, "debounce: 2s\n"))
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.Debounce)

	t.Setenv("WINELOG_DEBOUNCE", "10ms")
	cfg, err = Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "unknown platform", content: "platform: desktop\n"},
		{name: "unknown log format", content: "log_format: xml\n"},
		{name: "unknown layout", content: "layout: center\n"},
		{name: "empty server", content: "server_url: \"\"\n"},
		{name: "invalid yaml", content: "server_url: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err, "an explicit path must exist")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WINELOG_CAMERA_DIR=/tmp/camera\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("WINELOG_CAMERA_DIR", "")
	require.NoError(t, os.Unsetenv("WINELOG_CAMERA_DIR"))

	require.NoError(t, LoadDotEnv())
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/camera", cfg.CameraDir)
}

func TestLoadDotEnv_Missing(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.NoError(t, LoadDotEnv())
}
