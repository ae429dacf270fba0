package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 8765, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, time.Second, cfg.Server.PongTimeout)
	assert.Equal(t, 10*time.Millisecond, cfg.MIDI.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Learn.Window)
	assert.Equal(t, 20, cfg.Learn.MinRange)
	assert.Equal(t, 5, cfg.Learn.MinChanges)
}

func TestLoad_PartialOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
  allowed_origins: ["http://obs.local:8080"]
midi:
  device: "DDJ-400"
  poll_interval: 5ms
learn:
  window: 8s
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host, "unset keys keep defaults")
	assert.Equal(t, []string{"http://obs.local:8080"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "DDJ-400", cfg.MIDI.Device)
	assert.Equal(t, 5*time.Millisecond, cfg.MIDI.PollInterval)
	assert.Equal(t, 1024, cfg.MIDI.Buffer)
	assert.Equal(t, 8*time.Second, cfg.Learn.Window)
	assert.Equal(t, 20, cfg.Learn.MinRange)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestLoad_DefersValidation(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 70000\n  idle_timeout: 0s\n"))
	require.NoError(t, err)
	assert.Equal(t, 70000, cfg.Server.Port)

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "server.idle_timeout")
}

func TestValidate_Defaults(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
