package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "loopback", cfg.Server.Bind)
	assert.Equal(t, "memory", cfg.Roster.Store)
	assert.Equal(t, DefaultTavusBaseURL, cfg.Tavus.BaseURL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadParsesYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  bind: lan
webhook:
  secret: hunter2
roster:
  store: sqlite
  announceJoins: true
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "lan", cfg.Server.Bind)
	assert.Equal(t, "hunter2", cfg.Webhook.Secret)
	assert.Equal(t, "sqlite", cfg.Roster.Store)
	assert.True(t, cfg.Roster.AnnounceJoins)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a map")

	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadExpandsSecretEnvVars(t *testing.T) {
	t.Setenv("TEST_RELAY_SECRET", "s3cr3t")
	path := writeConfig(t, `
webhook:
  secret: ${TEST_RELAY_SECRET}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", cfg.Webhook.Secret)
}

func TestLoadUnsetEnvVarLeftUnchanged(t *testing.T) {
	path := writeConfig(t, `
webhook:
  secret: ${DEFINITELY_NOT_SET_12345}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "${DEFINITELY_NOT_SET_12345}", cfg.Webhook.Secret)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RELAY_PORT", "7070")
	t.Setenv("WEBHOOK_SHARED_SECRET", "from-env")
	t.Setenv("TAVUS_API_KEY", "key-123")
	t.Setenv("S3_RECORDING_BUCKET_NAME", "recordings")
	t.Setenv("S3_RECORDING_BUCKET_REGION", "us-west-2")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Webhook.Secret)
	assert.Equal(t, "key-123", cfg.Tavus.APIKey)
	assert.Equal(t, "recordings", cfg.Recording.Bucket)
	assert.Equal(t, "us-west-2", cfg.Recording.Region)
}

func TestEventLogEnabledDefault(t *testing.T) {
	var c EventLogConfig
	assert.True(t, c.EventLogEnabled())

	off := false
	c.Enabled = &off
	assert.False(t, c.EventLogEnabled())
}

func TestResolvePathsHonorsRelayHome(t *testing.T) {
	base := t.TempDir()
	t.Setenv("RELAY_HOME", base)

	paths, err := ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, base, paths.Base)
	assert.Equal(t, filepath.Join(base, "config.yaml"), paths.Config)
	require.NoError(t, paths.EnsureDirs())
	assert.DirExists(t, paths.Logs)
	assert.DirExists(t, paths.Data)
}
