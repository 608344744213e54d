package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9100
jwt:
  secret: test-secret
database:
  path: /tmp/journal.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Address)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/journal.db", cfg.Database.Path)
	assert.Equal(t, 60, cfg.JWT.AccessTTLMinutes)
	assert.Equal(t, "*/1 * * * *", cfg.Scheduler.PrintTimeSpec)
	assert.Equal(t, 20, cfg.App.PageSize)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: from-file\n")
	t.Setenv("LOGJOURNAL_SERVER_PORT", "9200")
	t.Setenv("LOGJOURNAL_JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8000\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_PostgresNeedsDSN(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: s\ndatabase:\n  driver: postgres\n")
	_, err := Load(path)
	assert.ErrorContains(t, err, "dsn")
}
