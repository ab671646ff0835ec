package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
port = 8080
log_level = "trace"
log_to_stdout = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "traintrack_dev"
prometheus_metrics_host = "localhost"
prometheus_metrics_port = "2112"

[production]
host = ""
port = 9000
log_level = "debug"
logs_path = "/var/log/traintrack/service.log"
postgres_host = "db"
postgres_port = "5432"
postgres_db_name = "traintrack"
prometheus_metrics_host = ""
prometheus_metrics_port = "2112"
tracing_enabled = true
sentry_enabled = true
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigContent), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTestConfig(t)

	devCfg, err := Load("development", path)
	require.NoError(t, err)
	assert.Equal(t, 8080, devCfg.Port)
	assert.Equal(t, "traintrack_dev", devCfg.PostgresDBName)
	assert.Equal(t, "development", devCfg.Environment)
	assert.False(t, devCfg.TracingEnabled)

	prodCfg, err := Load("prod", path)
	require.NoError(t, err)
	assert.Equal(t, 9000, prodCfg.Port)
	assert.Equal(t, "/var/log/traintrack/service.log", prodCfg.LogsPath)
	assert.True(t, prodCfg.TracingEnabled)
	assert.True(t, prodCfg.SentryEnabled)
}

func TestLoad_UnknownEnv(t *testing.T) {
	path := writeTestConfig(t)
	_, err := Load("staging", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown env")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("development", "/nonexistent/config.toml")
	require.Error(t, err)
}
