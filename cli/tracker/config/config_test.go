package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaults(t *testing.T) {
	path := writeConfig(t, "host: 127.0.0.1\n")

	c, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9331", c.GetListenAddress())
	assert.Equal(t, int32(8080), c.ApiPort)
	assert.Equal(t, 90*time.Second, c.GetEmptyConnTTL())
	assert.Equal(t, 1024, c.MaxLineBytes)
	assert.Equal(t, 10*time.Second, c.GetRateBucketWindow())
	assert.Equal(t, 120, c.RateLimitPerBucket)
	assert.Equal(t, 16, c.SubscriberBuffer)
	assert.Equal(t, "@every 6h", c.RetentionCron)
	assert.Equal(t, 1024, c.StoreBuffer)
	assert.Equal(t, log.InfoLevel, c.GetLogLevel())
}

func TestNewFullConfig(t *testing.T) {
	path := writeConfig(t, `
host: 0.0.0.0
port: "9000"
api_port: 8081
conn_ttl: 30
max_line_bytes: 2048
rate_bucket_ms: 5000
rate_limit_per_bucket: 60
retention_days: 14
log_level: DEBUG
cors_origins:
  - "https://map.example.com"
storage:
  redis:
    host: localhost
    port: "6379"
`)

	c, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", c.GetListenAddress())
	assert.Equal(t, int32(8081), c.ApiPort)
	assert.Equal(t, 30*time.Second, c.GetEmptyConnTTL())
	assert.Equal(t, 2048, c.MaxLineBytes)
	assert.Equal(t, 5*time.Second, c.GetRateBucketWindow())
	assert.Equal(t, 60, c.RateLimitPerBucket)
	assert.Equal(t, 14, c.RetentionDays)
	assert.Equal(t, log.DebugLevel, c.GetLogLevel())
	assert.Equal(t, []string{"https://map.example.com"}, c.CorsOrigins)
	require.Contains(t, c.Store, "redis")
	assert.Equal(t, "localhost", c.Store["redis"]["host"])
}

func TestNewApiKeyFromEnv(t *testing.T) {
	t.Setenv("TRACKER_API_KEY", "secret-from-env")
	path := writeConfig(t, "host: 127.0.0.1\n")

	c, err := New(path)
	require.NoError(t, err)
	assert.Equal(t, "secret-from-env", c.ApiKey)
}

func TestNewErrors(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = New(writeConfig(t, "host: [broken\n"))
	assert.Error(t, err)

	_, err = New(writeConfig(t, "api_port: 99999\n"))
	assert.Error(t, err)
}
