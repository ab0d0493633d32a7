package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RustForNeo/neoclient/pkg/transport"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "neoclient.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
network:
  magic: 894710606
transport:
  kind: websocket
  endpoint: "ws://localhost:10334"
  request_timeout: 5s
  reconnect:
    enabled: true
    max_attempts: 3
    initial_delay: 250ms
retry:
  max_retries: 4
  circuit_breaker:
    enabled: true
    failure_threshold: 10
rate_limit:
  enabled: true
  requests_per_second: 50
  burst: 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, uint32(894710606), cfg.Network.Magic)
	assert.Equal(t, "websocket", cfg.Transport.Kind)
	assert.Equal(t, 5*time.Second, cfg.Transport.RequestTimeout)
	assert.Equal(t, 3, cfg.Transport.Reconnect.MaxAttempts)
	assert.Equal(t, 4, cfg.Retry.MaxRetries)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 50.0, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "transport: [ unclosed")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
transport:
  endpoint: "http://localhost:10332"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, string(transport.KindHTTP), cfg.Transport.Kind)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
transport:
  kind: http
  endpoint: "http://localhost:10332"
`)

	t.Setenv("NEOCLIENT_TRANSPORT_ENDPOINT", "http://node.example:10332")
	t.Setenv("NEOCLIENT_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://node.example:10332", cfg.Transport.Endpoint)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestTransportConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
transport:
  kind: websocket
  endpoint: "ws://localhost:10334"
  reconnect:
    enabled: true
    initial_delay: 100ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	tc := cfg.TransportConfig()
	assert.Equal(t, transport.KindWebSocket, tc.Kind)
	assert.Equal(t, "ws://localhost:10334", tc.Endpoint)
	assert.Equal(t, 30*time.Second, tc.RequestTimeout)
	assert.True(t, tc.Reconnect.Enabled)
	assert.Equal(t, 100*time.Millisecond, tc.Reconnect.InitialDelay)
	assert.Equal(t, 10, tc.Reconnect.MaxAttempts)
}

func TestRetryConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
transport:
  endpoint: "http://localhost:10332"
retry:
  max_retries: 5
  circuit_breaker:
    enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	rc := cfg.RetryConfig()
	assert.Equal(t, 5, rc.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, rc.InitialDelay)
	assert.True(t, rc.CircuitBreaker.Enabled)
	assert.Equal(t, 5, rc.CircuitBreaker.FailureThreshold)
}

func TestMiddlewareAssembly(t *testing.T) {
	path := writeConfig(t, `
transport:
  endpoint: "http://localhost:10332"
rate_limit:
  enabled: true
  requests_per_second: 20
  burst: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	stack := cfg.Middleware(nil)
	require.Len(t, stack, 2)

	cfg.RateLimit.Enabled = false
	stack = cfg.Middleware(nil)
	require.Len(t, stack, 1)
}
