package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "minimal config",
			yaml: `
backend:
  endpoint: http://localhost:8090
`,
		},
		{
			name: "full config",
			yaml: `
backend:
  endpoint: https://api.example.com
  timeout: 5s
  circuitBreaker:
    consecutiveFailures: 3
    openTimeout: 1m
polling:
  interval: 10s
  maxAttempts: 30
lifecycle:
  resumeDelay: 2s
recorder:
  maxTries: 4
  initialInterval: 250ms
presentation:
  webhookURL: http://localhost:9000/celebrate
ledger:
  path: /var/lib/milestone
api:
  manualCheckRate: 2
  manualCheckBurst: 5
telemetry:
  metricsEnabled: true
`,
		},
		{
			name:    "missing endpoint",
			yaml:    `polling: {interval: 10s}`,
			wantErr: "backend.endpoint is required",
		},
		{
			name: "sampling out of range",
			yaml: `
backend:
  endpoint: http://localhost:8090
telemetry:
  tracing:
    enabled: true
    sampling: 1.5
`,
			wantErr: "telemetry.tracing.sampling must be between 0 and 1",
		},
		{
			name: "endpoint without scheme",
			yaml: `
backend:
  endpoint: localhost:8090
`,
			wantErr: "backend.endpoint",
		},
		{
			name: "invalid polling interval",
			yaml: `
backend:
  endpoint: http://localhost:8090
polling:
  interval: often
`,
			wantErr: "polling.interval must be a valid duration",
		},
		{
			name: "negative interval",
			yaml: `
backend:
  endpoint: http://localhost:8090
polling:
  interval: -1s
`,
			wantErr: "polling.interval must be positive",
		},
		{
			name: "negative max attempts",
			yaml: `
backend:
  endpoint: http://localhost:8090
polling:
  maxAttempts: -2
`,
			wantErr: "polling.maxAttempts must not be negative",
		},
		{
			name: "invalid resume delay",
			yaml: `
backend:
  endpoint: http://localhost:8090
lifecycle:
  resumeDelay: soon
`,
			wantErr: "lifecycle.resumeDelay",
		},
		{
			name: "invalid webhook",
			yaml: `
backend:
  endpoint: http://localhost:8090
presentation:
  webhookURL: ftp://example.com
`,
			wantErr: "presentation.webhookURL",
		},
		{
			name:    "malformed yaml",
			yaml:    "backend: [",
			wantErr: "failed to parse YAML config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := ParseConfig([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte("backend:\n  endpoint: http://localhost:8090\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPollingInterval, cfg.GetPollingInterval())
	assert.Equal(t, 10*time.Second, cfg.GetPollingInterval())
	assert.Equal(t, 30, cfg.GetMaxAttempts())
	assert.Equal(t, 2*time.Second, cfg.GetResumeDelay())
	assert.Equal(t, DefaultRequestTimeout, cfg.GetRequestTimeout())
	assert.Equal(t, uint(DefaultRecordMaxTries), cfg.GetRecordMaxTries())
	assert.Equal(t, DefaultRecordInitialInterval, cfg.GetRecordInitialInterval())
	assert.Equal(t, uint32(DefaultBreakerFailures), cfg.GetBreakerFailures())
	assert.Equal(t, DefaultBreakerOpenTimeout, cfg.GetBreakerOpenTimeout())
	assert.Equal(t, DefaultLedgerPath, cfg.GetLedgerPath())
	assert.Empty(t, cfg.GetWebhookURL())
	assert.Equal(t, DefaultManualCheckRate, cfg.GetManualCheckRate())
	assert.Equal(t, DefaultManualCheckBurst, cfg.GetManualCheckBurst())
	assert.False(t, cfg.MetricsEnabled())
	assert.False(t, cfg.TracingEnabled())
	assert.Equal(t, DefaultTracingEndpoint, cfg.GetTracingEndpoint())
	assert.Equal(t, DefaultTracingSampling, cfg.GetTracingSampling())
	assert.False(t, cfg.GetTracingInsecure())
}

func TestTracingConfig(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(`
backend:
  endpoint: http://localhost:8090
telemetry:
  tracing:
    enabled: true
    endpoint: otel-collector:4318
    insecure: true
    sampling: 0.25
`))
	require.NoError(t, err)

	assert.True(t, cfg.TracingEnabled())
	assert.Equal(t, "otel-collector:4318", cfg.GetTracingEndpoint())
	assert.True(t, cfg.GetTracingInsecure())
	assert.Equal(t, 0.25, cfg.GetTracingSampling())
}

func TestConfigOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(`
backend:
  endpoint: http://localhost:8090
  timeout: 3s
  circuitBreaker:
    consecutiveFailures: 2
    openTimeout: 45s
polling:
  interval: 5s
  maxAttempts: 12
lifecycle:
  resumeDelay: 500ms
recorder:
  maxTries: 6
  initialInterval: 1s
presentation:
  webhookURL: http://localhost:9000/hook
ledger:
  path: /tmp/ledger
telemetry:
  metricsEnabled: true
`))
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.GetRequestTimeout())
	assert.Equal(t, uint32(2), cfg.GetBreakerFailures())
	assert.Equal(t, 45*time.Second, cfg.GetBreakerOpenTimeout())
	assert.Equal(t, 5*time.Second, cfg.GetPollingInterval())
	assert.Equal(t, 12, cfg.GetMaxAttempts())
	assert.Equal(t, 500*time.Millisecond, cfg.GetResumeDelay())
	assert.Equal(t, uint(6), cfg.GetRecordMaxTries())
	assert.Equal(t, time.Second, cfg.GetRecordInitialInterval())
	assert.Equal(t, "http://localhost:9000/hook", cfg.GetWebhookURL())
	assert.Equal(t, "/tmp/ledger", cfg.GetLedgerPath())
	assert.True(t, cfg.MetricsEnabled())
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("loads from file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("backend:\n  endpoint: http://localhost:8090\n"), 0600))

		cfg, err := LoadConfig(WithConfigPath(path))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8090", cfg.Backend.Endpoint)
	})

	t.Run("path is required", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path is required")
	})

	t.Run("empty path option", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(WithConfigPath(""))
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(WithConfigPath(filepath.Join(t.TempDir(), "missing.yaml")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to evaluate symlinks")
	})
}
