package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukydev/gps-telemetry-collector/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", s.Environment)
	assert.Equal(t, "mongodb://localhost:27017", s.MongoURI)
	assert.Equal(t, "gps_telemetry", s.MongoDBName)
	assert.Equal(t, "mock", s.ProviderType)
	assert.Equal(t, 30*time.Second, s.ProviderTimeout)
	assert.Equal(t, 3, s.ProviderMaxRetries)
	assert.Equal(t, 2*time.Second, s.ProviderRetryBackoff)
	assert.Equal(t, 10, s.MaxConcurrentRequests)
	assert.Equal(t, 50, s.BatchSize)
	assert.Equal(t, 5.0, s.RateLimitPerSecond)
	assert.Equal(t, 90*24*time.Hour, s.TelemetryRetention)
	assert.Equal(t, 30*24*time.Hour, s.RunLogRetention)
	assert.True(t, s.MockSynthesizeUnknown)
	assert.False(t, s.MockSimulateLatency)
	assert.Empty(t, s.MQTTBrokerURL)
}

func TestLoadDefaultCadences(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)

	assert.Len(t, s.JobCrons, len(models.AllReportTypes))
	assert.Equal(t, "*/5 * * * *", s.JobCrons[models.ReportPosition])
	assert.Equal(t, "*/10 * * * *", s.JobCrons[models.ReportEngineStatus])
	assert.Equal(t, "0 */6 * * *", s.JobCrons[models.ReportOdometer])
	assert.Equal(t, "0 0 * * *", s.JobCrons[models.ReportVoltage])
}

func TestLoadRateLimitBurst(t *testing.T) {
	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, s.RateLimitBurst) // one second at the default rate

	t.Setenv("RATE_LIMIT_RPS", "0.5")
	s, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 1, s.RateLimitBurst)

	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("RATE_LIMIT_BURST", "2")
	s, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 2, s.RateLimitBurst)

	t.Setenv("RATE_LIMIT_BURST", "-1")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PROVIDER_TIMEOUT_SECONDS", "10")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("JOB_POSITION_CRON", "*/2 * * * *")
	t.Setenv("MOCK_SYNTHESIZE_UNKNOWN", "false")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, s.ProviderTimeout)
	assert.Equal(t, 2.5, s.RateLimitPerSecond)
	assert.Equal(t, "*/2 * * * *", s.JobCrons[models.ReportPosition])
	assert.False(t, s.MockSynthesizeUnknown)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("PROVIDER_TYPE", "sparkfleet")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PROVIDER_TYPE", "mock")
	t.Setenv("MAX_CONCURRENT_REQUESTS", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("MAX_CONCURRENT_REQUESTS", "10")
	t.Setenv("RATE_LIMIT_RPS", "-1")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("RATE_LIMIT_RPS", "5")
	t.Setenv("MONGODB_URL", "postgres://localhost")
	_, err = Load()
	assert.Error(t, err)
}

func TestGetEnvFallbacksOnUnparseable(t *testing.T) {
	t.Setenv("BATCH_SIZE", "fifty")
	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, s.BatchSize)
}
