package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_ICD11Config(t *testing.T) {
	os.Setenv("ICD11_CLIENT_ID", "test-client")
	os.Setenv("ICD11_CLIENT_SECRET", "test-secret")
	os.Setenv("ICD11_REQUESTS_PER_MINUTE", "30")
	defer func() {
		os.Unsetenv("ICD11_CLIENT_ID")
		os.Unsetenv("ICD11_CLIENT_SECRET")
		os.Unsetenv("ICD11_REQUESTS_PER_MINUTE")
	}()

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, "test-client", cfg.ICD11.ClientID)
	assert.Equal(t, "test-secret", cfg.ICD11.ClientSecret)
	assert.Equal(t, 30, cfg.ICD11.RequestsPerMinute)
	assert.True(t, cfg.ICD11.HasCredentials())
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("ICD11_CLIENT_ID")
	os.Unsetenv("ICD11_CLIENT_SECRET")

	cfg, err := Load()
	assert.NoError(t, err)

	assert.Equal(t, 60, cfg.ICD11.RequestsPerMinute)
	assert.Equal(t, 3, cfg.ICD11.MaxRetries)
	assert.Equal(t, 1.0, cfg.ICD11.RetryDelaySeconds)
	assert.Equal(t, 30, cfg.ICD11.TimeoutSeconds)
	assert.Equal(t, 30, cfg.ICD11.CooldownMinutes)
	assert.Equal(t, 10, cfg.ICD11.MaxFailures)
	assert.False(t, cfg.ICD11.HasCredentials())

	assert.Equal(t, 86400, cfg.Detection.CacheTimeoutSeconds)
	assert.Equal(t, 7, cfg.Detection.LocalCacheTimeoutDays)
	assert.True(t, cfg.Detection.TrendingWriteAll)

	assert.True(t, cfg.Embedding.Enabled)
	assert.Equal(t, 0.1, cfg.Classifier.MinProbability)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	os.Setenv("ICD11_MAX_FAILURES", "not-a-number")
	defer os.Unsetenv("ICD11_MAX_FAILURES")

	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, 10, cfg.ICD11.MaxFailures)
}
