package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultRuntimeConfig(t *testing.T) {
	cfg := DefaultRuntimeConfig()

	assert.Equal(t, 500*time.Millisecond, cfg.Daemon.StartupWait)
	assert.Equal(t, 5*time.Second, cfg.Daemon.KillTimeout)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 2*time.Minute, cfg.Traffic.CacheTTL)
	assert.Equal(t, 3*time.Hour, cfg.Traffic.RefreshHorizon)
	assert.Equal(t, time.Hour, cfg.Scheduler.SleepThreshold)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ONTIME_SLEEP_THRESHOLD", "30m")
	t.Setenv("ONTIME_HTTP_MAX_RETRIES", "5")
	t.Setenv("ONTIME_TRAFFIC_REFRESH_HORIZON", "1h")

	cfg := DefaultRuntimeConfig()
	cfg.ReloadFromEnv()

	assert.Equal(t, 30*time.Minute, cfg.Scheduler.SleepThreshold)
	assert.Equal(t, 5, cfg.HTTP.MaxRetries)
	assert.Equal(t, time.Hour, cfg.Traffic.RefreshHorizon)
}

func TestLoadFromEnvIgnoresInvalid(t *testing.T) {
	t.Setenv("ONTIME_SLEEP_THRESHOLD", "not-a-duration")
	t.Setenv("ONTIME_HTTP_MAX_RETRIES", "-1")

	cfg := DefaultRuntimeConfig()
	cfg.ReloadFromEnv()

	assert.Equal(t, time.Hour, cfg.Scheduler.SleepThreshold)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
}

func TestReset(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	cfg.Scheduler.SleepThreshold = time.Minute
	cfg.Reset()
	assert.Equal(t, time.Hour, cfg.Scheduler.SleepThreshold)
}
