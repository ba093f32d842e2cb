// Package config provides centralized configuration for Ontime runtime values.
package config

import (
	"os"
	"strconv"
	"time"
)

// RuntimeConfig holds runtime configuration values with environment
// overrides.
type RuntimeConfig struct {
	// Daemon configuration
	Daemon DaemonConfig

	// HTTP client configuration
	HTTP HTTPConfig

	// Traffic measurement configuration
	Traffic TrafficConfig

	// Scheduler configuration
	Scheduler SchedulerConfig
}

// DaemonConfig holds daemon-related configuration.
type DaemonConfig struct {
	// StartupWait is the time to wait for the daemon to start before checking status.
	// Default: 500ms
	StartupWait time.Duration

	// KillTimeout is the timeout for graceful shutdown before force kill.
	// Default: 5s
	KillTimeout time.Duration
}

// HTTPConfig holds HTTP client configuration.
type HTTPConfig struct {
	// Timeout is the default HTTP request timeout.
	// Default: 30s
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts.
	// Default: 3
	MaxRetries int
}

// TrafficConfig holds travel-time measurement configuration.
type TrafficConfig struct {
	// CacheTTL is how long a live measurement stays fresh.
	// Default: 2m
	CacheTTL time.Duration

	// RefreshHorizon bounds how far ahead of arrival the daemon
	// measures traffic.
	// Default: 3h
	RefreshHorizon time.Duration
}

// SchedulerConfig holds scheduler-related configuration.
type SchedulerConfig struct {
	// SleepThreshold is the time gap that indicates the system was sleeping.
	// If elapsed time since last check exceeds this, due alarms are dropped
	// instead of fired.
	// Default: 1h
	SleepThreshold time.Duration
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Daemon: DaemonConfig{
			StartupWait: 500 * time.Millisecond,
			KillTimeout: 5 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
		},
		Traffic: TrafficConfig{
			CacheTTL:       2 * time.Minute,
			RefreshHorizon: 3 * time.Hour,
		},
		Scheduler: SchedulerConfig{
			SleepThreshold: 1 * time.Hour,
		},
	}
}

// Global holds the global runtime configuration instance.
// It is initialized with defaults and can be overridden via environment variables.
var Global = initGlobal()

// initGlobal initializes the global config with defaults and environment overrides.
func initGlobal() *RuntimeConfig {
	cfg := DefaultRuntimeConfig()
	cfg.loadFromEnv()
	return cfg
}

// loadFromEnv loads configuration overrides from environment variables.
func (c *RuntimeConfig) loadFromEnv() {
	if v := os.Getenv("ONTIME_DAEMON_STARTUP_WAIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Daemon.StartupWait = d
		}
	}
	if v := os.Getenv("ONTIME_DAEMON_KILL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Daemon.KillTimeout = d
		}
	}

	if v := os.Getenv("ONTIME_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.HTTP.Timeout = d
		}
	}
	if v := os.Getenv("ONTIME_HTTP_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.HTTP.MaxRetries = n
		}
	}

	if v := os.Getenv("ONTIME_TRAFFIC_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Traffic.CacheTTL = d
		}
	}
	if v := os.Getenv("ONTIME_TRAFFIC_REFRESH_HORIZON"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Traffic.RefreshHorizon = d
		}
	}

	if v := os.Getenv("ONTIME_SLEEP_THRESHOLD"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Scheduler.SleepThreshold = d
		}
	}
}

// ReloadFromEnv reloads configuration from environment variables.
func (c *RuntimeConfig) ReloadFromEnv() {
	c.loadFromEnv()
}

// Reset resets the configuration to defaults.
// This is primarily useful for testing.
func (c *RuntimeConfig) Reset() {
	defaults := DefaultRuntimeConfig()
	*c = *defaults
}
