package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
type Timeouts struct {
	SSHConnect   time.Duration // Connect timeout for node access (SSH_TIMEOUT, seconds)
	CacheExpiry  time.Duration // Freshness window of generated config files (CACHE_EXPIRY_SECONDS)
	LogRefresh   time.Duration // Refresh interval of the infrastructure event tail
	ServerCreate time.Duration // Hetzner server creation wait
	Delete       time.Duration // Hetzner delete wait
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - SSH_TIMEOUT (seconds, default: 5)
//   - CACHE_EXPIRY_SECONDS (default: 180)
//   - CELL_LOG_REFRESH (default: 2s)
//   - HCLOUD_TIMEOUT_SERVER_CREATE (default: 10m)
//   - HCLOUD_TIMEOUT_DELETE (default: 5m)
//
// Load overrides SSHConnect and CacheExpiry with profile values when the
// environment does not set them.
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		SSHConnect:   parseSeconds("SSH_TIMEOUT", 5*time.Second),
		CacheExpiry:  parseSeconds("CACHE_EXPIRY_SECONDS", 180*time.Second),
		LogRefresh:   parseDuration("CELL_LOG_REFRESH", 2*time.Second),
		ServerCreate: parseDuration("HCLOUD_TIMEOUT_SERVER_CREATE", 10*time.Minute),
		Delete:       parseDuration("HCLOUD_TIMEOUT_DELETE", 5*time.Minute),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseSeconds parses a whole number of seconds from an environment variable.
func parseSeconds(envVar string, defaultVal time.Duration) time.Duration {
	return secondsOr(os.Getenv(envVar), defaultVal)
}

func secondsOr(val string, defaultVal time.Duration) time.Duration {
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return time.Duration(i) * time.Second
}
