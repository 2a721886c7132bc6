package constants

import "time"

// Server Timeouts
const (
	DefaultReadTimeout     = 5 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
)

// Cache Timeouts
const (
	CacheDialTimeout        = 2 * time.Second
	CacheHealthCheckTimeout = 5 * time.Second

	// CacheHealthCheckInterval is how often the server probes the cache
	// in the background.
	CacheHealthCheckInterval = 5 * time.Minute
)

// Session Durations
const (
	// DefaultSessionTTL is how long a viewing session lives after creation or refresh.
	DefaultSessionTTL = 2 * time.Hour

	// DefaultRateLimitWindow is the fixed window for session-creation rate limiting.
	DefaultRateLimitWindow = 1 * time.Hour
)

// Authentication Timeouts
const (
	DefaultManagerTokenExpiry = 24 * time.Hour
)

// Mail Timeouts
const (
	MailSendTimeout = 15 * time.Second
)
