// Package config defines the session configuration consumed by the
// connector facade and its HTTP client construction. Loading it from a
// file, environment, or flags is the caller's responsibility; this
// package only describes the shape and its effects.
package config

import (
	"time"

	"github.com/artifactrelay/connector/internal/constants"
)

// SessionConfig carries the tunables named in spec.md section 6. Field
// names are illustrative; the effects are the contract.
type SessionConfig struct {
	// UserAgent is sent as the User-Agent header on every request the GET
	// and PUT workers build. Falls back to constants.DefaultUserAgent when
	// empty. The sidecar checksum GETs of the VERIFY phase do not set it and
	// carry net/http's default User-Agent.
	UserAgent string

	// ConnectTimeout bounds TCP/TLS connect. Zero uses the package default.
	ConnectTimeout time.Duration
	// RequestTimeout bounds a single request/response round trip (not a
	// whole batch). Zero means no per-request deadline beyond connect.
	RequestTimeout time.Duration

	// DisableResumable, when true, skips the registry's partial scan and
	// never emits a Range request: every GET starts at offset 0.
	DisableResumable bool
	// UseCache, when false, adds "Pragma: no-cache" to GET requests.
	UseCache bool

	// Proxy settings. Mode is one of "", "no-proxy", "system", "basic", "ntlm".
	ProxyMode     string
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string
	NoProxy       string
	ProxyWarmup   bool

	// Retry tuning for ExecuteWithRetry. Zero values fall back to
	// constants.DefaultMaxRetries / DefaultInitialDelay / DefaultMaxDelay.
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// UserAgentOrDefault returns UserAgent, falling back to the package default.
func (c *SessionConfig) UserAgentOrDefault() string {
	if c == nil || c.UserAgent == "" {
		return constants.DefaultUserAgent
	}
	return c.UserAgent
}

// RetryConfig resolves the retry tuning to concrete, non-zero values.
func (c *SessionConfig) RetryConfig() (maxRetries int, initialDelay, maxDelay time.Duration) {
	maxRetries = constants.DefaultMaxRetries
	initialDelay = constants.DefaultInitialDelay
	maxDelay = constants.DefaultMaxDelay
	if c == nil {
		return
	}
	if c.MaxRetries > 0 {
		maxRetries = c.MaxRetries
	}
	if c.InitialDelay > 0 {
		initialDelay = c.InitialDelay
	}
	if c.MaxDelay > 0 {
		maxDelay = c.MaxDelay
	}
	return
}
