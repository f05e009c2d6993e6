// Package constants holds tuning values shared across the connector's
// transport, retry, and registry code.
package constants

import "time"

// HTTP transport tuning, mirrored from the connector's optimized client
// construction. These were chosen for concurrent batch transfers against a
// single remote endpoint, not for general-purpose HTTP use.
const (
	HTTPDialTimeout           = 30 * time.Second
	HTTPDialKeepAlive         = 30 * time.Second
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPTLSHandshakeTimeout   = 60 * time.Second
	HTTPExpectContinueTimeout = 1 * time.Second

	HTTPMaxIdleConns        = 512
	HTTPMaxIdleConnsPerHost = 100
	HTTPMaxConnsPerHost     = 100
)

// Retry configuration defaults, used when a SessionConfig leaves the
// corresponding field at its zero value.
const (
	DefaultMaxRetries   = 10
	DefaultInitialDelay = 200 * time.Millisecond
	DefaultMaxDelay     = 15 * time.Second

	// MaxResumeRetries caps the GET worker's mid-stream retry-with-resume
	// attempts (spec: "up to 3 resume attempts").
	MaxResumeRetries = 3
)

// Event bus buffering.
const (
	EventBusDefaultBuffer = 256
	EventBusMaxBuffer     = 4096
)

// ExpiredPartialAge is an age for orphaned partial/lock pairs. Nothing in
// the connector reads it, and the connector runs no registry sweep of its
// own; Registry.CleanupExpired takes its age test as a predicate.
const ExpiredPartialAge = 7 * 24 * time.Hour

// DefaultUserAgent is used when a SessionConfig doesn't set one.
const DefaultUserAgent = "artifact-connector/1.0"
