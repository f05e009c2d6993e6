// Package httpclient builds the HTTP clients the connector uses, and
// carries the retry/backoff machinery that drives GET worker resume and
// whole-request retries. Construction is adapted from the teacher's
// optimized-client tuning, generalized to this connector's SessionConfig.
package httpclient

import (
	"crypto/tls"
	"net/http"
	"os"
	"time"

	"github.com/artifactrelay/connector/internal/config"
	"github.com/artifactrelay/connector/internal/constants"
	"github.com/artifactrelay/connector/internal/descriptor"
	"golang.org/x/net/http2"
)

// CreateOptimizedClient builds the client used for plain (non-resumed)
// requests: large connection pool, HTTP/2, compression enabled (spec.md
// section 4.1 "body-compression enabled for non-resumed requests"),
// follow-redirects enabled (net/http's default).
func CreateOptimizedClient(cfg *config.SessionConfig, proxy *descriptor.ProxySpec, endpointURL string) (*http.Client, error) {
	client, err := ConfigureHTTPClient(cfg, proxy, endpointURL)
	if err != nil {
		return nil, err
	}

	tr, ok := client.Transport.(*http.Transport)
	if !ok {
		// NTLM-wrapped transports can't be tuned further; return as-is.
		return client, nil
	}

	tr.MaxIdleConns = constants.HTTPMaxIdleConns
	tr.MaxIdleConnsPerHost = constants.HTTPMaxIdleConnsPerHost
	tr.MaxConnsPerHost = constants.HTTPMaxConnsPerHost
	tr.IdleConnTimeout = constants.HTTPIdleConnTimeout
	tr.TLSHandshakeTimeout = constants.HTTPTLSHandshakeTimeout
	tr.ExpectContinueTimeout = constants.HTTPExpectContinueTimeout
	tr.DisableCompression = false
	tr.ForceAttemptHTTP2 = true
	_ = http2.ConfigureTransport(tr)

	if os.Getenv("DISABLE_HTTP2") == "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = make(map[string]func(string, *tls.Conn) http.RoundTripper)
	}

	client.Transport = tr
	client.Timeout = resolveTimeout(cfg)
	return client, nil
}

// CreateRangeClient builds a separate client for ranged GETs (spec.md
// section 4.3 FETCH: "a SEPARATE HTTP client configured with compression
// disabled, the range offset is meaningless against a compressed response
// body"). Otherwise identical tuning to the optimized client.
func CreateRangeClient(cfg *config.SessionConfig, proxy *descriptor.ProxySpec, endpointURL string) (*http.Client, error) {
	client, err := CreateOptimizedClient(cfg, proxy, endpointURL)
	if err != nil {
		return nil, err
	}
	if tr, ok := client.Transport.(*http.Transport); ok {
		tr.DisableCompression = true
		client.Transport = tr
	}
	return client, nil
}

func resolveTimeout(cfg *config.SessionConfig) time.Duration {
	if cfg == nil || cfg.RequestTimeout <= 0 {
		return 0
	}
	return cfg.RequestTimeout
}
