package httpclient

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"
)

// ErrorType classifies an error for retry strategy purposes.
type ErrorType int

const (
	ErrorTypeSuccess ErrorType = iota
	ErrorTypeCredential
	ErrorTypeNetwork
	ErrorTypeRetryable
	ErrorTypeFatal
)

// RetryConfig holds parameters for ExecuteWithRetry.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	OnRetry      func(attempt int, err error, errType ErrorType)
}

// ClassifyError determines the retry strategy for an error. Mirrors the
// connector's response-code classifier for HTTP-shaped errors plus network-
// and credential-error heuristics validated against this transport's
// behavior in production.
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeSuccess
	}

	if errors.Is(err, context.Canceled) {
		return ErrorTypeFatal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTypeNetwork
	}

	errStr := strings.ToLower(err.Error())

	if strings.Contains(errStr, "407") ||
		strings.Contains(errStr, "proxy authentication required") {
		return ErrorTypeFatal
	}

	if strings.Contains(errStr, "expired") ||
		strings.Contains(errStr, "invalid token") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "authentication failed") {
		return ErrorTypeCredential
	}

	if strings.Contains(errStr, "tls handshake timeout") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "eof") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "server closed idle connection") ||
		strings.Contains(errStr, "stream error") ||
		strings.Contains(errStr, "http2: server sent goaway") {
		return ErrorTypeNetwork
	}

	if strings.Contains(errStr, "requesttimeout") ||
		strings.Contains(errStr, "internalerror") ||
		strings.Contains(errStr, "serviceunavailable") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504") {
		return ErrorTypeRetryable
	}

	if strings.Contains(errStr, "400") ||
		strings.Contains(errStr, "404") ||
		strings.Contains(errStr, "invalid") {
		return ErrorTypeFatal
	}

	return ErrorTypeFatal
}

// CalculateBackoff returns an exponential backoff duration with full jitter:
// random(0, min(maxDelay, initialDelay*2^attempt)).
func CalculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt <= 0 {
		return 0
	}
	base := time.Duration(1<<uint(attempt)) * initialDelay
	if base > maxDelay {
		base = maxDelay
	}
	if base <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(base)))
}

// ExecuteWithRetry runs operation with classification-driven retry: fatal
// errors return immediately, credential errors pause briefly and retry,
// network/retryable errors use exponential backoff with jitter.
func ExecuteWithRetry(ctx context.Context, cfg RetryConfig, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt < cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err

		errType := ClassifyError(err)
		switch errType {
		case ErrorTypeFatal:
			return err

		case ErrorTypeCredential:
			if attempt < cfg.MaxRetries-1 {
				if cfg.OnRetry != nil {
					cfg.OnRetry(attempt+1, err, errType)
				}
				time.Sleep(1 * time.Second)
				continue
			}
			return fmt.Errorf("credential error after %d attempts: %w", cfg.MaxRetries, err)

		case ErrorTypeNetwork, ErrorTypeRetryable:
			if attempt < cfg.MaxRetries-1 {
				backoff := CalculateBackoff(attempt, cfg.InitialDelay, cfg.MaxDelay)
				if cfg.OnRetry != nil {
					cfg.OnRetry(attempt+1, err, errType)
				}
				time.Sleep(backoff)
				continue
			}
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxRetries, lastErr)
}
