package httpclient

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeSuccess},
		{"context canceled", context.Canceled, ErrorTypeFatal},
		{"context deadline", context.DeadlineExceeded, ErrorTypeNetwork},
		{"connection reset", errors.New("read tcp: connection reset by peer"), ErrorTypeNetwork},
		{"unauthorized", errors.New("401 unauthorized"), ErrorTypeCredential},
		{"service unavailable", errors.New("503 service unavailable"), ErrorTypeRetryable},
		{"not found", errors.New("404 not found"), ErrorTypeFatal},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ClassifyError(c.err); got != c.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", c.err, got, c.want)
			}
		})
	}
}

func TestCalculateBackoffBounds(t *testing.T) {
	initial := 100 * time.Millisecond
	max := time.Second

	if got := CalculateBackoff(0, initial, max); got != 0 {
		t.Errorf("CalculateBackoff(0, ...) = %v, want 0", got)
	}

	for attempt := 1; attempt <= 10; attempt++ {
		backoff := CalculateBackoff(attempt, initial, max)
		if backoff < 0 || backoff > max {
			t.Errorf("CalculateBackoff(%d, ...) = %v, want in [0, %v]", attempt, backoff, max)
		}
	}
}

func TestExecuteWithRetrySucceedsEventually(t *testing.T) {
	attempts := 0
	err := ExecuteWithRetry(context.Background(), RetryConfig{
		MaxRetries:   5,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ExecuteWithRetry() error = %v, want nil after recovering", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestExecuteWithRetryStopsOnFatalError(t *testing.T) {
	attempts := 0
	err := ExecuteWithRetry(context.Background(), RetryConfig{
		MaxRetries:   5,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}, func() error {
		attempts++
		return errors.New("404 not found")
	})
	if err == nil {
		t.Fatal("ExecuteWithRetry() = nil, want error for a fatal classification")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (no retry on fatal error)", attempts)
	}
}
