// Package retry provides exponential backoff for webhook delivery transports.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// Config holds retry configuration.
type Config struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DefaultConfig returns a default retry configuration.
func DefaultConfig() Config {
	return Config{MaxRetries: 3, BaseDelay: 1 * time.Second}
}

// WithBackoff executes op, retrying transient failures with exponential
// backoff plus jitter. Non-retryable errors are returned immediately.
func WithBackoff(ctx context.Context, cfg Config, op func(context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
		if attempt == cfg.MaxRetries {
			return fmt.Errorf("retry: giving up after %d attempts: %w", attempt+1, err)
		}

		delay := cfg.BaseDelay*time.Duration(1<<attempt) + time.Duration(rand.Int63n(int64(cfg.BaseDelay)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

// isRetryable classifies errors by message: network-level failures and
// 5xx/429 statuses retry, other 4xx statuses do not. Unrecognized errors
// retry.
func isRetryable(err error) bool {
	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "temporary failure") {
		return true
	}
	if strings.Contains(msg, "status 429") || strings.Contains(msg, "status 5") {
		return true
	}
	if strings.Contains(msg, "status 4") {
		return false
	}
	return true
}

// HTTPStatusRetryable reports whether an HTTP status code is worth retrying.
func HTTPStatusRetryable(statusCode int) bool {
	return statusCode >= 500 || statusCode == http.StatusTooManyRequests
}
