package substack

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/leofalp/substack-tools/internal/utils"
)

// RetryConfig tunes how transient failures are retried. Zero values are
// replaced by the defaults noted on each field.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt. Default: 2.
	// A negative value disables retries.
	MaxRetries int
	// InitialBackoff is the wait before the first retry. Default: 500ms.
	InitialBackoff time.Duration
	// MaxBackoff caps a single wait. Default: 5s.
	MaxBackoff time.Duration
	// JitterFraction adds up to this fraction of random noise. Default: 0.1.
	JitterFraction float64
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 5 * time.Second
	}
	if c.JitterFraction == 0 {
		c.JitterFraction = 0.1
	}
	return c
}

// backoff returns min(InitialBackoff * 2^attempt, MaxBackoff) plus jitter.
func (c RetryConfig) backoff(attempt int) time.Duration {
	base := float64(c.InitialBackoff) * math.Pow(2, float64(attempt))
	if base > float64(c.MaxBackoff) {
		base = float64(c.MaxBackoff)
	}
	jitter := base * c.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter
	return time.Duration(base + jitter)
}

// retryable reports whether err is a throttling or server-side failure.
// Client errors such as 404 and 403 are final.
func retryable(err error) bool {
	var statusErr *utils.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	switch statusErr.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// withRetry runs call until it succeeds, fails with a non-retryable error or
// the retry budget is spent. Waiting between attempts honours ctx.
func withRetry[T any](ctx context.Context, cfg RetryConfig, call func(context.Context) (*T, error)) (*T, error) {
	var lastErr error
	for attempt := 0; attempt <= max(cfg.MaxRetries, 0); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(cfg.backoff(attempt - 1)):
			}
		}

		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !retryable(err) {
			return nil, err
		}
	}
	return nil, lastErr
}
