package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type retryPolicy struct {
	attempts int
	base     time.Duration
	max      time.Duration
}

func (p retryPolicy) maxAttempts() int {
	if p.attempts < 1 {
		return 1
	}
	return p.attempts
}

// next reports whether err is worth another attempt and how long to wait.
// Timeouts, 408, 429, 5xx and empty replies are retried; a Retry-After header
// overrides the backoff.
func (p retryPolicy) next(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if attempt >= p.maxAttempts() || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var empty *emptyReplyError
	if errors.As(err, &empty) {
		return p.backoff(attempt), true
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		code := statusErr.StatusCode
		if code != http.StatusRequestTimeout && code != http.StatusTooManyRequests && code < http.StatusInternalServerError {
			return 0, false
		}
		if statusErr.RetryAfter > 0 {
			return p.limit(statusErr.RetryAfter), true
		}
		return p.backoff(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return p.backoff(attempt), true
	}
	return 0, false
}

// backoff doubles base for each attempt already made: base, 2*base, 4*base...
func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.base <= 0 {
		return 0
	}
	delay := p.base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.max > 0 && delay >= p.max {
			break
		}
	}
	return p.limit(delay)
}

func (p retryPolicy) limit(delay time.Duration) time.Duration {
	if p.max > 0 && delay > p.max {
		return p.max
	}
	return delay
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}

// SleepContext waits for d and returns early with ctx.Err() once ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
