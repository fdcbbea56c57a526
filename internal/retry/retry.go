// Package retry provides a bounded exponential-backoff combinator used at
// both the transport layer (rate limits) and the flow layer (incomplete
// model output).
package retry

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Policy struct {
	// MaxRetries is the number of attempts after the first. Zero means
	// a single attempt with no retry.
	MaxRetries int
	// BaseDelay is the wait before the first retry; it doubles on each
	// subsequent retry.
	BaseDelay time.Duration
	// Retryable decides whether an error is worth another attempt.
	// Nil retries everything.
	Retryable func(error) bool
	// Sleep is overridable for tests. Nil uses a context-aware wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		Retryable:  IsRateLimit,
	}
}

// Do runs fn, retrying per the policy. Non-retryable errors propagate
// immediately; exhausting the budget returns the last error. A
// successful result is passed through unaltered.
func Do[T any](ctx context.Context, policy Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	maxRetries := policy.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := policy.BaseDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = contextSleep
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, delay); err != nil {
				return zero, err
			}
			delay *= 2
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if policy.Retryable != nil && !policy.Retryable(err) {
			return zero, err
		}
	}

	return zero, lastErr
}

// RateLimited marks errors that carry a quota/429 signal without relying
// on message sniffing. The gemini client implements it on APIError.
type RateLimited interface {
	RateLimited() bool
}

// IsRateLimit reports whether err looks like a remote rate-limit
// condition: an explicit RateLimited error, or a message mentioning 429
// or quota exhaustion.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var rl RateLimited
	if errors.As(err, &rl) && rl.RateLimited() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
