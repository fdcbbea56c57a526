package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRateLimit struct{ limited bool }

func (e fakeRateLimit) Error() string     { return "remote refused" }
func (e fakeRateLimit) RateLimited() bool { return e.limited }

func recordingPolicy(delays *[]time.Duration) Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		Retryable:  IsRateLimit,
		Sleep: func(_ context.Context, d time.Duration) error {
			*delays = append(*delays, d)
			return nil
		},
	}
}

func TestDoRetriesRateLimitWithDoublingBackoff(t *testing.T) {
	var delays []time.Duration
	calls := 0

	result, err := Do(context.Background(), recordingPolicy(&delays), func(context.Context) (string, error) {
		calls++
		if calls <= 2 {
			return "", fakeRateLimit{limited: true}
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, calls)
	require.Len(t, delays, 2)
	assert.Equal(t, 2*time.Second, delays[0])
	assert.Equal(t, 4*time.Second, delays[1])
}

func TestDoDoesNotRetryNonRateLimitErrors(t *testing.T) {
	var delays []time.Duration
	calls := 0
	boom := errors.New("schema rejected")

	_, err := Do(context.Background(), recordingPolicy(&delays), func(context.Context) (int, error) {
		calls++
		return 0, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Empty(t, delays)
}

func TestDoExhaustsBudgetAndReturnsLastError(t *testing.T) {
	var delays []time.Duration
	calls := 0

	_, err := Do(context.Background(), recordingPolicy(&delays), func(context.Context) (int, error) {
		calls++
		return 0, fakeRateLimit{limited: true}
	})

	require.Error(t, err)
	assert.Equal(t, 4, calls) // first attempt + 3 retries
	assert.Len(t, delays, 3)
}

func TestDoStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	policy := Policy{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		Retryable:  func(error) bool { return true },
	}

	calls := 0
	_, err := Do(ctx, policy, func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("try again")
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRateLimit(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"explicit 429", fakeRateLimit{limited: true}, true},
		{"explicit non-429", fakeRateLimit{limited: false}, false},
		{"message 429", errors.New("gemini API 429 Too Many Requests"), true},
		{"message quota", errors.New("RESOURCE_EXHAUSTED: quota exceeded"), true},
		{"wrapped", errors.Join(errors.New("outer"), fakeRateLimit{limited: true}), true},
		{"plain failure", errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRateLimit(tc.err))
		})
	}
}
