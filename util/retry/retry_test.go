package retry

import (
	"context"
	"testing"
	"time"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(t *testing.T) *[]time.Duration {
	t.Helper()

	var slept []time.Duration

	orig := sleepFunc
	sleepFunc = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}

	t.Cleanup(func() { sleepFunc = orig })

	return &slept
}

func TestRetryStaleRecord(t *testing.T) {
	slept := noSleep(t)
	calls := 0

	result, err := Retry(context.Background(), ulogger.TestLogger{}, DefaultOptions, "submit", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.NewStaleRecordError("bounty box already spent")
		}

		return "tx", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "tx", result)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	noSleep(t)
	calls := 0

	_, err := Retry(context.Background(), ulogger.TestLogger{}, DefaultOptions, "withdraw", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.NewLedgerRejectedError("script failed")
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrLedgerRejected))
	assert.Equal(t, 1, calls)
}

func TestRetryGivesUp(t *testing.T) {
	noSleep(t)
	calls := 0

	_, err := Retry(context.Background(), ulogger.TestLogger{}, Options{Attempts: 2, InitialBackoff: time.Millisecond, BackoffFactor: 2, MaxBackoff: time.Second}, "fetch", func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.NewNetworkError("explorer unreachable")
	})

	assert.True(t, errors.Is(err, errors.ErrNetwork))
	assert.Equal(t, 2, calls)
}

func TestRetryCancelled(t *testing.T) {
	noSleep(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Retry(ctx, ulogger.TestLogger{}, DefaultOptions, "fetch", func(ctx context.Context) (int, error) {
		return 0, errors.NewStaleRecordError("lost")
	})

	assert.True(t, errors.Is(err, errors.ErrContextCanceled))
}

func TestCappedExponentialBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, CappedExponentialBackoff(time.Second, 2, time.Minute))
	assert.Equal(t, 5*time.Second, CappedExponentialBackoff(4*time.Second, 2, 5*time.Second))
}
