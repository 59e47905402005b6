// Package retry re-runs bounty operations that lost a race or hit a transient fault.
package retry

import (
	"context"
	"time"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/ulogger"
)

// Options controls how often and how patiently an operation is retried.
type Options struct {
	Attempts       int
	InitialBackoff time.Duration
	BackoffFactor  float64
	MaxBackoff     time.Duration
}

var DefaultOptions = Options{
	Attempts:       3,
	InitialBackoff: time.Second,
	BackoffFactor:  2,
	MaxBackoff:     30 * time.Second,
}

// Retry calls f until it succeeds, returns an error that is not retryable, or the
// attempts run out. Every attempt after the first sees fresh ledger state because f
// re-reads it.
func Retry[T any](ctx context.Context, logger ulogger.Logger, opts Options, name string, f func(ctx context.Context) (T, error)) (T, error) {
	var (
		result  T
		err     error
		backoff = opts.InitialBackoff
	)

	if opts.Attempts < 1 {
		opts.Attempts = 1
	}

	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		result, err = f(ctx)
		if err == nil {
			return result, nil
		}

		if !errors.IsRetryableError(err) || attempt == opts.Attempts {
			return result, err
		}

		logger.Warnf("[Retry] %s failed (attempt %d/%d), retrying in %s: %v", name, attempt, opts.Attempts, backoff, err)

		if sleepErr := sleepFunc(ctx, backoff); sleepErr != nil {
			return result, errors.NewContextCanceledError("%s retry aborted", name, sleepErr)
		}

		backoff = CappedExponentialBackoff(backoff, opts.BackoffFactor, opts.MaxBackoff)
	}

	return result, err
}
