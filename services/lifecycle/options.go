package lifecycle

import (
	"time"

	"github.com/bountiful-platform/bountiful/stores/bounty"
	"github.com/bountiful-platform/bountiful/util/retry"
)

type Options struct {
	assembler           TxAssembler
	store               bounty.Store
	notifier            Notifier
	retry               retry.Options
	confirmationTimeout time.Duration
}

// Option is a function that sets some option on the Options struct
type Option func(*Options)

// WithAssembler replaces the BasicAssembler.
func WithAssembler(assembler TxAssembler) Option {
	return func(o *Options) {
		o.assembler = assembler
	}
}

// WithStore records every accepted transition in store.
func WithStore(store bounty.Store) Option {
	return func(o *Options) {
		o.store = store
	}
}

// WithNotifier publishes every accepted transition to notifier.
func WithNotifier(notifier Notifier) Option {
	return func(o *Options) {
		o.notifier = notifier
	}
}

// WithRetry re-runs transitions on existing bounties that fail with a retryable error,
// each attempt with a fresh read of the record. Without it every operation is tried once.
func WithRetry(opts retry.Options) Option {
	return func(o *Options) {
		o.retry = opts
	}
}

func WithConfirmationTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.confirmationTimeout = timeout
	}
}
