package builder

import (
	"github.com/bountiful-platform/bountiful/model"
)

type Options struct {
	version    model.Version
	devFeeRate uint64
	feeScript  *model.FeeScript
}

// Option is a function that sets some option on the Options struct
type Option func(*Options)

// WithVersion sets the script version new bounties are created with.
func WithVersion(version model.Version) Option {
	return func(o *Options) {
		o.version = version
	}
}

// WithDevFeeRate sets the platform fee rate of new bounties, in tenths of a percent.
func WithDevFeeRate(rate uint64) Option {
	return func(o *Options) {
		o.devFeeRate = rate
	}
}

// WithFeeScript sets the dev fee script platform fees are paid to.
func WithFeeScript(feeScript *model.FeeScript) Option {
	return func(o *Options) {
		o.feeScript = feeScript
	}
}
