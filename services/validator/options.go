package validator

import (
	"github.com/bountiful-platform/bountiful/chaincfg"
)

type Options struct {
	params     *chaincfg.Params
	refundMode string
}

// Option is a function that sets some option on the Options struct
type Option func(*Options)

// WithParams overrides the network parameters taken from settings.
func WithParams(params *chaincfg.Params) Option {
	return func(o *Options) {
		o.params = params
	}
}

// WithRefundMode overrides the refund amount rule: version, reward or value.
func WithRefundMode(mode string) Option {
	return func(o *Options) {
		o.refundMode = mode
	}
}
