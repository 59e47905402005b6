// Package builder constructs bounty transitions. Every plan it returns has been run
// through the validator with the same context the ledger will see, so a plan that
// comes back without an error is accepted unless the record moved in the meantime.
package builder

import (
	"github.com/bountiful-platform/bountiful/chaincfg"
	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/services/validator"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/ulogger"
)

type Builder struct {
	logger     ulogger.Logger
	params     *chaincfg.Params
	validator  validator.Interface
	version    model.Version
	devFeeRate uint64
	feeScript  *model.FeeScript
}

// New creates a builder for the network in tSettings. Unless overridden by options, new
// bounties use the configured version and fee rate and pay platform fees to the script
// built from the configured fee recipients.
func New(logger ulogger.Logger, tSettings *settings.Settings, v validator.Interface, opts ...Option) (*Builder, error) {
	initPrometheusMetrics()

	options := &Options{
		devFeeRate: tSettings.Bounty.DevFeeRate,
	}

	for _, o := range opts {
		o(options)
	}

	if options.version == "" {
		raw := tSettings.Bounty.Version
		if raw == "" {
			raw = tSettings.ChainCfgParams.DefaultVersion
		}

		version, err := model.ParseVersion(raw)
		if err != nil {
			return nil, errors.NewConfigurationError("bounty_version", err)
		}

		options.version = version
	}

	if options.feeScript == nil {
		feeScript, err := FeeScriptFromSettings(tSettings)
		if err != nil {
			return nil, err
		}

		options.feeScript = feeScript
	}

	return &Builder{
		logger:     logger,
		params:     tSettings.ChainCfgParams,
		validator:  v,
		version:    options.version,
		devFeeRate: options.devFeeRate,
		feeScript:  options.feeScript,
	}, nil
}

// FeeScript returns the dev fee script new bounties pay platform fees to.
func (b *Builder) FeeScript() *model.FeeScript {
	return b.feeScript
}

// verify runs a bounty action plan through the validator as if signer signed it.
func (b *Builder) verify(t *model.Transition, height int32, signer []byte) error {
	vc := &validator.Context{Height: height}
	if len(signer) > 0 {
		vc.Signers = [][]byte{signer}
	}

	if err := b.validator.Check(t.Action, t, vc); err != nil {
		return errors.NewInvalidPreconditionError("[Builder] %s plan for bounty %s fails validation", t.Action, t.Prev.TokenID, err)
	}

	return nil
}

// finish records the outcome of a plan.
func (b *Builder) finish(action model.Action, t *model.Transition, err error) (*model.Transition, error) {
	observe(action, err)

	if err != nil {
		b.logger.Debugf("[Builder] refused %s: %v", action, err)
		return nil, err
	}

	b.logger.Debugf("[Builder] planned %s with %d outputs, shortfall %d", action, len(t.Outputs), t.Shortfall())

	return t, nil
}

// spend decodes the bounty in box. The record must be well formed enough to be rebuilt.
func (b *Builder) spend(action model.Action, box *model.Box) (*model.BountyRecord, error) {
	if box == nil {
		return nil, errors.NewInvalidArgumentError("[Builder] %s needs the bounty box", action)
	}

	prev, malformed, err := model.DecodeRecord(&box.Output)
	if err != nil {
		return nil, err
	}

	for _, id := range malformed {
		b.logger.Debugf("[Builder] bounty %s register %s is malformed, decoded as zero", prev.TokenID, id)
	}

	return prev, nil
}

// successor encodes next as output 0 of a transition spending box.
func (b *Builder) successor(action model.Action, box *model.Box, prev, next *model.BountyRecord) (*model.Transition, error) {
	out, err := model.EncodeRecord(next)
	if err != nil {
		return nil, err
	}

	return &model.Transition{
		Action:  action,
		Inputs:  []*model.Box{box},
		Prev:    prev,
		Next:    next,
		Outputs: []model.Output{*out},
		Fee:     b.params.MinerFee,
	}, nil
}
