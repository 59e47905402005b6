package builder

import (
	"encoding/hex"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/util"
)

// FeeScriptFromSettings builds the dev fee script from the configured recipients.
func FeeScriptFromSettings(tSettings *settings.Settings) (*model.FeeScript, error) {
	recipients := tSettings.Bounty.FeeRecipients
	if len(recipients) == 0 {
		return nil, errors.NewConfigurationError("bounty_feeRecipients is empty")
	}

	if len(recipients) > 255 {
		return nil, errors.NewConfigurationError("bounty_feeRecipients lists %d recipients, at most 255 are supported", len(recipients))
	}

	feeScript := &model.FeeScript{Denominator: tSettings.Bounty.FeeDenominator}

	for _, recipient := range recipients {
		pubKey, err := hex.DecodeString(recipient.Address)
		if err != nil {
			return nil, errors.NewConfigurationError("fee recipient %q is not hex", recipient.Address, err)
		}

		feeScript.Shares = append(feeScript.Shares, model.FeeShare{
			Script: model.PubKeyScript(pubKey),
			Share:  recipient.Share,
		})
	}

	return feeScript, nil
}

// BuildFeeDistribution pays out the platform fees collected in boxes, all guarded by
// the dev fee script, to its recipients. What the shares leave over is the miner fee.
func (b *Builder) BuildFeeDistribution(boxes []*model.Box) (*model.Transition, error) {
	t, err := b.buildFeeDistribution(boxes)
	return b.finish(model.ActionDistributeFees, t, err)
}

func (b *Builder) buildFeeDistribution(boxes []*model.Box) (*model.Transition, error) {
	if len(boxes) == 0 {
		return nil, errors.NewInvalidArgumentError("no fee boxes to distribute")
	}

	feeScript, err := model.ParseFeeScript(boxes[0].Script)
	if err != nil {
		return nil, errors.NewInvalidArgumentError("box %s is not a fee box", boxes[0].BoxID, err)
	}

	total, err := model.BoxesValue(boxes)
	if err != nil {
		return nil, err
	}

	shares := make([]uint64, len(feeScript.Shares))
	for i, share := range feeScript.Shares {
		shares[i] = share.Share
	}

	amounts, miner, err := util.DistributeFees(b.params, total, shares, feeScript.Denominator)
	if err != nil {
		return nil, err
	}

	t := &model.Transition{
		Action: model.ActionDistributeFees,
		Inputs: boxes,
		Fee:    miner,
	}

	for i, amount := range amounts {
		t.Outputs = append(t.Outputs, model.Output{Value: amount, Script: feeScript.Shares[i].Script})
	}

	if err = b.validator.ValidateFeeDistribution(t); err != nil {
		return nil, errors.NewInvalidPreconditionError("[Builder] fee distribution plan fails validation", err)
	}

	return t, nil
}
