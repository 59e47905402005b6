package validator

import (
	"bytes"

	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/util"
)

// ValidateMintSpend is the mint guard predicate: the whole minted token moves to output
// 0, which runs the bounty script the guard was created for and is a correctly built
// record.
func (v *Validator) ValidateMintSpend(t *model.Transition) error {
	const action = model.ActionCreate

	if len(t.Inputs) == 0 {
		return reject(action, "nothing spent")
	}

	self := t.Inputs[0]

	scriptHash, err := model.ParseMintGuardScript(self.Script)
	if err != nil {
		return reject(action, "input 0 is not a mint guard", err)
	}

	if len(self.Tokens) == 0 {
		return reject(action, "mint guard holds no token")
	}

	token := self.Tokens[0]

	if len(t.Outputs) == 0 {
		return reject(action, "bounty output missing")
	}

	out := &t.Outputs[0]

	if out.TokenAmount(token.ID) != token.Amount {
		return reject(action, "output 0 must carry all %d of token %s", token.Amount, token.ID)
	}

	if model.NewDigest(out.Script) != scriptHash {
		return reject(action, "output 0 does not run the bounty script the token was minted for")
	}

	return v.CorrectBuild(out)
}

// ValidateFeeDistribution is the dev fee script predicate: every recipient gets exactly
// its share of what the spent fee boxes hold minus the miner fee, in script order, and
// the miner fee is paid.
func (v *Validator) ValidateFeeDistribution(t *model.Transition) error {
	const action = model.ActionDistributeFees

	if len(t.Inputs) == 0 {
		return reject(action, "nothing spent")
	}

	feeScript, err := model.ParseFeeScript(t.Inputs[0].Script)
	if err != nil {
		return reject(action, "input 0 is not a fee script", err)
	}

	for i, in := range t.Inputs {
		if !bytes.Equal(in.Script, t.Inputs[0].Script) {
			return reject(action, "input %d is not a fee box", i)
		}
	}

	total, err := model.BoxesValue(t.Inputs)
	if err != nil {
		return reject(action, "fee boxes", err)
	}

	shares := make([]uint64, len(feeScript.Shares))
	for i, share := range feeScript.Shares {
		shares[i] = share.Share
	}

	amounts, _, err := util.DistributeFees(v.params, total, shares, feeScript.Denominator)
	if err != nil {
		return reject(action, "fees cannot be distributed", err)
	}

	if len(t.Outputs) < len(amounts) {
		return reject(action, "%d recipient outputs expected, got %d", len(amounts), len(t.Outputs))
	}

	for i, amount := range amounts {
		out := &t.Outputs[i]
		if !bytes.Equal(out.Script, feeScript.Shares[i].Script) || out.Value != amount {
			return reject(action, "output %d must pay %d to recipient %d", i, amount, i)
		}
	}

	if t.Fee < v.params.MinerFee {
		return reject(action, "miner fee %d is below %d", t.Fee, v.params.MinerFee)
	}

	return nil
}
