package validator

import (
	"bytes"

	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/util"
)

func (v *Validator) checkSubmit(t *model.Transition, self *model.Box, prev *model.BountyRecord, vc *Context) error {
	const action = model.ActionSubmitSolution

	if !prev.CanSubmit(vc.Height) {
		return reject(action, "height %d is past deadline %d", vc.Height, prev.Deadline)
	}

	next, err := v.successor(action, t, self, prev)
	if err != nil {
		return err
	}

	if !model.OnlySlotChanged(prev.Content, next.Content, model.SlotSubmissions) {
		return reject(action, "the submissions root, and only it, must change")
	}

	if !model.SamePayload(prev.Content, next.Content) {
		return reject(action, "payload must not change")
	}

	expected := prev.Clone()
	expected.Stats.Total++
	expected.Content = next.Content

	return replicated(action, expected, next)
}

func (v *Validator) checkJudge(t *model.Transition, self *model.Box, prev *model.BountyRecord, vc *Context) error {
	const action = model.ActionJudgeSubmission

	if err := v.creatorSigned(action, prev, vc); err != nil {
		return err
	}

	j, err := v.judgment(action, t, prev)
	if err != nil {
		return err
	}

	next, err := v.successor(action, t, self, prev)
	if err != nil {
		return err
	}

	if !model.OnlySlotChanged(prev.Content, next.Content, model.SlotJudgments) {
		return reject(action, "the judgments root, and only it, must change")
	}

	if !model.SamePayload(prev.Content, next.Content) {
		return reject(action, "payload must not change")
	}

	expected := prev.Clone()
	expected.Content = next.Content

	if j.Accepted {
		expected.Stats.Accepted++
	} else {
		expected.Stats.Rejected++
	}

	if !expected.Stats.Consistent() {
		return reject(action, "no pending submission to judge, stats %s", prev.Stats)
	}

	return replicated(action, expected, next)
}

func (v *Validator) checkWithdraw(t *model.Transition, prev *model.BountyRecord, vc *Context) error {
	const action = model.ActionWithdrawReward

	if !prev.HasWinner() {
		return reject(action, "no payable winner: stats %s, min submissions %d", prev.Stats, prev.MinSubmissions)
	}

	j, err := v.judgment(action, t, prev)
	if err != nil {
		return err
	}

	if !j.Accepted {
		return reject(action, "judgment rejects submission %s", j.SubmissionID)
	}

	if !prev.CanWithdraw(vc.Height, j.Height, v.params.DisputePeriod) {
		return reject(action, "height %d is inside the dispute period of the judgment at %d", vc.Height, j.Height)
	}

	if err = v.terminal(action, t, prev); err != nil {
		return err
	}

	split, err := util.SplitReward(v.params, prev.RewardAmount, prev.DevFeeRate)
	if err != nil {
		return reject(action, "reward cannot be split", err)
	}

	if len(t.Outputs) == 0 {
		return reject(action, "winner output missing")
	}

	winner := &t.Outputs[0]
	if !bytes.Equal(winner.Script, model.PubKeyScript(j.Winner)) || winner.Value != split.Winner {
		return reject(action, "output 0 must pay %d to the judged winner", split.Winner)
	}

	if split.Platform == 0 {
		return nil
	}

	if len(t.Outputs) < 2 {
		return reject(action, "platform fee output missing")
	}

	fee := &t.Outputs[1]
	if model.NewDigest(fee.Script) != prev.DevFeeScriptHash || fee.Value != split.Platform {
		return reject(action, "output 1 must pay %d to the dev fee script", split.Platform)
	}

	return nil
}

func (v *Validator) checkRefund(t *model.Transition, prev *model.BountyRecord, vc *Context) error {
	const action = model.ActionRefundBounty

	if !prev.IsEnded(vc.Height) {
		return reject(action, "height %d is not past deadline %d", vc.Height, prev.Deadline)
	}

	if !prev.IsRefundPeriod(vc.Height) {
		return reject(action, "bounty has a payable winner: stats %s, min submissions %d", prev.Stats, prev.MinSubmissions)
	}

	if err := v.terminal(action, t, prev); err != nil {
		return err
	}

	amount := v.RefundAmount(prev)

	if len(t.Outputs) == 0 {
		return reject(action, "refund output missing")
	}

	refund := &t.Outputs[0]
	if len(prev.CreatorPubKey) == 0 || !bytes.Equal(refund.Script, model.PubKeyScript(prev.CreatorPubKey)) || refund.Value != amount {
		return reject(action, "output 0 must return %d to the creator", amount)
	}

	return nil
}

// RefundAmount is what a refund returns to the creator: the reward for v1_0 records and
// the whole value for later versions, unless the refund mode pins one of them.
func (v *Validator) RefundAmount(prev *model.BountyRecord) uint64 {
	switch v.refundMode {
	case settings.RefundModeReward:
		return prev.RewardAmount
	case settings.RefundModeValue:
		return prev.Value
	}

	if prev.Version == model.V1_0 {
		return prev.RewardAmount
	}

	return prev.Value
}

func (v *Validator) checkAddFunds(t *model.Transition, self *model.Box, prev *model.BountyRecord, vc *Context) error {
	const action = model.ActionAddFunds

	if err := v.creatorSigned(action, prev, vc); err != nil {
		return err
	}

	next, err := v.successor(action, t, self, prev)
	if err != nil {
		return err
	}

	if next.Value <= prev.Value || next.RewardAmount <= prev.RewardAmount {
		return reject(action, "value and reward must both grow")
	}

	if next.Value-prev.Value != next.RewardAmount-prev.RewardAmount {
		return reject(action, "value grows by %d but reward by %d", next.Value-prev.Value, next.RewardAmount-prev.RewardAmount)
	}

	expected := prev.Clone()
	expected.Value = next.Value
	expected.RewardAmount = next.RewardAmount

	return replicated(action, expected, next)
}

func (v *Validator) checkExtendDeadline(t *model.Transition, self *model.Box, prev *model.BountyRecord, vc *Context) error {
	const action = model.ActionExtendDeadline

	if err := v.creatorSigned(action, prev, vc); err != nil {
		return err
	}

	if prev.IsEnded(vc.Height) {
		return reject(action, "height %d is past deadline %d", vc.Height, prev.Deadline)
	}

	next, err := v.successor(action, t, self, prev)
	if err != nil {
		return err
	}

	if next.Deadline <= prev.Deadline {
		return reject(action, "deadline %d does not extend %d", next.Deadline, prev.Deadline)
	}

	expected := prev.Clone()
	expected.Deadline = next.Deadline

	return replicated(action, expected, next)
}

func (v *Validator) checkUpdateMetadata(t *model.Transition, self *model.Box, prev *model.BountyRecord, vc *Context) error {
	const action = model.ActionUpdateMetadata

	if err := v.creatorSigned(action, prev, vc); err != nil {
		return err
	}

	if prev.IsEnded(vc.Height) {
		return reject(action, "height %d is past deadline %d", vc.Height, prev.Deadline)
	}

	next, err := v.successor(action, t, self, prev)
	if err != nil {
		return err
	}

	if !model.OnlySlotChanged(prev.Content, next.Content, model.SlotMetadata) {
		return reject(action, "the metadata root, and only it, must change")
	}

	if prev.Version == model.V1_0 {
		before, after := prev.Metadata().Version, next.Metadata().Version
		if after <= before {
			return reject(action, "metadata version %d does not increase %d", after, before)
		}
	}

	expected := prev.Clone()
	expected.Content = next.Content

	return replicated(action, expected, next)
}
