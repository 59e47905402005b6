package builder

import (
	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/util"
)

// BuildSubmit appends submission to the submissions root.
func (b *Builder) BuildSubmit(box *model.Box, height int32, submission []byte) (*model.Transition, error) {
	t, err := b.buildSubmit(box, height, submission)
	return b.finish(model.ActionSubmitSolution, t, err)
}

func (b *Builder) buildSubmit(box *model.Box, height int32, submission []byte) (*model.Transition, error) {
	const action = model.ActionSubmitSolution

	prev, err := b.spend(action, box)
	if err != nil {
		return nil, err
	}

	if !prev.CanSubmit(height) {
		return nil, errors.NewInvalidPreconditionError("bounty %s closed at %d, height is %d", prev.TokenID, prev.Deadline, height)
	}

	id := model.NewDigest(submission)
	root := model.Accumulate(prev.DecodedContent().Root(model.SlotSubmissions), id[:])

	next := prev.Clone()
	next.Stats.Total++

	if next.Content, err = model.ReplaceRoot(prev.Content, model.SlotSubmissions, root); err != nil {
		return nil, err
	}

	t, err := b.successor(action, box, prev, next)
	if err != nil {
		return nil, err
	}

	return t, b.verify(t, height, nil)
}

// BuildPublishJudgment creates the box carrying the creator's verdict on a submission.
// It is an ordinary output owned by the creator, later read as a data input by the
// judge and withdraw transitions.
func (b *Builder) BuildPublishJudgment(prev *model.BountyRecord, j *model.Judgment) (*model.Transition, error) {
	t, err := b.buildPublishJudgment(prev, j)
	return b.finish(model.ActionPublishJudgment, t, err)
}

func (b *Builder) buildPublishJudgment(prev *model.BountyRecord, j *model.Judgment) (*model.Transition, error) {
	if j.BountyID != prev.TokenID {
		return nil, errors.NewInvalidArgumentError("judgment is for bounty %s, not %s", j.BountyID, prev.TokenID)
	}

	regs, err := model.EncodeJudgment(j)
	if err != nil {
		return nil, err
	}

	return &model.Transition{
		Action: model.ActionPublishJudgment,
		Prev:   prev,
		Outputs: []model.Output{{
			Value:     b.params.MinBoxValue,
			Script:    model.PubKeyScript(prev.CreatorPubKey),
			Registers: regs,
		}},
		Fee: b.params.MinerFee,
	}, nil
}

// BuildJudge folds the published judgment into the judgments root and counts it.
func (b *Builder) BuildJudge(box, judgment *model.Box, height int32) (*model.Transition, error) {
	t, err := b.buildJudge(box, judgment, height)
	return b.finish(model.ActionJudgeSubmission, t, err)
}

func (b *Builder) buildJudge(box, judgment *model.Box, height int32) (*model.Transition, error) {
	const action = model.ActionJudgeSubmission

	prev, err := b.spend(action, box)
	if err != nil {
		return nil, err
	}

	if judgment == nil {
		return nil, errors.NewInvalidArgumentError("judging needs the published judgment box")
	}

	if !prev.CanJudge() {
		return nil, errors.NewInvalidPreconditionError("bounty %s has no pending submission, stats %s", prev.TokenID, prev.Stats)
	}

	j, err := model.DecodeJudgment(&judgment.Output)
	if err != nil {
		return nil, err
	}

	next := prev.Clone()

	if j.Accepted {
		next.Stats.Accepted++
	} else {
		next.Stats.Rejected++
	}

	root := model.Accumulate(prev.DecodedContent().Root(model.SlotJudgments), j.Bytes())
	if next.Content, err = model.ReplaceRoot(prev.Content, model.SlotJudgments, root); err != nil {
		return nil, err
	}

	t, err := b.successor(action, box, prev, next)
	if err != nil {
		return nil, err
	}

	t.DataInputs = []*model.Box{judgment}

	return t, b.verify(t, height, prev.CreatorPubKey)
}

// BuildWithdraw pays the reward to the winner named in the accepted judgment, and the
// platform fee to the dev fee script when it is not zero. What the bounty holds beyond
// the reward goes to whoever assembles the transaction as change.
func (b *Builder) BuildWithdraw(box, judgment *model.Box, height int32) (*model.Transition, error) {
	t, err := b.buildWithdraw(box, judgment, height)
	return b.finish(model.ActionWithdrawReward, t, err)
}

func (b *Builder) buildWithdraw(box, judgment *model.Box, height int32) (*model.Transition, error) {
	const action = model.ActionWithdrawReward

	prev, err := b.spend(action, box)
	if err != nil {
		return nil, err
	}

	if judgment == nil {
		return nil, errors.NewInvalidArgumentError("withdrawing needs the accepted judgment box")
	}

	j, err := model.DecodeJudgment(&judgment.Output)
	if err != nil {
		return nil, err
	}

	if !j.Accepted {
		return nil, errors.NewInvalidPreconditionError("judgment rejects submission %s", j.SubmissionID)
	}

	if !prev.CanWithdraw(height, j.Height, b.params.DisputePeriod) {
		return nil, errors.NewInvalidPreconditionError("bounty %s cannot pay out at %d: stats %s, judged at %d, dispute period %d",
			prev.TokenID, height, prev.Stats, j.Height, b.params.DisputePeriod)
	}

	split, err := util.SplitReward(b.params, prev.RewardAmount, prev.DevFeeRate)
	if err != nil {
		return nil, err
	}

	outputs := []model.Output{{Value: split.Winner, Script: model.PubKeyScript(j.Winner)}}

	if split.Platform > 0 {
		feeScript := b.feeScript.Bytes()
		if model.NewDigest(feeScript) != prev.DevFeeScriptHash {
			return nil, errors.NewInvalidPreconditionError("bounty %s pays fees to script %s, which is not the configured dev fee script", prev.TokenID, prev.DevFeeScriptHash)
		}

		outputs = append(outputs, model.Output{Value: split.Platform, Script: feeScript})
	}

	t := &model.Transition{
		Action:     action,
		Inputs:     []*model.Box{box},
		DataInputs: []*model.Box{judgment},
		Prev:       prev,
		Outputs:    outputs,
		Fee:        split.Miner,
	}

	return t, b.verify(t, height, nil)
}

// BuildRefund returns the refund amount to the creator after a deadline without a
// payable winner.
func (b *Builder) BuildRefund(box *model.Box, height int32) (*model.Transition, error) {
	t, err := b.buildRefund(box, height)
	return b.finish(model.ActionRefundBounty, t, err)
}

func (b *Builder) buildRefund(box *model.Box, height int32) (*model.Transition, error) {
	const action = model.ActionRefundBounty

	prev, err := b.spend(action, box)
	if err != nil {
		return nil, err
	}

	if !prev.IsRefundPeriod(height) {
		return nil, errors.NewInvalidPreconditionError("bounty %s is not refundable at %d: deadline %d, stats %s, min submissions %d",
			prev.TokenID, height, prev.Deadline, prev.Stats, prev.MinSubmissions)
	}

	amount := b.validator.RefundAmount(prev)
	if amount < b.params.DustThreshold {
		return nil, errors.NewDustOutputError("refund of %d is below dust threshold %d", amount, b.params.DustThreshold)
	}

	t := &model.Transition{
		Action:  action,
		Inputs:  []*model.Box{box},
		Prev:    prev,
		Outputs: []model.Output{{Value: amount, Script: model.PubKeyScript(prev.CreatorPubKey)}},
		Fee:     b.params.MinerFee,
	}

	return t, b.verify(t, height, nil)
}

// BuildAddFunds grows value and reward by amount. The wallet covers the shortfall.
func (b *Builder) BuildAddFunds(box *model.Box, height int32, amount uint64) (*model.Transition, error) {
	t, err := b.buildAddFunds(box, height, amount)
	return b.finish(model.ActionAddFunds, t, err)
}

func (b *Builder) buildAddFunds(box *model.Box, height int32, amount uint64) (*model.Transition, error) {
	const action = model.ActionAddFunds

	if amount == 0 {
		return nil, errors.NewInvalidArgumentError("amount must be positive")
	}

	prev, err := b.spend(action, box)
	if err != nil {
		return nil, err
	}

	next := prev.Clone()
	next.Value += amount
	next.RewardAmount += amount

	if next.Value < prev.Value || next.RewardAmount < prev.RewardAmount {
		return nil, errors.NewInvalidArgumentError("adding %d overflows bounty %s", amount, prev.TokenID)
	}

	t, err := b.successor(action, box, prev, next)
	if err != nil {
		return nil, err
	}

	return t, b.verify(t, height, prev.CreatorPubKey)
}

// BuildExtendDeadline moves the deadline to deadline.
func (b *Builder) BuildExtendDeadline(box *model.Box, height, deadline int32) (*model.Transition, error) {
	t, err := b.buildExtendDeadline(box, height, deadline)
	return b.finish(model.ActionExtendDeadline, t, err)
}

func (b *Builder) buildExtendDeadline(box *model.Box, height, deadline int32) (*model.Transition, error) {
	const action = model.ActionExtendDeadline

	prev, err := b.spend(action, box)
	if err != nil {
		return nil, err
	}

	if prev.IsEnded(height) {
		return nil, errors.NewInvalidPreconditionError("bounty %s closed at %d, height is %d", prev.TokenID, prev.Deadline, height)
	}

	if deadline <= prev.Deadline {
		return nil, errors.NewInvalidArgumentError("deadline %d does not extend %d", deadline, prev.Deadline)
	}

	next := prev.Clone()
	next.Deadline = deadline

	t, err := b.successor(action, box, prev, next)
	if err != nil {
		return nil, err
	}

	return t, b.verify(t, height, prev.CreatorPubKey)
}

// BuildUpdateMetadata replaces the payload with meta and commits to it in the metadata
// root. The payload version is bumped past the current one when meta does not already
// move it forward.
func (b *Builder) BuildUpdateMetadata(box *model.Box, height int32, meta *model.Metadata) (*model.Transition, error) {
	t, err := b.buildUpdateMetadata(box, height, meta)
	return b.finish(model.ActionUpdateMetadata, t, err)
}

func (b *Builder) buildUpdateMetadata(box *model.Box, height int32, meta *model.Metadata) (*model.Transition, error) {
	const action = model.ActionUpdateMetadata

	if meta == nil {
		return nil, errors.NewInvalidArgumentError("metadata is required")
	}

	prev, err := b.spend(action, box)
	if err != nil {
		return nil, err
	}

	if prev.IsEnded(height) {
		return nil, errors.NewInvalidPreconditionError("bounty %s closed at %d, height is %d", prev.TokenID, prev.Deadline, height)
	}

	updated := *meta
	if current := prev.Metadata().Version; updated.Version <= current {
		updated.Version = current + 1
	}

	payload, err := updated.Bytes()
	if err != nil {
		return nil, errors.NewEncodingError("metadata payload", err)
	}

	next := prev.Clone()
	if next.Content, err = model.ReplaceRoot(model.ReplacePayload(prev.Content, payload), model.SlotMetadata, model.NewDigest(payload)); err != nil {
		return nil, err
	}

	t, err := b.successor(action, box, prev, next)
	if err != nil {
		return nil, err
	}

	return t, b.verify(t, height, prev.CreatorPubKey)
}
