package model

import (
	"math"
	"math/bits"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// Action names a bounty transition.
type Action string

const (
	ActionMint            Action = "mint"
	ActionCreate          Action = "create"
	ActionSubmitSolution  Action = "submit_solution"
	ActionJudgeSubmission Action = "judge_submission"
	ActionWithdrawReward  Action = "withdraw_reward"
	ActionRefundBounty    Action = "refund_bounty"
	ActionAddFunds        Action = "add_funds"
	ActionExtendDeadline  Action = "extend_deadline"
	ActionUpdateMetadata  Action = "update_metadata"
	ActionDistributeFees  Action = "distribute_fees"
	ActionPublishJudgment Action = "publish_judgment"
)

// BountyActions are the transitions a live bounty record accepts, in the order the
// ledger tries them.
var BountyActions = []Action{
	ActionSubmitSolution,
	ActionJudgeSubmission,
	ActionWithdrawReward,
	ActionRefundBounty,
	ActionAddFunds,
	ActionExtendDeadline,
	ActionUpdateMetadata,
}

// Terminal reports whether the action consumes the bounty without a successor.
func (a Action) Terminal() bool {
	return a == ActionWithdrawReward || a == ActionRefundBounty
}

// CreatorGated reports whether only the creator may take the action.
func (a Action) CreatorGated() bool {
	switch a {
	case ActionPublishJudgment, ActionJudgeSubmission, ActionAddFunds, ActionExtendDeadline, ActionUpdateMetadata:
		return true
	default:
		return false
	}
}

// Judgment is the creator's verdict on one submission, published as a data input for
// the judge and withdraw transitions.
type Judgment struct {
	BountyID     chainhash.Hash
	SubmissionID Digest
	Accepted     bool
	Winner       []byte
	Height       int32
}

// Bytes is what gets folded into the judgments root.
func (j *Judgment) Bytes() []byte {
	regs, err := EncodeJudgment(j)
	if err != nil {
		return nil
	}

	b := make([]byte, 0, 128)
	for _, id := range []RegisterID{R4, R5, R6, R7, R8} {
		b = append(b, regs[id]...)
	}

	return b
}

// Transition is a proposed ledger transaction: the boxes it consumes and the outputs it
// produces. Prev is the decoded bounty being consumed and Next its successor, nil when
// the transition is terminal.
type Transition struct {
	Action     Action
	Inputs     []*Box
	DataInputs []*Box
	Prev       *BountyRecord
	Next       *BountyRecord
	Outputs    []Output
	Fee        uint64
}

func (t *Transition) Terminal() bool {
	return t.Next == nil
}

// SumValues adds values and fails instead of wrapping past 2^64.
func SumValues(values ...uint64) (uint64, error) {
	var sum uint64

	for _, v := range values {
		var carry uint64
		if sum, carry = bits.Add64(sum, v, 0); carry != 0 {
			return 0, errors.NewInvalidPreconditionError("value sum overflows")
		}
	}

	return sum, nil
}

// BoxesValue sums the value of boxes.
func BoxesValue(boxes []*Box) (uint64, error) {
	values := make([]uint64, len(boxes))
	for i, box := range boxes {
		values[i] = box.Value
	}

	return SumValues(values...)
}

// OutputsValue sums the value of outputs.
func OutputsValue(outputs []Output) (uint64, error) {
	values := make([]uint64, len(outputs))
	for i := range outputs {
		values[i] = outputs[i].Value
	}

	return SumValues(values...)
}

// InputValue sums the value of the consumed boxes.
func (t *Transition) InputValue() (uint64, error) {
	return BoxesValue(t.Inputs)
}

// OutputValue sums the value of the produced outputs and the fee.
func (t *Transition) OutputValue() (uint64, error) {
	v, err := OutputsValue(t.Outputs)
	if err != nil {
		return 0, err
	}

	return SumValues(v, t.Fee)
}

// Shortfall is how much value the wallet has to add for the transition to balance.
// Outputs that overflow saturate to the largest value, which no wallet can fund.
func (t *Transition) Shortfall() uint64 {
	out, err := t.OutputValue()
	if err != nil {
		return math.MaxUint64
	}

	in, err := t.InputValue()
	if err != nil || out <= in {
		return 0
	}

	return out - in
}
