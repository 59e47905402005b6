package model

import (
	"context"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/looplab/fsm"
)

const (
	EventExpire   = "expire"
	EventWithdraw = "withdraw"
	EventRefund   = "refund"
)

// NewStatusFSM creates the state machine tracking a bounty off-ledger.
// The finite state machine has the following states:
// - open
// - expired
// - paid
// - refunded
// The finite state machine has the following events:
// - expire: the deadline passed
// - withdraw: the winner collected the reward
// - refund: the creator took the funds back
func NewStatusFSM(initial Status, opts ...func(*fsm.FSM)) *fsm.FSM {
	statusFSM := fsm.NewFSM(
		string(initial),
		fsm.Events{
			{
				Name: EventExpire,
				Src:  []string{string(StatusOpen)},
				Dst:  string(StatusExpired),
			},
			{
				Name: EventWithdraw,
				Src:  []string{string(StatusOpen), string(StatusExpired)},
				Dst:  string(StatusPaid),
			},
			{
				Name: EventRefund,
				Src:  []string{string(StatusExpired)},
				Dst:  string(StatusRefunded),
			},
		},
		fsm.Callbacks{},
	)

	for _, opt := range opts {
		opt(statusFSM)
	}

	return statusFSM
}

// NextStatus is the status of a bounty after action was accepted at height.
func NextStatus(ctx context.Context, current Status, action Action, deadline, height int32) (Status, error) {
	statusFSM := NewStatusFSM(current)

	if height > deadline && statusFSM.Can(EventExpire) {
		if err := statusFSM.Event(ctx, EventExpire); err != nil {
			return current, errors.NewProcessingError("status %s cannot expire", current, err)
		}
	}

	var event string

	switch action {
	case ActionWithdrawReward:
		event = EventWithdraw
	case ActionRefundBounty:
		event = EventRefund
	default:
		return Status(statusFSM.Current()), nil
	}

	if err := statusFSM.Event(ctx, event); err != nil {
		return current, errors.NewInvalidPreconditionError("bounty in status %s cannot %s", statusFSM.Current(), event, err)
	}

	return Status(statusFSM.Current()), nil
}
