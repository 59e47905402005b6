package lifecycle

import (
	"context"
	"time"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/services/builder"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"golang.org/x/sync/errgroup"
)

// CreateBounty mints the control token into a mint guard, waits for the mint to
// confirm and then releases the token into the new bounty record. The creator is the
// wallet's key unless req names one.
func (o *Orchestrator) CreateBounty(ctx context.Context, req *builder.CreateRequest) (*Result, error) {
	start := time.Now()

	result, err := o.createBounty(ctx, req)
	observe(model.ActionCreate, start, err)

	return result, err
}

func (o *Orchestrator) createBounty(ctx context.Context, req *builder.CreateRequest) (*Result, error) {
	if req == nil {
		return nil, errors.NewInvalidArgumentError("create request is required")
	}

	create := *req
	if len(create.CreatorPubKey) == 0 {
		create.CreatorPubKey = o.wallet.PublicKey()
	}

	height, err := o.ledger.CurrentHeight(ctx)
	if err != nil {
		return nil, err
	}

	if create.Deadline <= height {
		return nil, errors.NewInvalidArgumentError("deadline %d is not after height %d", create.Deadline, height)
	}

	funding, err := o.wallet.FundingInputs(ctx, o.params.MinBoxValue+o.params.MinerFee)
	if err != nil {
		return nil, err
	}

	mint, r, err := o.builder.BuildMint(&create, funding)
	if err != nil {
		return nil, err
	}

	minted, err := o.execute(ctx, mint, r.TokenID, height)
	if err != nil {
		return nil, err
	}

	o.notify(ctx, minted)

	guard, err := o.ledger.AwaitConfirmation(ctx, minted.TxID, o.confirmationTimeout)
	if err != nil {
		return nil, err
	}

	plan, err := o.builder.BuildCreate(guard, r)
	if err != nil {
		return nil, err
	}

	result, err := o.execute(ctx, plan, r.TokenID, height)
	if err != nil {
		return nil, err
	}

	result.Status = model.StatusOpen

	if o.store != nil && result.Box != nil {
		if err = o.store.Put(ctx, result.Box, result.Status); err != nil {
			o.logger.Errorf("[Lifecycle] storing new bounty %s: %v", r.TokenID, err)
		}
	}

	o.notify(ctx, result)

	return result, nil
}

// Submit records a solution with digest blake2b(submission) in the submissions root.
func (o *Orchestrator) Submit(ctx context.Context, tokenID chainhash.Hash, submission []byte) (*Result, error) {
	return o.transition(ctx, model.ActionSubmitSolution, tokenID, nil, func(s *snapshot) (*model.Transition, error) {
		return o.builder.BuildSubmit(s.box, s.height, submission)
	})
}

// PublishJudgment publishes the creator's verdict on a submission as a judgment box.
// Result.Box is the box to pass to Judge and Withdraw.
func (o *Orchestrator) PublishJudgment(ctx context.Context, tokenID chainhash.Hash, submissionID model.Digest, accepted bool, winner []byte) (*Result, error) {
	return o.transition(ctx, model.ActionPublishJudgment, tokenID, nil, func(s *snapshot) (*model.Transition, error) {
		prev, _, err := model.DecodeRecord(&s.box.Output)
		if err != nil {
			return nil, err
		}

		return o.builder.BuildPublishJudgment(prev, &model.Judgment{
			BountyID:     tokenID,
			SubmissionID: submissionID,
			Accepted:     accepted,
			Winner:       winner,
			Height:       s.height,
		})
	})
}

// Judge counts the judgment published in box judgmentID.
func (o *Orchestrator) Judge(ctx context.Context, tokenID, judgmentID chainhash.Hash) (*Result, error) {
	return o.transition(ctx, model.ActionJudgeSubmission, tokenID, []chainhash.Hash{judgmentID}, func(s *snapshot) (*model.Transition, error) {
		return o.builder.BuildJudge(s.box, s.dataInputs[0], s.height)
	})
}

// Withdraw pays the reward to the winner of the accepted judgment in box judgmentID.
func (o *Orchestrator) Withdraw(ctx context.Context, tokenID, judgmentID chainhash.Hash) (*Result, error) {
	return o.transition(ctx, model.ActionWithdrawReward, tokenID, []chainhash.Hash{judgmentID}, func(s *snapshot) (*model.Transition, error) {
		return o.builder.BuildWithdraw(s.box, s.dataInputs[0], s.height)
	})
}

func (o *Orchestrator) Refund(ctx context.Context, tokenID chainhash.Hash) (*Result, error) {
	return o.transition(ctx, model.ActionRefundBounty, tokenID, nil, func(s *snapshot) (*model.Transition, error) {
		return o.builder.BuildRefund(s.box, s.height)
	})
}

func (o *Orchestrator) AddFunds(ctx context.Context, tokenID chainhash.Hash, amount uint64) (*Result, error) {
	return o.transition(ctx, model.ActionAddFunds, tokenID, nil, func(s *snapshot) (*model.Transition, error) {
		return o.builder.BuildAddFunds(s.box, s.height, amount)
	})
}

func (o *Orchestrator) ExtendDeadline(ctx context.Context, tokenID chainhash.Hash, deadline int32) (*Result, error) {
	return o.transition(ctx, model.ActionExtendDeadline, tokenID, nil, func(s *snapshot) (*model.Transition, error) {
		return o.builder.BuildExtendDeadline(s.box, s.height, deadline)
	})
}

func (o *Orchestrator) UpdateMetadata(ctx context.Context, tokenID chainhash.Hash, meta *model.Metadata) (*Result, error) {
	return o.transition(ctx, model.ActionUpdateMetadata, tokenID, nil, func(s *snapshot) (*model.Transition, error) {
		return o.builder.BuildUpdateMetadata(s.box, s.height, meta)
	})
}

// DistributeFees pays out every fee box of the configured dev fee script.
func (o *Orchestrator) DistributeFees(ctx context.Context) (*Result, error) {
	start := time.Now()

	result, err := o.distributeFees(ctx)
	observe(model.ActionDistributeFees, start, err)

	return result, err
}

func (o *Orchestrator) distributeFees(ctx context.Context) (*Result, error) {
	var (
		boxes  []*model.Box
		height int32
	)

	script := o.builder.FeeScript().Bytes()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		boxes, err = o.ledger.UnspentByScript(gCtx, script)
		return err
	})

	g.Go(func() (err error) {
		height, err = o.ledger.CurrentHeight(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan, err := o.builder.BuildFeeDistribution(boxes)
	if err != nil {
		return nil, err
	}

	result, err := o.execute(ctx, plan, chainhash.Hash{}, height)
	if err != nil {
		return nil, err
	}

	o.notify(ctx, result)

	return result, nil
}
