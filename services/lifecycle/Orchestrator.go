// Package lifecycle drives bounties through their life on the ledger: it reads the
// current record, has the builder plan the transition, funds, assembles and signs it,
// submits it, and records the outcome.
package lifecycle

import (
	"bytes"
	"context"
	"time"

	"github.com/bountiful-platform/bountiful/chaincfg"
	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/services/builder"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/stores/bounty"
	"github.com/bountiful-platform/bountiful/ulogger"
	"github.com/bountiful-platform/bountiful/util/retry"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"golang.org/x/sync/errgroup"
)

const defaultConfirmationTimeout = 10 * time.Minute

type Orchestrator struct {
	logger              ulogger.Logger
	params              *chaincfg.Params
	builder             *builder.Builder
	ledger              Ledger
	wallet              Wallet
	assembler           TxAssembler
	store               bounty.Store
	notifier            Notifier
	retry               retry.Options
	confirmationTimeout time.Duration
}

// Result describes a transition the ledger accepted.
type Result struct {
	Action  model.Action
	TokenID chainhash.Hash
	TxID    chainhash.Hash
	Height  int32
	// Spent is the bounty box the transition consumed, nil when it consumed none.
	Spent *model.Box
	// Box is output 0 as it will sit on the ledger: the successor record, the mint
	// guard, or the published judgment. Nil for terminal transitions.
	Box    *model.Box
	Status model.Status
}

func New(logger ulogger.Logger, tSettings *settings.Settings, b *builder.Builder, ledger Ledger, wallet Wallet, opts ...Option) *Orchestrator {
	initPrometheusMetrics()

	options := &Options{
		retry:               retry.Options{Attempts: 1},
		confirmationTimeout: tSettings.Bounty.ConfirmationTimeout,
	}

	for _, o := range opts {
		o(options)
	}

	if options.assembler == nil {
		options.assembler = NewBasicAssembler(tSettings.ChainCfgParams)
	}

	if options.confirmationTimeout <= 0 {
		options.confirmationTimeout = defaultConfirmationTimeout
	}

	return &Orchestrator{
		logger:              logger,
		params:              tSettings.ChainCfgParams,
		builder:             b,
		ledger:              ledger,
		wallet:              wallet,
		assembler:           options.assembler,
		store:               options.store,
		notifier:            options.notifier,
		retry:               options.retry,
		confirmationTimeout: options.confirmationTimeout,
	}
}

// snapshot is what a transition on an existing bounty is planned against.
type snapshot struct {
	box        *model.Box
	height     int32
	dataInputs []*model.Box
}

// read fetches the bounty box, the height and the given data input boxes concurrently.
func (o *Orchestrator) read(ctx context.Context, tokenID chainhash.Hash, dataInputs ...chainhash.Hash) (*snapshot, error) {
	s := &snapshot{dataInputs: make([]*model.Box, len(dataInputs))}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		s.box, err = o.ledger.FetchRecord(gCtx, tokenID)
		return err
	})

	g.Go(func() (err error) {
		s.height, err = o.ledger.CurrentHeight(gCtx)
		return err
	})

	for i, boxID := range dataInputs {
		g.Go(func() (err error) {
			s.dataInputs[i], err = o.ledger.FetchBox(gCtx, boxID)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s, nil
}

// transition runs one action on an existing bounty, retried as configured.
func (o *Orchestrator) transition(ctx context.Context, action model.Action, tokenID chainhash.Hash, dataInputs []chainhash.Hash,
	plan func(s *snapshot) (*model.Transition, error)) (*Result, error) {
	return retry.Retry(ctx, o.logger, o.retry, string(action), func(ctx context.Context) (*Result, error) {
		start := time.Now()

		result, err := o.transitionOnce(ctx, action, tokenID, dataInputs, plan)
		observe(action, start, err)

		return result, err
	})
}

func (o *Orchestrator) transitionOnce(ctx context.Context, action model.Action, tokenID chainhash.Hash, dataInputs []chainhash.Hash,
	plan func(s *snapshot) (*model.Transition, error)) (*Result, error) {
	s, err := o.read(ctx, tokenID, dataInputs...)
	if err != nil {
		return nil, err
	}

	t, err := plan(s)
	if err != nil {
		return nil, err
	}

	if t.Action.CreatorGated() && !bytes.Equal(t.Prev.CreatorPubKey, o.wallet.PublicKey()) {
		return nil, errors.NewInvalidPreconditionError("only the creator of bounty %s can %s", tokenID, t.Action)
	}

	var spent *model.Box
	if len(t.Inputs) > 0 && t.Inputs[0].BoxID == s.box.BoxID {
		spent = s.box
	}

	result, err := o.execute(ctx, t, tokenID, s.height)
	if err != nil {
		return nil, o.classify(ctx, tokenID, spent, err)
	}

	result.Spent = spent
	o.record(ctx, t, result)

	return result, nil
}

// execute funds, assembles, signs and submits t.
func (o *Orchestrator) execute(ctx context.Context, t *model.Transition, tokenID chainhash.Hash, height int32) (*Result, error) {
	funding, err := o.wallet.FundingInputs(ctx, t.Shortfall())
	if err != nil {
		return nil, err
	}

	inputs := append(append([]*model.Box(nil), t.Inputs...), funding...)

	unsigned, err := o.assembler.Build(ctx, inputs, t.DataInputs, t.Outputs, t.Fee, o.wallet.ChangeAddress())
	if err != nil {
		return nil, err
	}

	signed, err := o.wallet.Sign(ctx, unsigned)
	if err != nil {
		return nil, err
	}

	if err = ctx.Err(); err != nil {
		return nil, errors.NewContextCanceledError("[Lifecycle] %s of bounty %s not submitted", t.Action, tokenID, err)
	}

	txID, err := o.ledger.Submit(ctx, signed)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Action:  t.Action,
		TokenID: tokenID,
		TxID:    txID,
		Height:  height,
	}

	if t.Next != nil || t.Action == model.ActionPublishJudgment {
		if boxes := signed.Tx.OutputBoxes(height); len(boxes) > 0 {
			result.Box = boxes[0]
		}
	}

	o.logger.Infof("[Lifecycle] %s of bounty %s submitted in transaction %s", t.Action, tokenID, txID)

	return result, nil
}

// classify turns a rejection of a transition on a box that is no longer current into a
// StaleRecord error, so callers retry it with a fresh read.
func (o *Orchestrator) classify(ctx context.Context, tokenID chainhash.Hash, spent *model.Box, err error) error {
	if spent == nil || !errors.Is(err, errors.ErrLedgerRejected) || errors.IsContextError(err) {
		return err
	}

	latest, fetchErr := o.ledger.FetchRecord(ctx, tokenID)
	if fetchErr == nil && latest.BoxID == spent.BoxID {
		return err
	}

	return errors.NewStaleRecordError("bounty %s moved past box %s", tokenID, spent.BoxID, err)
}

// record stores and announces an accepted transition. The transaction is on its way
// whatever happens here, so failures are logged and not returned.
func (o *Orchestrator) record(ctx context.Context, t *model.Transition, result *Result) {
	if result.Spent == nil {
		o.notify(ctx, result)
		return
	}

	result.Status = o.status(ctx, t, result)

	if o.store != nil {
		if err := o.store.Put(ctx, result.Spent, statusOf(t.Prev, result.Height)); err != nil {
			o.logger.Errorf("[Lifecycle] storing box %s of bounty %s: %v", result.Spent.BoxID, result.TokenID, err)
		}

		if err := o.store.MarkSpent(ctx, result.Spent.BoxID, result.TxID); err != nil {
			o.logger.Errorf("[Lifecycle] marking box %s of bounty %s spent: %v", result.Spent.BoxID, result.TokenID, err)
		}

		var err error
		if result.Box != nil {
			err = o.store.Put(ctx, result.Box, result.Status)
		} else {
			err = o.store.SetStatus(ctx, result.TokenID, result.Status)
		}

		if err != nil {
			o.logger.Errorf("[Lifecycle] recording %s of bounty %s: %v", t.Action, result.TokenID, err)
		}
	}

	o.notify(ctx, result)
}

func (o *Orchestrator) notify(ctx context.Context, result *Result) {
	if o.notifier == nil {
		return
	}

	if err := o.notifier.Notify(ctx, newTransitionEvent(result)); err != nil {
		o.logger.Warnf("[Lifecycle] announcing %s of bounty %s: %v", result.Action, result.TokenID, err)
	}
}

// status is the status of the bounty after t, starting from what the store knows.
func (o *Orchestrator) status(ctx context.Context, t *model.Transition, result *Result) model.Status {
	current := statusOf(t.Prev, result.Height)

	if o.store != nil {
		if entry, err := o.store.Latest(ctx, result.TokenID); err == nil && entry.Status != "" {
			current = entry.Status
		}
	}

	next, err := model.NextStatus(ctx, current, t.Action, t.Prev.Deadline, result.Height)
	if err != nil {
		o.logger.Warnf("[Lifecycle] bounty %s accepted %s in status %s: %v", result.TokenID, t.Action, current, err)
		return current
	}

	return next
}

func statusOf(r *model.BountyRecord, height int32) model.Status {
	if r == nil {
		return model.StatusOpen
	}

	return r.StatusAt(height)
}
