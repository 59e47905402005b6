// Package memory is an in-process ledger. It applies the same validation a ledger node
// does and confirms every accepted transaction immediately, which makes it the ledger
// of the test suites and of `bountiful serve -ledger memory`.
package memory

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/services/validator"
	"github.com/bountiful-platform/bountiful/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

const pollInterval = 5 * time.Millisecond

type Ledger struct {
	logger    ulogger.Logger
	validator validator.Interface

	mu        sync.RWMutex
	height    int32
	boxes     map[chainhash.Hash]*model.Box
	spent     map[chainhash.Hash]chainhash.Hash
	confirmed map[chainhash.Hash][]*model.Box
	genesis   uint32
}

func New(logger ulogger.Logger, v validator.Interface, height int32) *Ledger {
	return &Ledger{
		logger:    logger,
		validator: v,
		height:    height,
		boxes:     make(map[chainhash.Hash]*model.Box),
		spent:     make(map[chainhash.Hash]chainhash.Hash),
		confirmed: make(map[chainhash.Hash][]*model.Box),
	}
}

// Fund places out on the ledger without a spending transaction.
func (l *Ledger) Fund(out model.Output) *model.Box {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.genesis++

	txID := chainhash.Hash(model.NewDigest(binary.BigEndian.AppendUint32([]byte("genesis"), l.genesis)))
	box := &model.Box{
		Output:         out.Clone(),
		BoxID:          model.NewBoxID(txID, 0),
		TxID:           txID,
		CreationHeight: l.height,
	}

	l.boxes[box.BoxID] = box
	l.confirmed[txID] = []*model.Box{box}

	return copyBox(box)
}

// Mine advances the height by blocks.
func (l *Ledger) Mine(blocks int32) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.height += blocks

	return l.height
}

func (l *Ledger) CurrentHeight(_ context.Context) (int32, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.height, nil
}

func (l *Ledger) FetchRecord(_ context.Context, tokenID chainhash.Hash) (*model.Box, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for id, box := range l.boxes {
		if _, spent := l.spent[id]; spent || box.TokenAmount(tokenID) == 0 {
			continue
		}

		switch model.ScriptTag(box.Script) {
		case model.ScriptTagBounty, model.ScriptTagMintGuard:
			return copyBox(box), nil
		}
	}

	return nil, errors.NewRecordNotFoundError("bounty %s has no unspent record", tokenID)
}

// FetchBox returns a box whether or not it has been spent.
func (l *Ledger) FetchBox(_ context.Context, boxID chainhash.Hash) (*model.Box, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	box, ok := l.boxes[boxID]
	if !ok {
		return nil, errors.NewRecordNotFoundError("box %s not found", boxID)
	}

	return copyBox(box), nil
}

func (l *Ledger) UnspentByScript(_ context.Context, script []byte) ([]*model.Box, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var boxes []*model.Box

	for id, box := range l.boxes {
		if _, spent := l.spent[id]; !spent && bytes.Equal(box.Script, script) {
			boxes = append(boxes, copyBox(box))
		}
	}

	return boxes, nil
}

// Submit validates tx against the ledger's own copies of its inputs and applies it at
// the current height. Spending a box that is already spent is a StaleRecord error, any
// other failure a LedgerRejected one.
func (l *Ledger) Submit(_ context.Context, tx *model.SignedTx) (chainhash.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	txID := tx.ID()

	resolved := &model.Tx{
		Inputs:     make([]*model.Box, 0, len(tx.Tx.Inputs)),
		DataInputs: make([]*model.Box, 0, len(tx.Tx.DataInputs)),
		Outputs:    tx.Tx.Outputs,
		Fee:        tx.Tx.Fee,
	}

	for _, in := range tx.Tx.Inputs {
		box, ok := l.boxes[in.BoxID]
		if !ok {
			return chainhash.Hash{}, errors.NewLedgerRejectedError("transaction %s spends unknown box %s", txID, in.BoxID)
		}

		if by, spent := l.spent[in.BoxID]; spent {
			return chainhash.Hash{}, errors.NewStaleRecordError("transaction %s spends box %s already spent by %s", txID, in.BoxID, by)
		}

		resolved.Inputs = append(resolved.Inputs, box)
	}

	for _, in := range tx.Tx.DataInputs {
		box, ok := l.boxes[in.BoxID]
		if !ok {
			return chainhash.Hash{}, errors.NewLedgerRejectedError("transaction %s reads unknown box %s", txID, in.BoxID)
		}

		if _, spent := l.spent[in.BoxID]; spent {
			return chainhash.Hash{}, errors.NewStaleRecordError("transaction %s reads spent box %s", txID, in.BoxID)
		}

		resolved.DataInputs = append(resolved.DataInputs, box)
	}

	if err := l.validator.ValidateTx(validator.FromTx(resolved), validator.NewContext(tx, l.height)); err != nil {
		return chainhash.Hash{}, errors.NewLedgerRejectedError("transaction %s rejected", txID, err)
	}

	for _, in := range resolved.Inputs {
		l.spent[in.BoxID] = txID
	}

	outputs := resolved.OutputBoxes(l.height)
	for _, box := range outputs {
		l.boxes[box.BoxID] = box
	}

	l.confirmed[txID] = outputs

	l.logger.Debugf("[MemoryLedger] transaction %s confirmed at %d with %d outputs", txID, l.height, len(outputs))

	return txID, nil
}

// AwaitConfirmation returns the first output of txID, waiting up to timeout for it to
// be submitted.
func (l *Ledger) AwaitConfirmation(ctx context.Context, txID chainhash.Hash, timeout time.Duration) (*model.Box, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		l.mu.RLock()
		outputs, ok := l.confirmed[txID]
		l.mu.RUnlock()

		if ok {
			if len(outputs) == 0 {
				return nil, errors.NewProcessingError("transaction %s has no outputs", txID)
			}

			return copyBox(outputs[0]), nil
		}

		select {
		case <-ctx.Done():
			return nil, errors.NewTimeoutError("transaction %s not confirmed after %s", txID, timeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

func copyBox(box *model.Box) *model.Box {
	c := *box
	c.Output = box.Output.Clone()

	return &c
}
