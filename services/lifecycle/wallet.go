package lifecycle

import (
	"context"
	"sort"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// KeyWallet is a single key wallet. It funds transitions from the plain boxes the
// ledger holds for the key's pubkey script, never from boxes carrying tokens or
// registers such as published judgments.
type KeyWallet struct {
	key    *ec.PrivateKey
	ledger Ledger
	script []byte
}

func NewKeyWallet(key *ec.PrivateKey, ledger Ledger) *KeyWallet {
	return &KeyWallet{
		key:    key,
		ledger: ledger,
		script: model.PubKeyScript(key.PubKey().Compressed()),
	}
}

// FundingInputs picks the largest boxes first until minValue is covered.
func (w *KeyWallet) FundingInputs(ctx context.Context, minValue uint64) ([]*model.Box, error) {
	if minValue == 0 {
		return nil, nil
	}

	boxes, err := w.ledger.UnspentByScript(ctx, w.script)
	if err != nil {
		return nil, err
	}

	sort.Slice(boxes, func(i, j int) bool {
		if boxes[i].Value != boxes[j].Value {
			return boxes[i].Value > boxes[j].Value
		}

		return boxes[i].BoxID.String() < boxes[j].BoxID.String()
	})

	var (
		picked []*model.Box
		total  uint64
	)

	for _, box := range boxes {
		if len(box.Tokens) > 0 || len(box.Registers) > 0 {
			continue
		}

		picked = append(picked, box)
		total += box.Value

		if total >= minValue {
			return picked, nil
		}
	}

	return nil, errors.NewInvalidPreconditionError("wallet holds %d, %d needed", total, minValue)
}

func (w *KeyWallet) ChangeAddress() []byte {
	return w.script
}

func (w *KeyWallet) PublicKey() []byte {
	return w.key.PubKey().Compressed()
}

func (w *KeyWallet) Sign(_ context.Context, tx *model.UnsignedTx) (*model.SignedTx, error) {
	sig, err := model.SignTx(tx.Tx, w.key)
	if err != nil {
		return nil, errors.NewProcessingError("signing transaction %s", tx.Tx.ID(), err)
	}

	return &model.SignedTx{Tx: tx.Tx, Signatures: []model.Signature{sig}}, nil
}
