package lifecycle

import (
	"context"
	"time"

	"github.com/bountiful-platform/bountiful/model"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// Ledger is the view of the ledger the orchestrator reads from and submits to.
type Ledger interface {
	// FetchRecord returns the unspent box holding the control token, RecordNotFound
	// when there is none.
	FetchRecord(ctx context.Context, tokenID chainhash.Hash) (*model.Box, error)
	FetchBox(ctx context.Context, boxID chainhash.Hash) (*model.Box, error)
	UnspentByScript(ctx context.Context, script []byte) ([]*model.Box, error)
	CurrentHeight(ctx context.Context) (int32, error)
	Submit(ctx context.Context, tx *model.SignedTx) (chainhash.Hash, error)
	// AwaitConfirmation returns the first output of txID once it is included, or a
	// Timeout error.
	AwaitConfirmation(ctx context.Context, txID chainhash.Hash, timeout time.Duration) (*model.Box, error)
}

// Wallet funds transitions and signs them.
type Wallet interface {
	FundingInputs(ctx context.Context, minValue uint64) ([]*model.Box, error)
	ChangeAddress() []byte
	PublicKey() []byte
	Sign(ctx context.Context, tx *model.UnsignedTx) (*model.SignedTx, error)
}

// TxAssembler turns a plan plus funding into a balanced transaction, paying what is
// left over to changeTo.
type TxAssembler interface {
	Build(ctx context.Context, inputs, dataInputs []*model.Box, outputs []model.Output, fee uint64, changeTo []byte) (*model.UnsignedTx, error)
}

// Notifier publishes accepted transitions.
type Notifier interface {
	Notify(ctx context.Context, event *TransitionEvent) error
}
