// Package bounty defines the versioned record store: every box a bounty has lived in,
// which of them are spent, and the off-ledger status of the bounty.
package bounty

import (
	"context"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// Entry is one version of a bounty.
type Entry struct {
	Box     *model.Box
	Status  model.Status
	SpentBy *chainhash.Hash
}

func (e *Entry) Spent() bool {
	return e.SpentBy != nil
}

type Store interface {
	Health(ctx context.Context, checkLiveness bool) (int, string, error)

	// Put appends box as the newest version of the bounty whose control token it
	// carries. Putting the same box twice is a no-op.
	Put(ctx context.Context, box *model.Box, status model.Status) error

	// Latest returns the newest version, RecordNotFound when the bounty is unknown.
	Latest(ctx context.Context, tokenID chainhash.Hash) (*Entry, error)

	// History returns every version, oldest first.
	History(ctx context.Context, tokenID chainhash.Hash) ([]*Entry, error)

	// MarkSpent records that spentBy consumed the box. A box is consumed at most once:
	// a second spend is a StaleRecord error.
	MarkSpent(ctx context.Context, boxID, spentBy chainhash.Hash) error

	// SetStatus sets the status of the newest version.
	SetStatus(ctx context.Context, tokenID chainhash.Hash, status model.Status) error

	Close() error
}

// TokenID returns the control token a bounty box carries.
func TokenID(box *model.Box) (chainhash.Hash, error) {
	if box == nil || len(box.Tokens) == 0 {
		return chainhash.Hash{}, errors.NewInvalidArgumentError("box carries no control token")
	}

	return box.Tokens[0].ID, nil
}
