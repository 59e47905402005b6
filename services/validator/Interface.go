// Package validator holds the predicates every ledger participant runs before a bounty
// transition is accepted. They are pure: the same transition and context always give
// the same verdict.
package validator

import (
	"bytes"

	"github.com/bountiful-platform/bountiful/model"
)

// Interface is the view of the validator the builder and the ledgers depend on.
type Interface interface {
	Check(action model.Action, t *model.Transition, vc *Context) error
	Accepts(t *model.Transition, vc *Context) (model.Action, error)
	ValidateTx(t *model.Transition, vc *Context) error
	CorrectBuild(out *model.Output) error
	ValidateMintSpend(t *model.Transition) error
	ValidateFeeDistribution(t *model.Transition) error
	RefundAmount(prev *model.BountyRecord) uint64
}

// Context is what the ledger knows about a transaction besides its inputs and outputs.
type Context struct {
	Height  int32
	Signers [][]byte
}

// NewContext derives the context of a signed transaction included at height.
func NewContext(tx *model.SignedTx, height int32) *Context {
	return &Context{Height: height, Signers: tx.Signers()}
}

// SignedBy reports whether pubKey signed the transaction.
func (c *Context) SignedBy(pubKey []byte) bool {
	if len(pubKey) == 0 {
		return false
	}

	for _, signer := range c.Signers {
		if bytes.Equal(signer, pubKey) {
			return true
		}
	}

	return false
}

// FromTx is the transition the ledger validates for tx. The action is not known to the
// ledger, which is why Accepts tries all of them.
func FromTx(tx *model.Tx) *model.Transition {
	return &model.Transition{
		Inputs:     tx.Inputs,
		DataInputs: tx.DataInputs,
		Outputs:    tx.Outputs,
		Fee:        tx.Fee,
	}
}
