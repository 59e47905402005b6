package validator

import (
	"testing"

	"github.com/bountiful-platform/bountiful/chaincfg"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/ulogger"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/require"
)

var (
	creatorKey = model.TestKey("creator")
	winnerKey  = model.TestKey("winner")
	devFeeOut  = []byte("dev fee script")
)

func newTestValidator(opts ...Option) *Validator {
	tSettings := &settings.Settings{
		ChainCfgParams: &chaincfg.MainNetParams,
		Bounty:         settings.BountySettings{RefundMode: settings.RefundModeVersion},
	}

	return New(ulogger.TestLogger{}, tSettings, opts...)
}

func signedBy(height int32, keys ...*ec.PrivateKey) *Context {
	vc := &Context{Height: height}
	for _, key := range keys {
		vc.Signers = append(vc.Signers, key.PubKey().Compressed())
	}

	return vc
}

// transition spends the record in prev and produces next at output 0.
func transition(t *testing.T, prev, next *model.BountyRecord, extra ...model.Output) *model.Transition {
	t.Helper()

	tr := &model.Transition{
		Inputs: []*model.Box{model.NewTestBox(prev)},
		Prev:   prev,
		Next:   next,
		Fee:    chaincfg.MainNetParams.MinerFee,
	}

	if next != nil {
		out, err := model.EncodeRecord(next)
		require.NoError(t, err)

		tr.Outputs = append(tr.Outputs, *out)
	}

	tr.Outputs = append(tr.Outputs, extra...)

	return tr
}

func judgmentBox(t *testing.T, publisher *ec.PrivateKey, j *model.Judgment) *model.Box {
	t.Helper()

	regs, err := model.EncodeJudgment(j)
	require.NoError(t, err)

	return &model.Box{
		Output: model.Output{
			Value:     chaincfg.MainNetParams.MinBoxValue,
			Script:    model.PubKeyScript(publisher.PubKey().Compressed()),
			Registers: regs,
		},
		BoxID:          model.TestTokenID("judgment box"),
		CreationHeight: j.Height,
	}
}

func withRoot(t *testing.T, r *model.BountyRecord, slot model.Slot, item string) *model.BountyRecord {
	t.Helper()

	next := r.Clone()
	root := model.Accumulate(r.DecodedContent().Root(slot), []byte(item))

	content, err := model.ReplaceRoot(r.Content, slot, root)
	require.NoError(t, err)

	next.Content = content

	return next
}
