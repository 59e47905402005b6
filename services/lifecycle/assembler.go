package lifecycle

import (
	"context"

	"github.com/bountiful-platform/bountiful/chaincfg"
	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
)

// BasicAssembler keeps inputs and outputs in the order given and appends a change
// output. Change below the dust threshold goes to the miner instead.
type BasicAssembler struct {
	params *chaincfg.Params
}

func NewBasicAssembler(params *chaincfg.Params) *BasicAssembler {
	return &BasicAssembler{params: params}
}

func (a *BasicAssembler) Build(_ context.Context, inputs, dataInputs []*model.Box, outputs []model.Output, fee uint64, changeTo []byte) (*model.UnsignedTx, error) {
	if len(inputs) == 0 {
		return nil, errors.NewInvalidArgumentError("transaction spends nothing")
	}

	in, err := model.BoxesValue(inputs)
	if err != nil {
		return nil, err
	}

	outs, err := model.OutputsValue(outputs)
	if err != nil {
		return nil, err
	}

	need, err := model.SumValues(outs, fee)
	if err != nil {
		return nil, err
	}

	if in < need {
		return nil, errors.NewInvalidPreconditionError("inputs carry %d, outputs and fee need %d", in, need)
	}

	tx := &model.Tx{
		Inputs:     append([]*model.Box(nil), inputs...),
		DataInputs: append([]*model.Box(nil), dataInputs...),
		Outputs:    make([]model.Output, 0, len(outputs)+1),
		Fee:        fee,
	}

	for i := range outputs {
		tx.Outputs = append(tx.Outputs, outputs[i].Clone())
	}

	switch change := in - need; {
	case change == 0:
	case change < a.params.DustThreshold:
		tx.Fee += change
	default:
		if len(changeTo) == 0 {
			return nil, errors.NewInvalidArgumentError("%d change and no change address", change)
		}

		tx.Outputs = append(tx.Outputs, model.Output{Value: change, Script: changeTo})
	}

	return &model.UnsignedTx{Tx: tx}, nil
}
