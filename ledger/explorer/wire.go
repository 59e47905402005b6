package explorer

import (
	"encoding/hex"

	"github.com/bountiful-platform/bountiful/model"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type boxesResponse struct {
	Items []model.BoxJSON `json:"items"`
	Total int             `json:"total"`
}

type infoResponse struct {
	Height int32 `json:"height"`
}

type transactionResponse struct {
	ID              string          `json:"id"`
	InclusionHeight int32           `json:"inclusionHeight"`
	Outputs         []model.BoxJSON `json:"outputs"`
}

type inputJSON struct {
	BoxID string `json:"boxId"`
}

type signatureJSON struct {
	PubKey    string `json:"pubKey"`
	Signature string `json:"signature"`
}

type txJSON struct {
	ID         string             `json:"id"`
	Inputs     []inputJSON        `json:"inputs"`
	DataInputs []inputJSON        `json:"dataInputs"`
	Outputs    []model.OutputJSON `json:"outputs"`
	Signatures []signatureJSON    `json:"signatures"`
}

type submitResponse struct {
	ID string `json:"id"`
}

// encodeTx serialises a signed transaction for the explorer. The fee travels as a
// final output to the miner fee script.
func encodeTx(tx *model.SignedTx, minerFeeScript []byte) ([]byte, error) {
	j := txJSON{
		ID:         tx.ID().String(),
		Inputs:     make([]inputJSON, 0, len(tx.Tx.Inputs)),
		DataInputs: make([]inputJSON, 0, len(tx.Tx.DataInputs)),
		Outputs:    make([]model.OutputJSON, 0, len(tx.Tx.Outputs)+1),
		Signatures: make([]signatureJSON, 0, len(tx.Signatures)),
	}

	for _, in := range tx.Tx.Inputs {
		j.Inputs = append(j.Inputs, inputJSON{BoxID: in.BoxID.String()})
	}

	for _, in := range tx.Tx.DataInputs {
		j.DataInputs = append(j.DataInputs, inputJSON{BoxID: in.BoxID.String()})
	}

	for i := range tx.Tx.Outputs {
		j.Outputs = append(j.Outputs, tx.Tx.Outputs[i].JSON())
	}

	if tx.Tx.Fee > 0 {
		fee := model.Output{Value: tx.Tx.Fee, Script: minerFeeScript}
		j.Outputs = append(j.Outputs, fee.JSON())
	}

	for _, sig := range tx.Signatures {
		if sig.Sig == nil {
			continue
		}

		j.Signatures = append(j.Signatures, signatureJSON{
			PubKey:    hex.EncodeToString(sig.PubKey),
			Signature: hex.EncodeToString(sig.Sig.Serialize()),
		})
	}

	return json.Marshal(j)
}
