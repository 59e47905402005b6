package model

import (
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// BoxJSON is the wire form of a box used by the explorer API, the CLI and the record
// store. Ids use the chainhash string form, scripts and registers are hex.
type BoxJSON struct {
	BoxID          string            `json:"boxId"`
	TransactionID  string            `json:"transactionId"`
	Index          uint32            `json:"index"`
	CreationHeight int32             `json:"creationHeight"`
	Value          uint64            `json:"value"`
	Script         string            `json:"script"`
	Assets         []AssetJSON       `json:"assets"`
	Registers      map[string]string `json:"additionalRegisters"`
}

type AssetJSON struct {
	TokenID string `json:"tokenId"`
	Amount  uint64 `json:"amount"`
}

// OutputJSON is the wire form of an output that is not on the ledger yet.
type OutputJSON struct {
	Value     uint64            `json:"value"`
	Script    string            `json:"script"`
	Assets    []AssetJSON       `json:"assets"`
	Registers map[string]string `json:"additionalRegisters"`
}

func (o *Output) JSON() OutputJSON {
	j := OutputJSON{
		Value:     o.Value,
		Script:    hex.EncodeToString(o.Script),
		Assets:    make([]AssetJSON, 0, len(o.Tokens)),
		Registers: make(map[string]string, len(o.Registers)),
	}

	for _, t := range o.Tokens {
		j.Assets = append(j.Assets, AssetJSON{TokenID: t.ID.String(), Amount: t.Amount})
	}

	for id, v := range o.Registers {
		j.Registers[id.String()] = hex.EncodeToString(v)
	}

	return j
}

func (j *OutputJSON) Output() (Output, error) {
	script, err := hex.DecodeString(j.Script)
	if err != nil {
		return Output{}, fmt.Errorf("script is not hex: %w", err)
	}

	o := Output{Value: j.Value, Script: script}

	for _, a := range j.Assets {
		id, err := chainhash.NewHashFromStr(a.TokenID)
		if err != nil {
			return Output{}, fmt.Errorf("token id %q: %w", a.TokenID, err)
		}

		o.Tokens = append(o.Tokens, Token{ID: *id, Amount: a.Amount})
	}

	if len(j.Registers) > 0 {
		o.Registers = make(Registers, len(j.Registers))
	}

	for name, v := range j.Registers {
		id, err := ParseRegisterID(name)
		if err != nil {
			return Output{}, err
		}

		b, err := hex.DecodeString(v)
		if err != nil {
			return Output{}, fmt.Errorf("register %s is not hex: %w", name, err)
		}

		o.Registers[id] = b
	}

	return o, nil
}

func (b *Box) JSON() BoxJSON {
	out := b.Output.JSON()

	return BoxJSON{
		BoxID:          b.BoxID.String(),
		TransactionID:  b.TxID.String(),
		Index:          b.Index,
		CreationHeight: b.CreationHeight,
		Value:          out.Value,
		Script:         out.Script,
		Assets:         out.Assets,
		Registers:      out.Registers,
	}
}

func (j *BoxJSON) Box() (*Box, error) {
	out := OutputJSON{Value: j.Value, Script: j.Script, Assets: j.Assets, Registers: j.Registers}

	o, err := out.Output()
	if err != nil {
		return nil, err
	}

	boxID, err := chainhash.NewHashFromStr(j.BoxID)
	if err != nil {
		return nil, fmt.Errorf("box id %q: %w", j.BoxID, err)
	}

	txID, err := chainhash.NewHashFromStr(j.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("transaction id %q: %w", j.TransactionID, err)
	}

	return &Box{Output: o, BoxID: *boxID, TxID: *txID, Index: j.Index, CreationHeight: j.CreationHeight}, nil
}

// MarshalBox and UnmarshalBox are the JSON encoding of a box.
func MarshalBox(b *Box) ([]byte, error) {
	return json.Marshal(b.JSON())
}

func UnmarshalBox(data []byte) (*Box, error) {
	var j BoxJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}

	return j.Box()
}
