package model

import (
	"encoding/binary"
	"sort"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// Tx is an assembled ledger transaction. The fee is implicit: inputs minus outputs.
type Tx struct {
	Inputs     []*Box
	DataInputs []*Box
	Outputs    []Output
	Fee        uint64
}

// Bytes is the canonical serialisation the transaction id and signatures commit to.
func (t *Tx) Bytes() []byte {
	b := binary.BigEndian.AppendUint32(nil, uint32(len(t.Inputs))) //nolint:gosec // bounded by tx size
	for _, in := range t.Inputs {
		b = append(b, in.BoxID[:]...)
	}

	b = binary.BigEndian.AppendUint32(b, uint32(len(t.DataInputs))) //nolint:gosec // bounded by tx size
	for _, in := range t.DataInputs {
		b = append(b, in.BoxID[:]...)
	}

	b = binary.BigEndian.AppendUint32(b, uint32(len(t.Outputs))) //nolint:gosec // bounded by tx size
	for i := range t.Outputs {
		b = appendOutput(b, &t.Outputs[i])
	}

	return binary.BigEndian.AppendUint64(b, t.Fee)
}

func appendOutput(b []byte, o *Output) []byte {
	b = binary.BigEndian.AppendUint64(b, o.Value)
	b = appendBytes(b, o.Script)

	b = append(b, byte(len(o.Tokens))) //nolint:gosec // bounded by tx size
	for _, t := range o.Tokens {
		b = append(b, t.ID[:]...)
		b = binary.BigEndian.AppendUint64(b, t.Amount)
	}

	ids := make([]int, 0, len(o.Registers))
	for id := range o.Registers {
		ids = append(ids, int(id))
	}

	sort.Ints(ids)

	b = append(b, byte(len(ids))) //nolint:gosec // at most six registers
	for _, id := range ids {
		b = append(b, byte(id)) //nolint:gosec // register ids are single bytes
		b = appendBytes(b, o.Registers[RegisterID(id)]) //nolint:gosec // register ids are single bytes
	}

	return b
}

func appendBytes(b, v []byte) []byte {
	b = binary.BigEndian.AppendUint32(b, uint32(len(v))) //nolint:gosec // bounded by tx size
	return append(b, v...)
}

func (t *Tx) ID() chainhash.Hash {
	return chainhash.Hash(NewDigest(t.Bytes()))
}

// OutputBoxes returns the boxes the transaction creates once included at height.
func (t *Tx) OutputBoxes(height int32) []*Box {
	txID := t.ID()
	boxes := make([]*Box, 0, len(t.Outputs))

	for i := range t.Outputs {
		index := uint32(i) //nolint:gosec // bounded by tx size
		boxes = append(boxes, &Box{
			Output:         t.Outputs[i].Clone(),
			BoxID:          NewBoxID(txID, index),
			TxID:           txID,
			Index:          index,
			CreationHeight: height,
		})
	}

	return boxes
}

type UnsignedTx struct {
	Tx *Tx
}

// Signature proves that the holder of PubKey signed a transaction id.
type Signature struct {
	PubKey []byte
	Sig    *ec.Signature
}

type SignedTx struct {
	Tx         *Tx
	Signatures []Signature
}

func (s *SignedTx) ID() chainhash.Hash {
	return s.Tx.ID()
}

// Signers returns the public keys whose signatures verify against the transaction id.
func (s *SignedTx) Signers() [][]byte {
	id := s.Tx.ID()

	var signers [][]byte

	for _, sig := range s.Signatures {
		if sig.Sig == nil {
			continue
		}

		pub, err := ec.ParsePubKey(sig.PubKey)
		if err != nil {
			continue
		}

		if sig.Sig.Verify(id[:], pub) {
			signers = append(signers, sig.PubKey)
		}
	}

	return signers
}

// SignTx signs the transaction id with key.
func SignTx(tx *Tx, key *ec.PrivateKey) (Signature, error) {
	id := tx.ID()

	sig, err := key.Sign(id[:])
	if err != nil {
		return Signature{}, err
	}

	return Signature{PubKey: key.PubKey().Compressed(), Sig: sig}, nil
}
