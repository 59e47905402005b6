package model

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	safeconversion "github.com/bsv-blockchain/go-safe-conversion"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// RegisterID names one of the additional registers of a box.
type RegisterID uint8

const (
	R4 RegisterID = iota + 4
	R5
	R6
	R7
	R8
	R9
)

var AllRegisters = []RegisterID{R4, R5, R6, R7, R8, R9}

func (r RegisterID) String() string {
	return fmt.Sprintf("R%d", uint8(r))
}

func ParseRegisterID(s string) (RegisterID, error) {
	for _, r := range AllRegisters {
		if r.String() == s {
			return r, nil
		}
	}

	return 0, fmt.Errorf("unknown register %q", s)
}

// Registers holds the raw register contents of a box. A register that is not in the
// map is absent, which is different from present and empty.
type Registers map[RegisterID][]byte

func (r Registers) Get(id RegisterID) ([]byte, bool) {
	v, ok := r[id]
	return v, ok
}

func (r Registers) Clone() Registers {
	if r == nil {
		return nil
	}

	c := make(Registers, len(r))
	for k, v := range r {
		c[k] = bytes.Clone(v)
	}

	return c
}

type Token struct {
	ID     chainhash.Hash
	Amount uint64
}

// Output is a box before it has been placed on the ledger.
type Output struct {
	Value     uint64
	Script    []byte
	Tokens    []Token
	Registers Registers
}

func (o *Output) Clone() Output {
	return Output{
		Value:     o.Value,
		Script:    bytes.Clone(o.Script),
		Tokens:    append([]Token(nil), o.Tokens...),
		Registers: o.Registers.Clone(),
	}
}

// TokenAmount returns the amount of token id carried by the output.
func (o *Output) TokenAmount(id chainhash.Hash) uint64 {
	var amount uint64

	for _, t := range o.Tokens {
		if t.ID == id {
			amount += t.Amount
		}
	}

	return amount
}

// Box is an unspent output on the ledger.
type Box struct {
	Output
	BoxID          chainhash.Hash
	TxID           chainhash.Hash
	Index          uint32
	CreationHeight int32
}

// NewBoxID derives the id of output index of transaction txID.
func NewBoxID(txID chainhash.Hash, index uint32) chainhash.Hash {
	buf := make([]byte, 0, chainhash.HashSize+4)
	buf = append(buf, txID[:]...)
	buf = binary.BigEndian.AppendUint32(buf, index)

	return chainhash.Hash(NewDigest(buf))
}

const (
	creatorPubKeySize = 33
	statsSize         = 3 * 8
)

// EncodeRecord lays a record out as a box: the control token, the derived script and
// R4..R9.
func EncodeRecord(r *BountyRecord) (*Output, error) {
	if len(r.CreatorPubKey) != creatorPubKeySize {
		return nil, errors.NewEncodingError("creator public key must be %d bytes, got %d", creatorPubKeySize, len(r.CreatorPubKey))
	}

	for name, v := range map[string]uint64{
		"min submissions": r.MinSubmissions,
		"total":           r.Stats.Total,
		"accepted":        r.Stats.Accepted,
		"rejected":        r.Stats.Rejected,
		"reward amount":   r.RewardAmount,
	} {
		if _, err := safeconversion.Uint64ToInt64(v); err != nil {
			return nil, errors.NewEncodingError("%s does not fit a register", name, err)
		}
	}

	stats := make([]byte, 0, statsSize)
	stats = binary.BigEndian.AppendUint64(stats, r.Stats.Total)
	stats = binary.BigEndian.AppendUint64(stats, r.Stats.Accepted)
	stats = binary.BigEndian.AppendUint64(stats, r.Stats.Rejected)

	return &Output{
		Value:  r.Value,
		Script: r.Script().Bytes(),
		Tokens: []Token{{ID: r.TokenID, Amount: r.TokenAmount}},
		Registers: Registers{
			R4: binary.BigEndian.AppendUint32(nil, uint32(r.Deadline)), //nolint:gosec // two's complement on purpose
			R5: binary.BigEndian.AppendUint64(nil, r.MinSubmissions),
			R6: stats,
			R7: binary.BigEndian.AppendUint64(nil, r.RewardAmount),
			R8: bytes.Clone(r.CreatorPubKey),
			R9: bytes.Clone(r.Content),
		},
	}, nil
}

// DecodeRecord reads a bounty box. Malformed or absent registers decode to zero values
// and are reported back so the caller can log them. A box without a control token, or
// whose script is not a bounty script bound to that token, is an EncodingError.
// R8 only counts as present when it matches the creator the script was derived from.
func DecodeRecord(o *Output) (*BountyRecord, []RegisterID, error) {
	if len(o.Tokens) == 0 {
		return nil, nil, errors.NewEncodingError("box carries no control token")
	}

	identity, err := ParseScriptIdentity(o.Script)
	if err != nil {
		return nil, nil, errors.NewEncodingError("box script", err)
	}

	if identity.TokenID != o.Tokens[0].ID {
		return nil, nil, errors.NewEncodingError("box script is bound to token %s, box carries %s", identity.TokenID, o.Tokens[0].ID)
	}

	var malformed []RegisterID

	r := &BountyRecord{
		TokenID:          o.Tokens[0].ID,
		TokenAmount:      o.Tokens[0].Amount,
		Value:            o.Value,
		Version:          identity.Version,
		DevFeeScriptHash: identity.DevFeeScriptHash,
		DevFeeRate:       identity.DevFeeRate,
	}

	if v, ok := o.Registers.Get(R4); ok && len(v) == 4 {
		r.Deadline = int32(binary.BigEndian.Uint32(v)) //nolint:gosec // two's complement on purpose
	} else {
		malformed = append(malformed, R4)
	}

	if v, ok := readLong(o.Registers, R5); ok {
		r.MinSubmissions = v
	} else {
		malformed = append(malformed, R5)
	}

	if v, ok := o.Registers.Get(R6); ok && len(v) == statsSize && longs(v) {
		r.Stats = Stats{
			Total:    binary.BigEndian.Uint64(v[0:8]),
			Accepted: binary.BigEndian.Uint64(v[8:16]),
			Rejected: binary.BigEndian.Uint64(v[16:24]),
		}
	} else {
		malformed = append(malformed, R6)
	}

	if v, ok := readLong(o.Registers, R7); ok {
		r.RewardAmount = v
	} else {
		malformed = append(malformed, R7)
	}

	if v, ok := o.Registers.Get(R8); ok && validPubKey(v) && bytes.Equal(v, identity.CreatorPubKey) {
		r.CreatorPubKey = bytes.Clone(v)
	} else {
		malformed = append(malformed, R8)
	}

	if v, ok := o.Registers.Get(R9); ok {
		r.Content = bytes.Clone(v)
	} else {
		malformed = append(malformed, R9)
	}

	return r, malformed, nil
}

func readLong(regs Registers, id RegisterID) (uint64, bool) {
	v, ok := regs.Get(id)
	if !ok || len(v) != 8 || !longs(v) {
		return 0, false
	}

	return binary.BigEndian.Uint64(v), true
}

// longs reports whether every 8 byte word of b is a non-negative signed long.
func longs(b []byte) bool {
	for i := 0; i+8 <= len(b); i += 8 {
		if binary.BigEndian.Uint64(b[i:i+8]) > math.MaxInt64 {
			return false
		}
	}

	return true
}

func validPubKey(b []byte) bool {
	if len(b) != creatorPubKeySize {
		return false
	}

	_, err := ec.ParsePubKey(b)

	return err == nil
}

// EncodeJudgment lays a judgment out as the registers of a data input box.
func EncodeJudgment(j *Judgment) (Registers, error) {
	if !validPubKey(j.Winner) {
		return nil, errors.NewEncodingError("judgment winner is not a public key")
	}

	decision := byte(0)
	if j.Accepted {
		decision = 1
	}

	return Registers{
		R4: {decision},
		R5: binary.BigEndian.AppendUint32(nil, uint32(j.Height)), //nolint:gosec // two's complement on purpose
		R6: bytes.Clone(j.Winner),
		R7: bytes.Clone(j.SubmissionID[:]),
		R8: bytes.Clone(j.BountyID[:]),
	}, nil
}

// DecodeJudgment reads a judgment data input. Unlike bounty records every register is
// required.
func DecodeJudgment(o *Output) (*Judgment, error) {
	decision, ok := o.Registers.Get(R4)
	if !ok || len(decision) != 1 || decision[0] > 1 {
		return nil, errors.NewEncodingError("judgment decision register R4 is malformed")
	}

	height, ok := o.Registers.Get(R5)
	if !ok || len(height) != 4 {
		return nil, errors.NewEncodingError("judgment height register R5 is malformed")
	}

	winner, ok := o.Registers.Get(R6)
	if !ok || !validPubKey(winner) {
		return nil, errors.NewEncodingError("judgment winner register R6 is malformed")
	}

	submission, ok := o.Registers.Get(R7)
	if !ok || len(submission) != DigestSize {
		return nil, errors.NewEncodingError("judgment submission register R7 is malformed")
	}

	bounty, ok := o.Registers.Get(R8)
	if !ok || len(bounty) != chainhash.HashSize {
		return nil, errors.NewEncodingError("judgment bounty register R8 is malformed")
	}

	j := &Judgment{
		Accepted: decision[0] == 1,
		Height:   int32(binary.BigEndian.Uint32(height)), //nolint:gosec // two's complement on purpose
		Winner:   bytes.Clone(winner),
	}

	copy(j.SubmissionID[:], submission)
	copy(j.BountyID[:], bounty)

	return j, nil
}
