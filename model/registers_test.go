package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRecord(t *testing.T) {
	creator := TestKey("creator")

	tests := []struct {
		name   string
		mutate func(r *BountyRecord)
	}{
		{"fresh", func(r *BountyRecord) {}},
		{"with stats", func(r *BountyRecord) { r.Stats = Stats{Total: 3, Accepted: 1, Rejected: 1} }},
		{"v1_0", func(r *BountyRecord) { r.Version = V1_0 }},
		{"negative deadline", func(r *BountyRecord) { r.Deadline = -5 }},
		{"max deadline", func(r *BountyRecord) { r.Deadline = math.MaxInt32 }},
		{"short content", func(r *BountyRecord) { r.Content = []byte("x") }},
		{"empty content", func(r *BountyRecord) { r.Content = []byte{} }},
		{"max long reward", func(r *BountyRecord) { r.RewardAmount = math.MaxInt64; r.Value = math.MaxUint64 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTestRecord(creator)
			tt.mutate(r)

			out, err := EncodeRecord(r)
			require.NoError(t, err)

			decoded, malformed, err := DecodeRecord(out)
			require.NoError(t, err)
			assert.Empty(t, malformed)
			assert.True(t, r.Equal(decoded), "decode(encode(r)) == r")
		})
	}
}

func TestRegisterLayout(t *testing.T) {
	r := NewTestRecord(TestKey("creator"))
	r.Stats = Stats{Total: 3, Accepted: 1, Rejected: 2}

	out, err := EncodeRecord(r)
	require.NoError(t, err)

	assert.Equal(t, []byte{0, 0, 0x03, 0xe8}, out.Registers[R4])
	assert.Len(t, out.Registers[R5], 8)
	assert.Equal(t, uint64(2), binary.BigEndian.Uint64(out.Registers[R5]))
	assert.Equal(t, uint64(3), binary.BigEndian.Uint64(out.Registers[R6][0:8]))
	assert.Equal(t, uint64(1), binary.BigEndian.Uint64(out.Registers[R6][8:16]))
	assert.Equal(t, uint64(2), binary.BigEndian.Uint64(out.Registers[R6][16:24]))
	assert.Equal(t, uint64(10_000_000), binary.BigEndian.Uint64(out.Registers[R7]))
	assert.Len(t, out.Registers[R8], 33)
	assert.Equal(t, r.Content, out.Registers[R9])
	assert.Equal(t, []Token{{ID: r.TokenID, Amount: 1}}, out.Tokens)
	assert.Equal(t, r.Script().Bytes(), out.Script)
}

func TestEncodeRecordRejects(t *testing.T) {
	r := NewTestRecord(TestKey("creator"))
	r.CreatorPubKey = []byte{1, 2, 3}

	_, err := EncodeRecord(r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEncoding))

	r = NewTestRecord(TestKey("creator"))
	r.MinSubmissions = math.MaxUint64

	_, err = EncodeRecord(r)
	assert.True(t, errors.Is(err, errors.ErrEncoding))
}

func TestDecodeRecordDefensive(t *testing.T) {
	r := NewTestRecord(TestKey("creator"))

	tests := []struct {
		name      string
		mutate    func(o *Output)
		malformed []RegisterID
		check     func(t *testing.T, d *BountyRecord)
	}{
		{
			name:      "missing deadline",
			mutate:    func(o *Output) { delete(o.Registers, R4) },
			malformed: []RegisterID{R4},
			check:     func(t *testing.T, d *BountyRecord) { assert.Equal(t, int32(0), d.Deadline) },
		},
		{
			name:      "short min submissions",
			mutate:    func(o *Output) { o.Registers[R5] = []byte{1} },
			malformed: []RegisterID{R5},
			check:     func(t *testing.T, d *BountyRecord) { assert.Equal(t, uint64(0), d.MinSubmissions) },
		},
		{
			name:      "negative long stats",
			mutate:    func(o *Output) { o.Registers[R6] = append([]byte{0xff}, make([]byte, 23)...) },
			malformed: []RegisterID{R6},
			check:     func(t *testing.T, d *BountyRecord) { assert.Equal(t, Stats{}, d.Stats) },
		},
		{
			name:      "stats as two longs",
			mutate:    func(o *Output) { o.Registers[R6] = make([]byte, 16) },
			malformed: []RegisterID{R6},
		},
		{
			name:      "missing reward",
			mutate:    func(o *Output) { delete(o.Registers, R7) },
			malformed: []RegisterID{R7},
			check:     func(t *testing.T, d *BountyRecord) { assert.Equal(t, uint64(0), d.RewardAmount) },
		},
		{
			name:      "creator not on curve",
			mutate:    func(o *Output) { o.Registers[R8] = make([]byte, 33) },
			malformed: []RegisterID{R8},
			check:     func(t *testing.T, d *BountyRecord) { assert.Nil(t, d.CreatorPubKey) },
		},
		{
			name:      "creator differs from script",
			mutate:    func(o *Output) { o.Registers[R8] = TestKey("other").PubKey().Compressed() },
			malformed: []RegisterID{R8},
		},
		{
			name:      "missing content",
			mutate:    func(o *Output) { delete(o.Registers, R9) },
			malformed: []RegisterID{R9},
			check:     func(t *testing.T, d *BountyRecord) { assert.Nil(t, d.Content) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := EncodeRecord(r)
			require.NoError(t, err)

			tt.mutate(out)

			decoded, malformed, err := DecodeRecord(out)
			require.NoError(t, err)
			assert.Equal(t, tt.malformed, malformed)
			assert.Equal(t, r.TokenID, decoded.TokenID)

			if tt.check != nil {
				tt.check(t, decoded)
			}
		})
	}
}

func TestDecodeRecordAborts(t *testing.T) {
	r := NewTestRecord(TestKey("creator"))

	tests := []struct {
		name   string
		mutate func(o *Output)
	}{
		{"no token", func(o *Output) { o.Tokens = nil }},
		{"not a bounty script", func(o *Output) { o.Script = PubKeyScript(r.CreatorPubKey) }},
		{"token does not match script", func(o *Output) { o.Tokens[0].ID = TestTokenID("other") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := EncodeRecord(r)
			require.NoError(t, err)

			tt.mutate(out)

			_, _, err = DecodeRecord(out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrEncoding))
		})
	}
}

func TestDecodeKeepsTokenAmount(t *testing.T) {
	r := NewTestRecord(TestKey("creator"))
	r.TokenAmount = 2

	out, err := EncodeRecord(r)
	require.NoError(t, err)

	decoded, _, err := DecodeRecord(out)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), decoded.TokenAmount)
	assert.Error(t, decoded.CheckOpen())
}

func TestJudgmentRoundTrip(t *testing.T) {
	j := &Judgment{
		BountyID:     TestTokenID("bounty"),
		SubmissionID: NewDigest([]byte("solution")),
		Accepted:     true,
		Winner:       TestKey("winner").PubKey().Compressed(),
		Height:       1200,
	}

	regs, err := EncodeJudgment(j)
	require.NoError(t, err)

	decoded, err := DecodeJudgment(&Output{Registers: regs})
	require.NoError(t, err)
	assert.Equal(t, j, decoded)
	assert.NotEmpty(t, j.Bytes())

	delete(regs, R6)
	_, err = DecodeJudgment(&Output{Registers: regs})
	assert.True(t, errors.Is(err, errors.ErrEncoding))

	j.Winner = []byte{1}
	_, err = EncodeJudgment(j)
	assert.Error(t, err)
}

func TestNewBoxID(t *testing.T) {
	txID := TestTokenID("tx")

	assert.NotEqual(t, NewBoxID(txID, 0), NewBoxID(txID, 1))
	assert.Equal(t, NewBoxID(txID, 3), NewBoxID(txID, 3))
}

func TestRegisterIDs(t *testing.T) {
	for _, id := range AllRegisters {
		parsed, err := ParseRegisterID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	}

	_, err := ParseRegisterID("R3")
	assert.Error(t, err)
}
