package model

import (
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// TestKey returns a deterministic private key for seed. Test use only.
func TestKey(seed string) *ec.PrivateKey {
	digest := NewDigest([]byte(seed))
	key, _ := ec.PrivateKeyFromBytes(digest[:])

	return key
}

// TestTokenID returns a deterministic token id for seed. Test use only.
func TestTokenID(seed string) chainhash.Hash {
	return chainhash.Hash(NewDigest([]byte("token:" + seed)))
}

// NewTestRecord returns an open v1_1 bounty owned by creator: deadline 1000, two
// submissions required, a 10_000_000 reward at a 1% platform fee.
func NewTestRecord(creator *ec.PrivateKey) *BountyRecord {
	meta := &Metadata{Title: "Fix the flaky test", Description: "CI fails one run in ten", Version: 1}
	payload, _ := meta.Bytes()

	return &BountyRecord{
		TokenID:          TestTokenID("bounty"),
		TokenAmount:      1,
		Value:            11_000_000,
		Deadline:         1000,
		MinSubmissions:   2,
		RewardAmount:     10_000_000,
		CreatorPubKey:    creator.PubKey().Compressed(),
		Content:          EncodeContent([3]Digest{{}, {}, NewDigest(payload)}, payload),
		Version:          V1_1,
		DevFeeScriptHash: NewDigest([]byte("dev fee script")),
		DevFeeRate:       10,
	}
}

// NewTestBox places r on a fake ledger position. Test use only.
func NewTestBox(r *BountyRecord) *Box {
	out, err := EncodeRecord(r)
	if err != nil {
		panic(err)
	}

	txID := chainhash.Hash(NewDigest(append([]byte("tx:"), out.Script...)))

	return &Box{
		Output:         *out,
		BoxID:          NewBoxID(txID, 0),
		TxID:           txID,
		Index:          0,
		CreationHeight: 900,
	}
}
