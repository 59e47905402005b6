package model

import (
	"bytes"
	"fmt"

	"github.com/bsv-blockchain/go-bt/v2/chainhash"
)

// Stats are the submission counters of a bounty. Pending submissions are not stored,
// they are whatever has not been judged yet.
type Stats struct {
	Total    uint64
	Accepted uint64
	Rejected uint64
}

func (s Stats) Judged() uint64 {
	return s.Accepted + s.Rejected
}

// Pending returns total - accepted - rejected, or 0 when the counters are inconsistent.
func (s Stats) Pending() uint64 {
	if !s.Consistent() {
		return 0
	}

	return s.Total - s.Judged()
}

// Consistent reports accepted + rejected <= total without overflowing.
func (s Stats) Consistent() bool {
	return s.Accepted <= s.Total && s.Rejected <= s.Total-s.Accepted
}

func (s Stats) String() string {
	return fmt.Sprintf("%d/%d/%d", s.Total, s.Accepted, s.Rejected)
}

// BountyRecord is the decoded form of a bounty box.
type BountyRecord struct {
	TokenID          chainhash.Hash
	TokenAmount      uint64
	Value            uint64
	Deadline         int32
	MinSubmissions   uint64
	Stats            Stats
	RewardAmount     uint64
	CreatorPubKey    []byte
	Content          []byte
	Version          Version
	DevFeeScriptHash Digest
	DevFeeRate       uint64
}

// Script derives the identity of the script guarding the record.
func (r *BountyRecord) Script() ScriptIdentity {
	return ScriptIdentity{
		Version:          r.Version,
		CreatorPubKey:    r.CreatorPubKey,
		DevFeeScriptHash: r.DevFeeScriptHash,
		DevFeeRate:       r.DevFeeRate,
		TokenID:          r.TokenID,
	}
}

func (r *BountyRecord) DecodedContent() Content {
	return DecodeContent(r.Content)
}

func (r *BountyRecord) Metadata() *Metadata {
	return MetadataFromPayload(r.DecodedContent().Payload)
}

func (r *BountyRecord) Clone() *BountyRecord {
	c := *r
	c.CreatorPubKey = bytes.Clone(r.CreatorPubKey)
	c.Content = bytes.Clone(r.Content)

	return &c
}

func (r *BountyRecord) Equal(o *BountyRecord) bool {
	if r == nil || o == nil {
		return r == o
	}

	return r.TokenID == o.TokenID &&
		r.TokenAmount == o.TokenAmount &&
		r.Value == o.Value &&
		r.Deadline == o.Deadline &&
		r.MinSubmissions == o.MinSubmissions &&
		r.Stats == o.Stats &&
		r.RewardAmount == o.RewardAmount &&
		bytes.Equal(r.CreatorPubKey, o.CreatorPubKey) &&
		bytes.Equal(r.Content, o.Content) &&
		r.Version == o.Version &&
		r.DevFeeScriptHash == o.DevFeeScriptHash &&
		r.DevFeeRate == o.DevFeeRate
}

// CheckOpen verifies the invariants every open record holds.
func (r *BountyRecord) CheckOpen() error {
	if r.TokenAmount != 1 {
		return fmt.Errorf("control token amount is %d", r.TokenAmount)
	}

	if !r.Stats.Consistent() {
		return fmt.Errorf("stats %s: accepted + rejected exceeds total", r.Stats)
	}

	if r.Value < r.RewardAmount {
		return fmt.Errorf("value %d is below reward amount %d", r.Value, r.RewardAmount)
	}

	return nil
}

// IsEnded reports whether submissions are closed at height.
func (r *BountyRecord) IsEnded(height int32) bool {
	return height > r.Deadline
}

func (r *BountyRecord) CanSubmit(height int32) bool {
	return !r.IsEnded(height)
}

// CanJudge reports whether there is anything left to judge.
func (r *BountyRecord) CanJudge() bool {
	return r.Stats.Pending() > 0
}

// HasWinner reports whether the reward can go to a submitter at all.
func (r *BountyRecord) HasWinner() bool {
	return r.Stats.Accepted > 0 && r.Stats.Total >= r.MinSubmissions
}

// CanWithdraw reports whether a winner judged at judgmentHeight may collect at height.
func (r *BountyRecord) CanWithdraw(height, judgmentHeight, disputePeriod int32) bool {
	return r.HasWinner() && int64(height) >= int64(judgmentHeight)+int64(disputePeriod)
}

// IsRefundPeriod reports whether the bounty has ended without a payable winner.
func (r *BountyRecord) IsRefundPeriod(height int32) bool {
	return r.IsEnded(height) && (r.Stats.Total < r.MinSubmissions || r.Stats.Accepted == 0)
}

// Status is the off-ledger view of where a bounty is in its life.
type Status string

const (
	StatusOpen     Status = "open"
	StatusExpired  Status = "expired"
	StatusPaid     Status = "paid"
	StatusRefunded Status = "refunded"
)

// StatusAt derives the status of a live record at height.
func (r *BountyRecord) StatusAt(height int32) Status {
	if r.IsEnded(height) {
		return StatusExpired
	}

	return StatusOpen
}
