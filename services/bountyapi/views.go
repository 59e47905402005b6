package bountyapi

import (
	"encoding/hex"

	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/stores/bounty"
)

type StatsView struct {
	Total    uint64 `json:"total"`
	Accepted uint64 `json:"accepted"`
	Rejected uint64 `json:"rejected"`
}

type RootsView struct {
	Submissions string `json:"submissions"`
	Judgments   string `json:"judgments"`
	Metadata    string `json:"metadata"`
}

// RecordView is the JSON rendering of a decoded bounty record.
type RecordView struct {
	TokenID          string          `json:"tokenId"`
	Title            string          `json:"title"`
	Value            uint64          `json:"value"`
	Deadline         int32           `json:"deadline"`
	MinSubmissions   uint64          `json:"minSubmissions"`
	Stats            StatsView       `json:"stats"`
	RewardAmount     uint64          `json:"rewardAmount"`
	CreatorPubKey    string          `json:"creatorPubKey"`
	Version          model.Version   `json:"version"`
	DevFeeRate       uint64          `json:"devFeeRate"`
	DevFeeScriptHash string          `json:"devFeeScriptHash"`
	Roots            RootsView       `json:"roots"`
	Metadata         *model.Metadata `json:"metadata"`
	// Malformed lists the registers that did not decode and read as zero.
	Malformed []string `json:"malformed,omitempty"`
}

func NewRecordView(r *model.BountyRecord, malformed []model.RegisterID) *RecordView {
	content := r.DecodedContent()
	meta := r.Metadata()

	v := &RecordView{
		TokenID:        r.TokenID.String(),
		Title:          meta.DisplayTitle(r.TokenID),
		Value:          r.Value,
		Deadline:       r.Deadline,
		MinSubmissions: r.MinSubmissions,
		Stats: StatsView{
			Total:    r.Stats.Total,
			Accepted: r.Stats.Accepted,
			Rejected: r.Stats.Rejected,
		},
		RewardAmount:     r.RewardAmount,
		CreatorPubKey:    hex.EncodeToString(r.CreatorPubKey),
		Version:          r.Version,
		DevFeeRate:       r.DevFeeRate,
		DevFeeScriptHash: r.DevFeeScriptHash.String(),
		Roots: RootsView{
			Submissions: content.Root(model.SlotSubmissions).String(),
			Judgments:   content.Root(model.SlotJudgments).String(),
			Metadata:    content.Root(model.SlotMetadata).String(),
		},
		Metadata: meta,
	}

	for _, id := range malformed {
		v.Malformed = append(v.Malformed, id.String())
	}

	return v
}

// EntryView is one stored version of a bounty.
type EntryView struct {
	BoxID   string        `json:"boxId"`
	Status  model.Status  `json:"status"`
	SpentBy string        `json:"spentBy,omitempty"`
	Box     model.BoxJSON `json:"box"`
	Record  *RecordView   `json:"record,omitempty"`
}

func newEntryView(entry *bounty.Entry) *EntryView {
	v := &EntryView{
		BoxID:  entry.Box.BoxID.String(),
		Status: entry.Status,
		Box:    entry.Box.JSON(),
	}

	if entry.SpentBy != nil {
		v.SpentBy = entry.SpentBy.String()
	}

	if r, malformed, err := model.DecodeRecord(&entry.Box.Output); err == nil {
		v.Record = NewRecordView(r, malformed)
	}

	return v
}

type FeesView struct {
	Reward   uint64 `json:"reward"`
	Rate     uint64 `json:"rate"`
	Winner   uint64 `json:"winner"`
	Platform uint64 `json:"platform"`
	Miner    uint64 `json:"miner"`
}
