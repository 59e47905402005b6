package main

import (
	"encoding/hex"
	"io"
	"os"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/services/bountyapi"
	"github.com/bountiful-platform/bountiful/services/builder"
	"github.com/bountiful-platform/bountiful/util"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type judgmentView struct {
	BountyID     string `json:"bountyId"`
	SubmissionID string `json:"submissionId"`
	Accepted     bool   `json:"accepted"`
	Winner       string `json:"winner"`
	Height       int32  `json:"height"`
}

type recipientView struct {
	Script string `json:"script"`
	Share  uint64 `json:"share"`
}

type feeScriptView struct {
	Script      string          `json:"script"`
	Hash        string          `json:"hash"`
	Denominator uint64          `json:"denominator"`
	Recipients  []recipientView `json:"recipients"`
}

type boxView struct {
	BoxID     string                `json:"boxId"`
	Kind      string                `json:"kind"`
	Value     uint64                `json:"value"`
	Record    *bountyapi.RecordView `json:"record,omitempty"`
	Judgment  *judgmentView         `json:"judgment,omitempty"`
	MintGuard string                `json:"mintGuardScriptHash,omitempty"`
	FeeScript *feeScriptView        `json:"feeScript,omitempty"`
	Owner     string                `json:"owner,omitempty"`
}

type scriptView struct {
	FeeScript    *feeScriptView `json:"feeScript"`
	BountyScript string         `json:"bountyScript,omitempty"`
	BountyHash   string         `json:"bountyScriptHash,omitempty"`
	MintGuard    string         `json:"mintGuardScript,omitempty"`
	Version      model.Version  `json:"version,omitempty"`
	DevFeeRate   uint64         `json:"devFeeRate"`
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.NewEncodingError("failed to render output", err)
	}

	_, err = w.Write(append(b, '\n'))

	return err
}

func feesAction(c *cli.Context) error {
	tSettings := loadSettings()

	rate := tSettings.Bounty.DevFeeRate
	if c.IsSet("rate") {
		rate = c.Uint64("rate")
	}

	reward := c.Uint64("reward")

	split, err := util.SplitReward(tSettings.ChainCfgParams, reward, rate)
	if err != nil {
		return err
	}

	return writeJSON(c.App.Writer, bountyapi.FeesView{
		Reward:   reward,
		Rate:     rate,
		Winner:   split.Winner,
		Platform: split.Platform,
		Miner:    split.Miner,
	})
}

func decodeAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.NewInvalidArgumentError("decode takes one box file, - reads stdin")
	}

	var (
		data []byte
		err  error
	)

	if path := c.Args().First(); path == "-" {
		data, err = io.ReadAll(c.App.Reader)
	} else {
		data, err = os.ReadFile(path)
	}

	if err != nil {
		return errors.NewInvalidArgumentError("failed to read box", err)
	}

	box, err := model.UnmarshalBox(data)
	if err != nil {
		return err
	}

	view, err := decodeBox(box)
	if err != nil {
		return err
	}

	return writeJSON(c.App.Writer, view)
}

func decodeBox(box *model.Box) (*boxView, error) {
	view := &boxView{
		BoxID: box.BoxID.String(),
		Value: box.Value,
	}

	switch model.ScriptTag(box.Script) {
	case model.ScriptTagBounty:
		r, malformed, err := model.DecodeRecord(&box.Output)
		if err != nil {
			return nil, err
		}

		view.Kind = "bounty"
		view.Record = bountyapi.NewRecordView(r, malformed)
	case model.ScriptTagMintGuard:
		hash, err := model.ParseMintGuardScript(box.Script)
		if err != nil {
			return nil, errors.NewEncodingError("malformed mint guard script", err)
		}

		view.Kind = "mint_guard"
		view.MintGuard = hash.String()
	case model.ScriptTagFeeDistribution:
		feeScript, err := model.ParseFeeScript(box.Script)
		if err != nil {
			return nil, errors.NewEncodingError("malformed fee script", err)
		}

		view.Kind = "fee"
		view.FeeScript = newFeeScriptView(feeScript)
	case model.ScriptTagPubKey:
		owner, err := model.ParsePubKeyScript(box.Script)
		if err != nil {
			return nil, errors.NewEncodingError("malformed public key script", err)
		}

		view.Owner = hex.EncodeToString(owner)

		if len(box.Registers) == 0 {
			view.Kind = "wallet"
			break
		}

		j, err := model.DecodeJudgment(&box.Output)
		if err != nil {
			return nil, err
		}

		view.Kind = "judgment"
		view.Judgment = &judgmentView{
			BountyID:     j.BountyID.String(),
			SubmissionID: j.SubmissionID.String(),
			Accepted:     j.Accepted,
			Winner:       hex.EncodeToString(j.Winner),
			Height:       j.Height,
		}
	default:
		return nil, errors.NewEncodingError("unknown script tag %#02x", model.ScriptTag(box.Script))
	}

	return view, nil
}

func newFeeScriptView(f *model.FeeScript) *feeScriptView {
	hash := f.Hash()

	v := &feeScriptView{
		Script:      hex.EncodeToString(f.Bytes()),
		Hash:        hash.String(),
		Denominator: f.Denominator,
	}

	for _, share := range f.Shares {
		v.Recipients = append(v.Recipients, recipientView{
			Script: hex.EncodeToString(share.Script),
			Share:  share.Share,
		})
	}

	return v
}

func scriptAction(c *cli.Context) error {
	tSettings := loadSettings()

	feeScript, err := builder.FeeScriptFromSettings(tSettings)
	if err != nil {
		return err
	}

	view := &scriptView{
		FeeScript:  newFeeScriptView(feeScript),
		DevFeeRate: tSettings.Bounty.DevFeeRate,
	}

	if !c.IsSet("creator") && !c.IsSet("token") {
		return writeJSON(c.App.Writer, view)
	}

	creator, err := hex.DecodeString(c.String("creator"))
	if err != nil || len(creator) != 33 {
		return errors.NewInvalidArgumentError("--creator must be a hex compressed public key")
	}

	tokenID, err := chainhash.NewHashFromStr(c.String("token"))
	if err != nil {
		return errors.NewInvalidArgumentError("--token %q", c.String("token"), err)
	}

	versionName := tSettings.Bounty.Version
	if c.IsSet("version") {
		versionName = c.String("version")
	}

	v, err := model.ParseVersion(versionName)
	if err != nil {
		return errors.NewInvalidArgumentError("--version", err)
	}

	identity := model.ScriptIdentity{
		Version:          v,
		CreatorPubKey:    creator,
		DevFeeScriptHash: feeScript.Hash(),
		DevFeeRate:       tSettings.Bounty.DevFeeRate,
		TokenID:          *tokenID,
	}
	hash := identity.Hash()

	view.Version = v
	view.BountyScript = hex.EncodeToString(identity.Bytes())
	view.BountyHash = hash.String()
	view.MintGuard = hex.EncodeToString(model.MintGuardScript(hash))

	return writeJSON(c.App.Writer, view)
}
