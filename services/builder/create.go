package builder

import (
	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
)

// CreateRequest describes a new bounty.
type CreateRequest struct {
	CreatorPubKey  []byte
	RewardAmount   uint64
	Deadline       int32
	MinSubmissions uint64
	Metadata       *model.Metadata
}

// Draft is the record a new bounty starts as, before its token id is known.
func (b *Builder) Draft(req *CreateRequest) (*model.BountyRecord, error) {
	if req.RewardAmount == 0 {
		return nil, errors.NewInvalidArgumentError("reward amount must be positive")
	}

	if req.MinSubmissions == 0 {
		return nil, errors.NewInvalidArgumentError("min submissions must be positive")
	}

	meta := req.Metadata
	if meta == nil {
		meta = &model.Metadata{}
	}

	payload, err := meta.Bytes()
	if err != nil {
		return nil, errors.NewEncodingError("metadata payload", err)
	}

	return &model.BountyRecord{
		TokenAmount:      1,
		Value:            req.RewardAmount + b.params.MinBoxValue,
		Deadline:         req.Deadline,
		MinSubmissions:   req.MinSubmissions,
		RewardAmount:     req.RewardAmount,
		CreatorPubKey:    req.CreatorPubKey,
		Content:          model.EncodeContent([3]model.Digest{{}, {}, model.NewDigest(payload)}, payload),
		Version:          b.version,
		DevFeeScriptHash: b.feeScript.Hash(),
		DevFeeRate:       b.devFeeRate,
	}, nil
}

// BuildMint mints the control token of a new bounty into a mint guard. The token id is
// the id of funding[0], so the same funding can never mint twice. It returns the record
// the guard will only release the token to.
func (b *Builder) BuildMint(req *CreateRequest, funding []*model.Box) (*model.Transition, *model.BountyRecord, error) {
	t, r, err := b.buildMint(req, funding)
	if t, err = b.finish(model.ActionMint, t, err); err != nil {
		return nil, nil, err
	}

	return t, r, nil
}

func (b *Builder) buildMint(req *CreateRequest, funding []*model.Box) (*model.Transition, *model.BountyRecord, error) {
	if len(funding) == 0 {
		return nil, nil, errors.NewInvalidArgumentError("minting needs at least one funding box")
	}

	r, err := b.Draft(req)
	if err != nil {
		return nil, nil, err
	}

	r.TokenID = funding[0].BoxID

	out, err := model.EncodeRecord(r)
	if err != nil {
		return nil, nil, err
	}

	if err = b.validator.CorrectBuild(out); err != nil {
		return nil, nil, err
	}

	guard := model.Output{
		Value:  b.params.MinBoxValue,
		Script: model.MintGuardScript(model.NewDigest(out.Script)),
		Tokens: []model.Token{{ID: r.TokenID, Amount: 1}},
	}

	return &model.Transition{
		Action:  model.ActionMint,
		Inputs:  funding,
		Next:    r,
		Outputs: []model.Output{guard},
		Fee:     b.params.MinerFee,
	}, r, nil
}

// BuildCreate spends the mint guard into the bounty record r.
func (b *Builder) BuildCreate(guard *model.Box, r *model.BountyRecord) (*model.Transition, error) {
	t, err := b.buildCreate(guard, r)
	return b.finish(model.ActionCreate, t, err)
}

func (b *Builder) buildCreate(guard *model.Box, r *model.BountyRecord) (*model.Transition, error) {
	if guard == nil {
		return nil, errors.NewInvalidArgumentError("create needs the mint guard box")
	}

	out, err := model.EncodeRecord(r)
	if err != nil {
		return nil, err
	}

	t := &model.Transition{
		Action:  model.ActionCreate,
		Inputs:  []*model.Box{guard},
		Next:    r,
		Outputs: []model.Output{*out},
		Fee:     b.params.MinerFee,
	}

	if err = b.validator.ValidateMintSpend(t); err != nil {
		return nil, errors.NewInvalidPreconditionError("[Builder] create plan for bounty %s fails validation", r.TokenID, err)
	}

	return t, nil
}
