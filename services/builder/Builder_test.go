package builder

import (
	"encoding/hex"
	"testing"

	"github.com/bountiful-platform/bountiful/chaincfg"
	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/services/validator"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/ulogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	creatorKey = model.TestKey("creator")
	winnerKey  = model.TestKey("winner")
	funderKey  = model.TestKey("funder")
)

func testSettings(version string) *settings.Settings {
	recipients := make([]settings.FeeRecipient, 0, 4)
	for i, share := range []uint64{32, 32, 32, 4} {
		pub := model.TestKey(string(rune('a' + i))).PubKey().Compressed()
		recipients = append(recipients, settings.FeeRecipient{Address: hex.EncodeToString(pub), Share: share})
	}

	return &settings.Settings{
		ChainCfgParams: &chaincfg.MainNetParams,
		Bounty: settings.BountySettings{
			Version:        version,
			DevFeeRate:     10,
			RefundMode:     settings.RefundModeVersion,
			FeeRecipients:  recipients,
			FeeDenominator: 100,
		},
	}
}

func newTestBuilder(t *testing.T, version string) (*Builder, *validator.Validator) {
	t.Helper()

	tSettings := testSettings(version)
	v := validator.New(ulogger.TestLogger{}, tSettings)

	b, err := New(ulogger.TestLogger{}, tSettings, v)
	require.NoError(t, err)

	return b, v
}

// bountyBox places a bounty created by b on the ledger with the given stats.
func bountyBox(t *testing.T, b *Builder, stats model.Stats) *model.Box {
	t.Helper()

	r, err := b.Draft(&CreateRequest{
		CreatorPubKey:  creatorKey.PubKey().Compressed(),
		RewardAmount:   10_000_000,
		Deadline:       1000,
		MinSubmissions: 2,
		Metadata:       &model.Metadata{Title: "Port the parser", Version: 1},
	})
	require.NoError(t, err)

	r.TokenID = model.TestTokenID("bounty")
	r.Stats = stats

	return model.NewTestBox(r)
}

func judgmentBox(t *testing.T, b *Builder, box *model.Box, accepted bool, height int32) *model.Box {
	t.Helper()

	prev, _, err := model.DecodeRecord(&box.Output)
	require.NoError(t, err)

	plan, err := b.BuildPublishJudgment(prev, &model.Judgment{
		BountyID:     prev.TokenID,
		SubmissionID: model.NewDigest([]byte("solution")),
		Accepted:     accepted,
		Winner:       winnerKey.PubKey().Compressed(),
		Height:       height,
	})
	require.NoError(t, err)

	return &model.Box{Output: plan.Outputs[0], BoxID: model.TestTokenID("judgment"), CreationHeight: height}
}

func requireCode(t *testing.T, err error, target error) {
	t.Helper()

	require.Error(t, err)
	assert.True(t, errors.Is(err, target), err.Error())
}

func TestNew(t *testing.T) {
	b, _ := newTestBuilder(t, "")
	assert.Equal(t, model.V1_1, b.version, "falls back to the network default")
	assert.Len(t, b.FeeScript().Shares, 4)

	tSettings := testSettings("v9")
	_, err := New(ulogger.TestLogger{}, tSettings, validator.New(ulogger.TestLogger{}, tSettings))
	requireCode(t, err, errors.ErrConfiguration)

	tSettings = testSettings("v1_0")
	tSettings.Bounty.FeeRecipients = nil
	_, err = New(ulogger.TestLogger{}, tSettings, validator.New(ulogger.TestLogger{}, tSettings))
	requireCode(t, err, errors.ErrConfiguration)

	b, err = New(ulogger.TestLogger{}, tSettings, validator.New(ulogger.TestLogger{}, tSettings),
		WithVersion(model.V1_0), WithDevFeeRate(0), WithFeeScript(&model.FeeScript{Denominator: 1}))
	require.NoError(t, err)
	assert.Equal(t, model.V1_0, b.version)
	assert.Equal(t, uint64(0), b.devFeeRate)
}

func TestMintAndCreate(t *testing.T) {
	b, v := newTestBuilder(t, "v1_1")

	funding := &model.Box{
		Output: model.Output{Value: 2_100_000, Script: model.PubKeyScript(funderKey.PubKey().Compressed())},
		BoxID:  model.TestTokenID("funding"),
	}

	req := &CreateRequest{
		CreatorPubKey:  creatorKey.PubKey().Compressed(),
		RewardAmount:   10_000_000,
		Deadline:       5000,
		MinSubmissions: 3,
		Metadata:       &model.Metadata{Title: "Write the docs", Version: 1},
	}

	mint, r, err := b.BuildMint(req, []*model.Box{funding})
	require.NoError(t, err)
	assert.Equal(t, funding.BoxID, r.TokenID)
	assert.Equal(t, uint64(11_000_000), r.Value)
	assert.Equal(t, b.FeeScript().Hash(), r.DevFeeScriptHash)
	require.Len(t, mint.Outputs, 1)
	assert.Equal(t, uint64(1), mint.Outputs[0].TokenAmount(r.TokenID))
	assert.Equal(t, uint64(0), mint.Shortfall())
	require.NoError(t, v.ValidateTx(mint, &validator.Context{Signers: [][]byte{funderKey.PubKey().Compressed()}}))

	guard := mint.Outputs[0]
	guardBox := &model.Box{Output: guard, BoxID: model.NewBoxID(model.TestTokenID("mint tx"), 0)}

	create, err := b.BuildCreate(guardBox, r)
	require.NoError(t, err)
	assert.Equal(t, uint64(11_100_000), create.Shortfall())

	// the wallet covers the shortfall with one more input
	create.Inputs = append(create.Inputs, &model.Box{
		Output: model.Output{Value: create.Shortfall(), Script: model.PubKeyScript(funderKey.PubKey().Compressed())},
		BoxID:  model.TestTokenID("more funding"),
	})

	action, err := v.Accepts(create, &validator.Context{})
	require.NoError(t, err)
	assert.Equal(t, model.ActionCreate, action)
	require.NoError(t, v.ValidateTx(create, &validator.Context{Signers: [][]byte{funderKey.PubKey().Compressed()}}))

	t.Run("create into another record", func(t *testing.T) {
		other := r.Clone()
		other.DevFeeRate = 0

		_, err := b.BuildCreate(guardBox, other)
		requireCode(t, err, errors.ErrInvalidPrecondition)
	})

	t.Run("bad requests", func(t *testing.T) {
		_, _, err := b.BuildMint(req, nil)
		requireCode(t, err, errors.ErrInvalidArgument)

		_, _, err = b.BuildMint(&CreateRequest{CreatorPubKey: req.CreatorPubKey, MinSubmissions: 1}, []*model.Box{funding})
		requireCode(t, err, errors.ErrInvalidArgument)

		_, _, err = b.BuildMint(&CreateRequest{CreatorPubKey: req.CreatorPubKey, RewardAmount: 1}, []*model.Box{funding})
		requireCode(t, err, errors.ErrInvalidArgument)

		_, _, err = b.BuildMint(&CreateRequest{CreatorPubKey: []byte{2}, RewardAmount: 1, MinSubmissions: 1}, []*model.Box{funding})
		requireCode(t, err, errors.ErrEncoding)
	})
}

func TestBuildSubmit(t *testing.T) {
	b, _ := newTestBuilder(t, "v1_1")
	box := bountyBox(t, b, model.Stats{})

	plan, err := b.BuildSubmit(box, 999, []byte("my fix"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), plan.Next.Stats.Total)
	assert.True(t, model.OnlySlotChanged(plan.Prev.Content, plan.Next.Content, model.SlotSubmissions))
	assert.Equal(t, chaincfg.MainNetParams.MinerFee, plan.Shortfall())

	again, err := b.BuildSubmit(box, 999, []byte("another fix"))
	require.NoError(t, err)
	assert.NotEqual(t, plan.Next.Content, again.Next.Content)

	_, err = b.BuildSubmit(box, 1001, []byte("too late"))
	requireCode(t, err, errors.ErrInvalidPrecondition)

	_, err = b.BuildSubmit(nil, 999, nil)
	requireCode(t, err, errors.ErrInvalidArgument)
}

func TestBuildJudge(t *testing.T) {
	b, _ := newTestBuilder(t, "v1_1")
	box := bountyBox(t, b, model.Stats{Total: 2})

	for _, accepted := range []bool{true, false} {
		plan, err := b.BuildJudge(box, judgmentBox(t, b, box, accepted, 990), 990)
		require.NoError(t, err)

		want := model.Stats{Total: 2, Rejected: 1}
		if accepted {
			want = model.Stats{Total: 2, Accepted: 1}
		}

		assert.Equal(t, want, plan.Next.Stats)
		assert.True(t, model.OnlySlotChanged(plan.Prev.Content, plan.Next.Content, model.SlotJudgments))
		require.Len(t, plan.DataInputs, 1)
	}

	t.Run("nothing pending", func(t *testing.T) {
		done := bountyBox(t, b, model.Stats{Total: 2, Accepted: 1, Rejected: 1})

		_, err := b.BuildJudge(done, judgmentBox(t, b, done, true, 990), 990)
		requireCode(t, err, errors.ErrInvalidPrecondition)
	})

	t.Run("judgment for another bounty", func(t *testing.T) {
		prev, _, err := model.DecodeRecord(&box.Output)
		require.NoError(t, err)

		_, err = b.BuildPublishJudgment(prev, &model.Judgment{BountyID: model.TestTokenID("other"), Winner: winnerKey.PubKey().Compressed()})
		requireCode(t, err, errors.ErrInvalidArgument)
	})

	_, err := b.BuildJudge(box, nil, 990)
	requireCode(t, err, errors.ErrInvalidArgument)
}

func TestBuildWithdraw(t *testing.T) {
	b, _ := newTestBuilder(t, "v1_1")
	box := bountyBox(t, b, model.Stats{Total: 3, Accepted: 1, Rejected: 1})
	judgment := judgmentBox(t, b, box, true, 1000)

	_, err := b.BuildWithdraw(box, judgment, 1719)
	requireCode(t, err, errors.ErrInvalidPrecondition)

	plan, err := b.BuildWithdraw(box, judgment, 1720)
	require.NoError(t, err)
	require.Len(t, plan.Outputs, 2)
	assert.Equal(t, uint64(8_800_000), plan.Outputs[0].Value)
	assert.Equal(t, model.PubKeyScript(winnerKey.PubKey().Compressed()), plan.Outputs[0].Script)
	assert.Equal(t, uint64(100_000), plan.Outputs[1].Value)
	assert.Equal(t, b.FeeScript().Bytes(), plan.Outputs[1].Script)
	assert.Equal(t, uint64(1_100_000), plan.Fee)
	assert.True(t, plan.Terminal())
	assert.Equal(t, uint64(0), plan.Shortfall(), "the carrying value covers the miner fee")

	t.Run("zero fee rate", func(t *testing.T) {
		free, err := New(ulogger.TestLogger{}, testSettings("v1_1"), validator.New(ulogger.TestLogger{}, testSettings("v1_1")), WithDevFeeRate(0))
		require.NoError(t, err)

		box := bountyBox(t, free, model.Stats{Total: 3, Accepted: 1, Rejected: 1})

		plan, err := free.BuildWithdraw(box, judgmentBox(t, free, box, true, 1000), 1720)
		require.NoError(t, err)
		require.Len(t, plan.Outputs, 1)
		assert.Equal(t, uint64(8_900_000), plan.Outputs[0].Value)
	})

	t.Run("rejected judgment", func(t *testing.T) {
		_, err := b.BuildWithdraw(box, judgmentBox(t, b, box, false, 1000), 1720)
		requireCode(t, err, errors.ErrInvalidPrecondition)
	})

	t.Run("unknown dev fee script", func(t *testing.T) {
		r, _, err := model.DecodeRecord(&box.Output)
		require.NoError(t, err)

		r.DevFeeScriptHash = model.NewDigest([]byte("somebody else"))
		other := model.NewTestBox(r)

		_, err = b.BuildWithdraw(other, judgmentBox(t, b, other, true, 1000), 1720)
		requireCode(t, err, errors.ErrInvalidPrecondition)
	})

	t.Run("reward too small", func(t *testing.T) {
		r, _, err := model.DecodeRecord(&box.Output)
		require.NoError(t, err)

		r.RewardAmount = 1_120_000
		r.DevFeeRate = 0
		small := model.NewTestBox(r)

		_, err = b.BuildWithdraw(small, judgmentBox(t, b, small, true, 1000), 1720)
		requireCode(t, err, errors.ErrDustOutput)
	})
}

func TestBuildRefund(t *testing.T) {
	for _, tt := range []struct {
		version string
		amount  uint64
	}{
		{"v1_0", 10_000_000},
		{"v1_1", 11_000_000},
	} {
		t.Run(tt.version, func(t *testing.T) {
			b, _ := newTestBuilder(t, tt.version)
			box := bountyBox(t, b, model.Stats{Total: 1})

			_, err := b.BuildRefund(box, 1000)
			requireCode(t, err, errors.ErrInvalidPrecondition)

			plan, err := b.BuildRefund(box, 1001)
			require.NoError(t, err)
			require.Len(t, plan.Outputs, 1)
			assert.Equal(t, tt.amount, plan.Outputs[0].Value)
			assert.Equal(t, model.PubKeyScript(creatorKey.PubKey().Compressed()), plan.Outputs[0].Script)
		})
	}

	b, _ := newTestBuilder(t, "v1_1")

	_, err := b.BuildRefund(bountyBox(t, b, model.Stats{Total: 2, Accepted: 1}), 1001)
	requireCode(t, err, errors.ErrInvalidPrecondition)
}

func TestBuildAddFunds(t *testing.T) {
	b, _ := newTestBuilder(t, "v1_1")
	box := bountyBox(t, b, model.Stats{})

	plan, err := b.BuildAddFunds(box, 2000, 500_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(11_500_000), plan.Next.Value)
	assert.Equal(t, uint64(10_500_000), plan.Next.RewardAmount)
	assert.Equal(t, uint64(1_600_000), plan.Shortfall())

	_, err = b.BuildAddFunds(box, 2000, 0)
	requireCode(t, err, errors.ErrInvalidArgument)
}

func TestBuildExtendDeadline(t *testing.T) {
	b, _ := newTestBuilder(t, "v1_1")
	box := bountyBox(t, b, model.Stats{})

	plan, err := b.BuildExtendDeadline(box, 1000, 3000)
	require.NoError(t, err)
	assert.Equal(t, int32(3000), plan.Next.Deadline)

	_, err = b.BuildExtendDeadline(box, 1000, 1000)
	requireCode(t, err, errors.ErrInvalidArgument)

	_, err = b.BuildExtendDeadline(box, 1001, 3000)
	requireCode(t, err, errors.ErrInvalidPrecondition)
}

func TestBuildUpdateMetadata(t *testing.T) {
	b, _ := newTestBuilder(t, "v1_0")
	box := bountyBox(t, b, model.Stats{})

	plan, err := b.BuildUpdateMetadata(box, 900, &model.Metadata{Title: "Port the parser to Go"})
	require.NoError(t, err)

	meta := plan.Next.Metadata()
	assert.Equal(t, "Port the parser to Go", meta.Title)
	assert.Equal(t, uint64(2), meta.Version)
	assert.Equal(t, model.NewDigest(plan.Next.DecodedContent().Payload), plan.Next.DecodedContent().Root(model.SlotMetadata))

	_, err = b.BuildUpdateMetadata(box, 1001, &model.Metadata{Title: "late"})
	requireCode(t, err, errors.ErrInvalidPrecondition)

	_, err = b.BuildUpdateMetadata(box, 900, nil)
	requireCode(t, err, errors.ErrInvalidArgument)
}

func TestBuildFeeDistribution(t *testing.T) {
	b, v := newTestBuilder(t, "v1_1")
	script := b.FeeScript().Bytes()

	feeBox := func(seed string, value uint64) *model.Box {
		return &model.Box{Output: model.Output{Value: value, Script: script}, BoxID: model.TestTokenID(seed)}
	}

	plan, err := b.BuildFeeDistribution([]*model.Box{feeBox("a", 5_000_000), feeBox("b", 6_100_000)})
	require.NoError(t, err)
	require.Len(t, plan.Outputs, 4)

	for i, want := range []uint64{3_200_000, 3_200_000, 3_200_000, 400_000} {
		assert.Equal(t, want, plan.Outputs[i].Value)
		assert.Equal(t, b.FeeScript().Shares[i].Script, plan.Outputs[i].Script)
	}

	assert.Equal(t, uint64(1_100_000), plan.Fee)
	require.NoError(t, v.ValidateTx(plan, &validator.Context{}))

	_, err = b.BuildFeeDistribution([]*model.Box{feeBox("a", 4_999_999)})
	requireCode(t, err, errors.ErrInvalidPrecondition)

	_, err = b.BuildFeeDistribution([]*model.Box{feeBox("a", 1<<63), feeBox("b", 1<<63+6_100_000)})
	requireCode(t, err, errors.ErrInvalidPrecondition)

	_, err = b.BuildFeeDistribution(nil)
	requireCode(t, err, errors.ErrInvalidArgument)
}

type mockValidator struct {
	mock.Mock
	validator.Interface
}

func (m *mockValidator) Check(action model.Action, t *model.Transition, vc *validator.Context) error {
	args := m.Called(action, t, vc)
	return args.Error(0)
}

func TestPlansAreSelfChecked(t *testing.T) {
	tSettings := testSettings("v1_1")

	m := &mockValidator{Interface: validator.New(ulogger.TestLogger{}, tSettings)}
	m.On("Check", model.ActionSubmitSolution, mock.Anything, mock.Anything).
		Return(errors.NewInvalidPreconditionError("replica disagrees"))

	b, err := New(ulogger.TestLogger{}, tSettings, m)
	require.NoError(t, err)

	_, err = b.BuildSubmit(bountyBox(t, b, model.Stats{}), 999, []byte("fix"))
	requireCode(t, err, errors.ErrInvalidPrecondition)
	assert.Contains(t, err.Error(), "replica disagrees")
	m.AssertExpectations(t)
}
