package lifecycle

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"github.com/bountiful-platform/bountiful/chaincfg"
	"github.com/bountiful-platform/bountiful/ledger/memory"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/services/builder"
	"github.com/bountiful-platform/bountiful/services/validator"
	"github.com/bountiful-platform/bountiful/settings"
	memorystore "github.com/bountiful-platform/bountiful/stores/bounty/memory"
	"github.com/bountiful-platform/bountiful/ulogger"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	creatorKey   = model.TestKey("creator")
	submitterKey = model.TestKey("submitter")
	winnerKey    = model.TestKey("winner")
)

func testSettings() *settings.Settings {
	recipients := make([]settings.FeeRecipient, 0, 4)
	for i, share := range []uint64{32, 32, 32, 4} {
		pub := model.TestKey(string(rune('a' + i))).PubKey().Compressed()
		recipients = append(recipients, settings.FeeRecipient{Address: hex.EncodeToString(pub), Share: share})
	}

	return &settings.Settings{
		ChainCfgParams: &chaincfg.MainNetParams,
		Bounty: settings.BountySettings{
			Version:             "v1_1",
			DevFeeRate:          10,
			RefundMode:          settings.RefundModeVersion,
			FeeRecipients:       recipients,
			FeeDenominator:      100,
			ConfirmationTimeout: time.Second,
		},
	}
}

// env is a memory ledger and store shared by the orchestrators of several parties.
type env struct {
	settings *settings.Settings
	ledger   *memory.Ledger
	store    *memorystore.Memory
	builder  *builder.Builder
}

func newEnv(t *testing.T) *env {
	t.Helper()

	tSettings := testSettings()
	v := validator.New(ulogger.TestLogger{}, tSettings)

	b, err := builder.New(ulogger.TestLogger{}, tSettings, v)
	require.NoError(t, err)

	return &env{
		settings: tSettings,
		ledger:   memory.New(ulogger.TestLogger{}, v, 1000),
		store:    memorystore.New(ulogger.TestLogger{}),
		builder:  b,
	}
}

// party funds key with value on the ledger and returns an orchestrator acting for it.
func (e *env) party(key *ec.PrivateKey, value uint64, opts ...Option) *Orchestrator {
	e.ledger.Fund(model.Output{Value: value, Script: model.PubKeyScript(key.PubKey().Compressed())})

	return e.orchestrator(e.ledger, key, opts...)
}

func (e *env) orchestrator(ledger Ledger, key *ec.PrivateKey, opts ...Option) *Orchestrator {
	opts = append([]Option{WithStore(e.store)}, opts...)

	return New(ulogger.TestLogger{}, e.settings, e.builder, ledger, NewKeyWallet(key, ledger), opts...)
}

func (e *env) balance(t *testing.T, script []byte) uint64 {
	t.Helper()

	boxes, err := e.ledger.UnspentByScript(context.Background(), script)
	require.NoError(t, err)

	var total uint64
	for _, box := range boxes {
		total += box.Value
	}

	return total
}

func createRequest(deadline int32) *builder.CreateRequest {
	return &builder.CreateRequest{
		RewardAmount:   10_000_000,
		Deadline:       deadline,
		MinSubmissions: 2,
		Metadata:       &model.Metadata{Title: "Port the parser", Version: 1},
	}
}

// pinnedLedger serves a fixed, possibly stale, bounty box on the first reads.
type pinnedLedger struct {
	*memory.Ledger
	box   *model.Box
	stale int
}

func (p *pinnedLedger) FetchRecord(ctx context.Context, tokenID chainhash.Hash) (*model.Box, error) {
	if p.stale > 0 {
		p.stale--

		box := *p.box

		return &box, nil
	}

	return p.Ledger.FetchRecord(ctx, tokenID)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, event *TransitionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
