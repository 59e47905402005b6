package bountyapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bountiful-platform/bountiful/chaincfg"
	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/settings"
	"github.com/bountiful-platform/bountiful/stores/bounty/memory"
	"github.com/bountiful-platform/bountiful/ulogger"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fixedHeight struct {
	height int32
	err    error
}

func (f fixedHeight) CurrentHeight(context.Context) (int32, error) {
	return f.height, f.err
}

func newTestServer(t *testing.T, ledger HeightReader) (*Server, *model.Box) {
	t.Helper()

	ctx := context.Background()
	store := memory.New(ulogger.TestLogger{})

	r := model.NewTestRecord(model.TestKey("creator"))
	first := model.NewTestBox(r)

	r.Stats.Total++
	second := model.NewTestBox(r)
	second.TxID = chainhash.Hash(model.NewDigest([]byte("submit")))
	second.BoxID = model.NewBoxID(second.TxID, 0)

	require.NoError(t, store.Put(ctx, first, model.StatusOpen))
	require.NoError(t, store.MarkSpent(ctx, first.BoxID, second.TxID))
	require.NoError(t, store.Put(ctx, second, model.StatusOpen))

	s := New(ulogger.TestLogger{}, &settings.Settings{
		ChainCfgParams: &chaincfg.MainNetParams,
		Bounty:         settings.BountySettings{DevFeeRate: 10},
	}, store, ledger)
	require.NoError(t, s.Init(ctx))

	return s, second
}

func get(t *testing.T, s *Server, path string, v interface{}) int {
	t.Helper()

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	if v != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
	}

	return rec.Code
}

func TestBounty(t *testing.T) {
	s, latest := newTestServer(t, fixedHeight{height: 999})
	tokenID := latest.Tokens[0].ID

	var view EntryView
	require.Equal(t, http.StatusOK, get(t, s, "/api/v1/bounty/"+tokenID.String(), &view))

	assert.Equal(t, latest.BoxID.String(), view.BoxID)
	assert.Equal(t, model.StatusOpen, view.Status)
	assert.Empty(t, view.SpentBy)
	require.NotNil(t, view.Record)
	assert.Equal(t, uint64(1), view.Record.Stats.Total)
	assert.Equal(t, "Fix the flaky test", view.Record.Title)
	assert.Equal(t, uint64(10_000_000), view.Record.RewardAmount)

	t.Run("expired at the current height", func(t *testing.T) {
		s, _ := newTestServer(t, fixedHeight{height: 1001})

		var view EntryView
		require.Equal(t, http.StatusOK, get(t, s, "/api/v1/bounty/"+tokenID.String(), &view))
		assert.Equal(t, model.StatusExpired, view.Status)
	})

	t.Run("ledger down serves the stored status", func(t *testing.T) {
		s, _ := newTestServer(t, fixedHeight{err: errors.NewNetworkError("unreachable")})

		var view EntryView
		require.Equal(t, http.StatusOK, get(t, s, "/api/v1/bounty/"+tokenID.String(), &view))
		assert.Equal(t, model.StatusOpen, view.Status)
	})

	t.Run("unknown bounty", func(t *testing.T) {
		var body map[string]string
		assert.Equal(t, http.StatusNotFound, get(t, s, "/api/v1/bounty/"+chainhash.Hash{}.String(), &body))
		assert.NotEmpty(t, body["error"])
	})

	t.Run("malformed id", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/v1/bounty/not-an-id", nil))
	})
}

func TestHistory(t *testing.T) {
	s, latest := newTestServer(t, nil)

	var views []EntryView
	require.Equal(t, http.StatusOK, get(t, s, "/api/v1/bounty/"+latest.Tokens[0].ID.String()+"/history", &views))
	require.Len(t, views, 2)

	assert.Equal(t, latest.TxID.String(), views[0].SpentBy)
	assert.Equal(t, uint64(0), views[0].Record.Stats.Total)
	assert.Equal(t, latest.BoxID.String(), views[1].BoxID)
	assert.Empty(t, views[1].SpentBy)
}

func TestFees(t *testing.T) {
	s, _ := newTestServer(t, nil)

	var fees FeesView
	require.Equal(t, http.StatusOK, get(t, s, "/api/v1/fees?reward=10000000&rate=10", &fees))
	assert.Equal(t, FeesView{Reward: 10_000_000, Rate: 10, Winner: 8_800_000, Platform: 100_000, Miner: 1_100_000}, fees)

	require.Equal(t, http.StatusOK, get(t, s, "/api/v1/fees?reward=10000000", &fees))
	assert.Equal(t, uint64(10), fees.Rate, "defaults to the configured rate")

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/v1/fees?reward=ten", nil))
	assert.Equal(t, http.StatusBadRequest, get(t, s, "/api/v1/fees?reward=1000000&rate=10", nil), "reward below the miner fee")
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, fixedHeight{height: 5})

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "BountyStore")
	assert.Contains(t, rec.Body.String(), "height 5")

	down, _ := newTestServer(t, fixedHeight{err: errors.NewNetworkError("unreachable")})

	rec = httptest.NewRecorder()
	down.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	status, _, err := down.Health(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status, "liveness does not probe dependencies")
}

func TestMetrics(t *testing.T) {
	s, _ := newTestServer(t, fixedHeight{height: 5})

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestStartRequiresAddress(t *testing.T) {
	s, _ := newTestServer(t, nil)

	err := s.Start(context.Background())
	require.ErrorIs(t, err, errors.ErrConfiguration)
}
