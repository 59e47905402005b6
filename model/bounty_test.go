package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats(t *testing.T) {
	s := Stats{Total: 5, Accepted: 1, Rejected: 2}
	assert.True(t, s.Consistent())
	assert.Equal(t, uint64(3), s.Judged())
	assert.Equal(t, uint64(2), s.Pending())
	assert.Equal(t, "5/1/2", s.String())

	bad := Stats{Total: 2, Accepted: 2, Rejected: 1}
	assert.False(t, bad.Consistent())
	assert.Equal(t, uint64(0), bad.Pending())

	overflow := Stats{Total: 1, Accepted: 1, Rejected: math.MaxUint64}
	assert.False(t, overflow.Consistent())
}

func TestCheckOpen(t *testing.T) {
	r := NewTestRecord(TestKey("creator"))
	require.NoError(t, r.CheckOpen())

	low := r.Clone()
	low.Value = low.RewardAmount - 1
	assert.Error(t, low.CheckOpen())

	inconsistent := r.Clone()
	inconsistent.Stats = Stats{Total: 1, Accepted: 1, Rejected: 1}
	assert.Error(t, inconsistent.CheckOpen())
}

func TestStatusHelpers(t *testing.T) {
	r := NewTestRecord(TestKey("creator"))

	assert.False(t, r.IsEnded(1000), "deadline height is still open")
	assert.True(t, r.IsEnded(1001))
	assert.True(t, r.CanSubmit(1000))
	assert.False(t, r.CanSubmit(1001))
	assert.Equal(t, StatusOpen, r.StatusAt(1000))
	assert.Equal(t, StatusExpired, r.StatusAt(1001))

	assert.False(t, r.CanJudge())
	r.Stats = Stats{Total: 1}
	assert.True(t, r.CanJudge())

	assert.False(t, r.HasWinner(), "below min submissions")
	assert.True(t, r.IsRefundPeriod(1001))

	r.Stats = Stats{Total: 2, Accepted: 1}
	assert.True(t, r.HasWinner())
	assert.False(t, r.IsRefundPeriod(1001))
	assert.False(t, r.CanWithdraw(1719, 1000, 720))
	assert.True(t, r.CanWithdraw(1720, 1000, 720))

	r.Stats = Stats{Total: 2, Rejected: 2}
	assert.False(t, r.HasWinner())
	assert.True(t, r.IsRefundPeriod(1001))
	assert.False(t, r.IsRefundPeriod(1000))
}

func TestCanWithdrawDoesNotOverflow(t *testing.T) {
	r := NewTestRecord(TestKey("creator"))
	r.Stats = Stats{Total: 2, Accepted: 1}

	assert.False(t, r.CanWithdraw(math.MaxInt32, math.MaxInt32, 720))
}

func TestCloneIsDeep(t *testing.T) {
	r := NewTestRecord(TestKey("creator"))
	c := r.Clone()

	c.Content[0] ^= 0xff
	c.CreatorPubKey[1] ^= 0xff

	assert.False(t, r.Equal(c))
	assert.True(t, r.Equal(NewTestRecord(TestKey("creator"))))
}
