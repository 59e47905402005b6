// Package tests holds the behaviour every bounty store implementation must share.
package tests

import (
	"context"
	"testing"

	"github.com/bountiful-platform/bountiful/errors"
	"github.com/bountiful-platform/bountiful/model"
	"github.com/bountiful-platform/bountiful/stores/bounty"
	"github.com/bsv-blockchain/go-bt/v2/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Versions returns a bounty and two successors, as consecutive boxes.
func Versions(t *testing.T) []*model.Box {
	t.Helper()

	r := model.NewTestRecord(model.TestKey("creator"))
	boxes := make([]*model.Box, 0, 3)

	for i := 0; i < 3; i++ {
		out, err := model.EncodeRecord(r)
		require.NoError(t, err)

		txID := chainhash.Hash(model.NewDigest([]byte{byte(i)}))
		boxes = append(boxes, &model.Box{
			Output:         *out,
			BoxID:          model.NewBoxID(txID, 0),
			TxID:           txID,
			CreationHeight: int32(900 + i),
		})

		r = r.Clone()
		r.Stats.Total++
	}

	return boxes
}

// Run exercises store against the shared contract.
func Run(t *testing.T, newStore func(t *testing.T) bounty.Store) {
	ctx := context.Background()

	t.Run("latest and history", func(t *testing.T) {
		store := newStore(t)
		boxes := Versions(t)
		tokenID := boxes[0].Tokens[0].ID

		_, err := store.Latest(ctx, tokenID)
		assert.True(t, errors.Is(err, errors.ErrRecordNotFound))

		_, err = store.History(ctx, tokenID)
		assert.True(t, errors.Is(err, errors.ErrRecordNotFound))

		for _, box := range boxes {
			require.NoError(t, store.Put(ctx, box, model.StatusOpen))
		}

		latest, err := store.Latest(ctx, tokenID)
		require.NoError(t, err)
		assert.Equal(t, boxes[2], latest.Box)
		assert.Equal(t, model.StatusOpen, latest.Status)
		assert.False(t, latest.Spent())

		history, err := store.History(ctx, tokenID)
		require.NoError(t, err)
		require.Len(t, history, 3)

		for i, e := range history {
			assert.Equal(t, boxes[i].BoxID, e.Box.BoxID)
		}
	})

	t.Run("put is idempotent", func(t *testing.T) {
		store := newStore(t)
		box := Versions(t)[0]

		require.NoError(t, store.Put(ctx, box, model.StatusOpen))
		require.NoError(t, store.Put(ctx, box, model.StatusOpen))

		history, err := store.History(ctx, box.Tokens[0].ID)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("put needs a control token", func(t *testing.T) {
		store := newStore(t)

		err := store.Put(ctx, &model.Box{BoxID: chainhash.Hash{1}}, model.StatusOpen)
		assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
	})

	t.Run("second spend is stale", func(t *testing.T) {
		store := newStore(t)
		boxes := Versions(t)

		require.NoError(t, store.Put(ctx, boxes[0], model.StatusOpen))

		first := chainhash.Hash{0xaa}
		require.NoError(t, store.MarkSpent(ctx, boxes[0].BoxID, first))

		err := store.MarkSpent(ctx, boxes[0].BoxID, chainhash.Hash{0xbb})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrStaleRecord))
		assert.True(t, errors.IsRetryableError(err))

		latest, err := store.Latest(ctx, boxes[0].Tokens[0].ID)
		require.NoError(t, err)
		require.True(t, latest.Spent())
		assert.Equal(t, first, *latest.SpentBy)

		err = store.MarkSpent(ctx, chainhash.Hash{0xcc}, first)
		assert.True(t, errors.Is(err, errors.ErrRecordNotFound))
	})

	t.Run("status follows the newest version", func(t *testing.T) {
		store := newStore(t)
		boxes := Versions(t)
		tokenID := boxes[0].Tokens[0].ID

		err := store.SetStatus(ctx, tokenID, model.StatusPaid)
		assert.True(t, errors.Is(err, errors.ErrRecordNotFound))

		require.NoError(t, store.Put(ctx, boxes[0], model.StatusOpen))
		require.NoError(t, store.Put(ctx, boxes[1], model.StatusOpen))

		// warm any cache before the change
		_, err = store.Latest(ctx, tokenID)
		require.NoError(t, err)

		require.NoError(t, store.SetStatus(ctx, tokenID, model.StatusExpired))

		latest, err := store.Latest(ctx, tokenID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusExpired, latest.Status)

		history, err := store.History(ctx, tokenID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusOpen, history[0].Status)
	})

	t.Run("returned entries are copies", func(t *testing.T) {
		store := newStore(t)
		box := Versions(t)[0]

		require.NoError(t, store.Put(ctx, box, model.StatusOpen))

		latest, err := store.Latest(ctx, box.Tokens[0].ID)
		require.NoError(t, err)

		latest.Status = model.StatusRefunded

		again, err := store.Latest(ctx, box.Tokens[0].ID)
		require.NoError(t, err)
		assert.Equal(t, model.StatusOpen, again.Status)
	})
}
