package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/remesas/storage/mock"
	"github.com/sig-0/remesas/storage/types"
)

func TestHub_Editor(t *testing.T) {
	t.Parallel()

	t.Run("defaults when nothing stored", func(t *testing.T) {
		t.Parallel()

		h := NewHub(&mock.Storage{})
		t.Cleanup(h.Close)

		e, err := h.Editor(context.Background(), "u1")
		require.NoError(t, err)

		assert.Equal(t, types.DefaultAdjustments(), e.Adjustments())
		assert.Equal(t, StateDefault, e.State())
	})

	t.Run("stored adjustments loaded once", func(t *testing.T) {
		t.Parallel()

		var loads int

		store := &mock.Storage{
			AdjustmentsFn: func(_ context.Context, userID string) (*types.AdjustmentSet, error) {
				loads++

				assert.Equal(t, "u1", userID)

				return &types.AdjustmentSet{BCVPct: -3}, nil
			},
		}

		h := NewHub(store)
		t.Cleanup(h.Close)

		first, err := h.Editor(context.Background(), "u1")
		require.NoError(t, err)

		second, err := h.Editor(context.Background(), "u1")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, loads)
		assert.Equal(t, StatePersisted, first.State())
		assert.Equal(t, -3.0, first.Adjustments().BCVPct)
	})

	t.Run("load error", func(t *testing.T) {
		t.Parallel()

		store := &mock.Storage{
			AdjustmentsFn: func(_ context.Context, _ string) (*types.AdjustmentSet, error) {
				return nil, errors.New("store down")
			},
		}

		_, err := NewHub(store).Adjustments(context.Background(), "u1")
		assert.Error(t, err)
	})
}

func TestHub_UpdateFlush(t *testing.T) {
	t.Parallel()

	saved := make(map[string]types.AdjustmentSet)

	store := &mock.Storage{
		SaveAdjustmentsFn: func(_ context.Context, userID string, adj types.AdjustmentSet) error {
			if userID == "broken" {
				return errors.New("store down")
			}

			saved[userID] = adj

			return nil
		},
	}

	h := NewHub(store, WithDebounce(time.Hour))
	t.Cleanup(h.Close)

	adj, err := h.Update(context.Background(), "u1", types.AdjustmentSet{ParallelPct: -90})
	require.NoError(t, err)
	assert.Equal(t, -50.0, adj.ParallelPct)

	_, err = h.Update(context.Background(), "broken", types.AdjustmentSet{ParallelPct: 1})
	require.NoError(t, err)

	err = h.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")

	assert.Equal(t, -50.0, saved["u1"].ParallelPct)
}
