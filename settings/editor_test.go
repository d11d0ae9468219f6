package settings

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/remesas/storage/types"
)

const testDebounce = 20 * time.Millisecond

func TestEditor_Update(t *testing.T) {
	t.Parallel()

	t.Run("visible immediately, clamped", func(t *testing.T) {
		t.Parallel()

		e := NewEditor(&mockSaver{}, "u1", types.DefaultAdjustments(), StateDefault, WithDebounce(time.Hour))
		t.Cleanup(e.Close)

		assert.Equal(t, StateDefault, e.State())

		clamped := e.Update(types.AdjustmentSet{BCVPct: 75})

		assert.Equal(t, 50.0, clamped.BCVPct)
		assert.Equal(t, clamped, e.Adjustments())
		assert.Equal(t, StateEdited, e.State())
	})

	t.Run("burst coalesced into a single save", func(t *testing.T) {
		t.Parallel()

		var (
			saves atomic.Int32
			saved = make(chan types.AdjustmentSet, 10)

			saver = &mockSaver{
				saveFn: func(_ context.Context, _ string, adj types.AdjustmentSet) error {
					saves.Add(1)
					saved <- adj

					return nil
				},
			}
		)

		e := NewEditor(saver, "u1", types.AdjustmentSet{}, StateDefault, WithDebounce(testDebounce))
		t.Cleanup(e.Close)

		for i := 1; i <= 5; i++ {
			e.Update(types.AdjustmentSet{ParallelPct: float64(i)})
		}

		select {
		case adj := <-saved:
			assert.Equal(t, 5.0, adj.ParallelPct)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for save")
		}

		require.Eventually(t, func() bool {
			return e.State() == StatePersisted
		}, 5*time.Second, time.Millisecond*5)

		// Wait a few debounce windows for stray saves
		time.Sleep(testDebounce * 5)

		assert.Equal(t, int32(1), saves.Load())
	})

	t.Run("failed save stays edited", func(t *testing.T) {
		t.Parallel()

		attempted := make(chan struct{})

		saver := &mockSaver{
			saveFn: func(_ context.Context, _ string, _ types.AdjustmentSet) error {
				close(attempted)

				return errors.New("store down")
			},
		}

		e := NewEditor(saver, "u1", types.AdjustmentSet{}, StateDefault, WithDebounce(testDebounce))
		t.Cleanup(e.Close)

		e.Update(types.AdjustmentSet{USDTCOPPct: 2})

		select {
		case <-attempted:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for save attempt")
		}

		// Give the outcome time to settle
		time.Sleep(testDebounce)

		assert.Equal(t, StateEdited, e.State())
		assert.Equal(t, 2.0, e.Adjustments().USDTCOPPct)
	})

	t.Run("superseded save discarded", func(t *testing.T) {
		t.Parallel()

		var (
			calls   atomic.Int32
			started = make(chan struct{})
			release = make(chan struct{})
			second  = make(chan types.AdjustmentSet, 1)

			saver = &mockSaver{
				saveFn: func(_ context.Context, _ string, adj types.AdjustmentSet) error {
					if calls.Add(1) == 1 {
						close(started)
						<-release

						return nil
					}

					second <- adj

					return nil
				},
			}
		)

		e := NewEditor(saver, "u1", types.AdjustmentSet{}, StateDefault, WithDebounce(testDebounce))
		t.Cleanup(e.Close)

		e.Update(types.AdjustmentSet{BCVPct: 1})

		select {
		case <-started:
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for first save")
		}

		// Edit while the first save is in flight
		e.Update(types.AdjustmentSet{BCVPct: 2})
		close(release)

		// The first save completing must not mark the newer edit as persisted
		time.Sleep(testDebounce / 4)
		assert.Equal(t, StateEdited, e.State())

		select {
		case adj := <-second:
			assert.Equal(t, 2.0, adj.BCVPct)
		case <-time.After(5 * time.Second):
			t.Fatal("timeout waiting for second save")
		}

		require.Eventually(t, func() bool {
			return e.State() == StatePersisted
		}, 5*time.Second, time.Millisecond*5)
	})
}

func TestEditor_Flush(t *testing.T) {
	t.Parallel()

	t.Run("saves pending edit", func(t *testing.T) {
		t.Parallel()

		var saved types.AdjustmentSet

		saver := &mockSaver{
			saveFn: func(_ context.Context, _ string, adj types.AdjustmentSet) error {
				saved = adj

				return nil
			},
		}

		e := NewEditor(saver, "u1", types.AdjustmentSet{}, StateDefault, WithDebounce(time.Hour))
		t.Cleanup(e.Close)

		e.Update(types.AdjustmentSet{USDTVESPct: -4})

		require.NoError(t, e.Flush(context.Background()))

		assert.Equal(t, -4.0, saved.USDTVESPct)
		assert.Equal(t, StatePersisted, e.State())
	})

	t.Run("nothing pending", func(t *testing.T) {
		t.Parallel()

		saver := &mockSaver{
			saveFn: func(_ context.Context, _ string, _ types.AdjustmentSet) error {
				t.Error("unexpected save")

				return nil
			},
		}

		e := NewEditor(saver, "u1", types.DefaultAdjustments(), StatePersisted)
		t.Cleanup(e.Close)

		assert.NoError(t, e.Flush(context.Background()))
	})

	t.Run("error surfaced", func(t *testing.T) {
		t.Parallel()

		saver := &mockSaver{
			saveFn: func(_ context.Context, _ string, _ types.AdjustmentSet) error {
				return errors.New("store down")
			},
		}

		e := NewEditor(saver, "u1", types.AdjustmentSet{}, StateDefault, WithDebounce(time.Hour))
		t.Cleanup(e.Close)

		e.Update(types.AdjustmentSet{BCVPct: 1})

		assert.Error(t, e.Flush(context.Background()))
		assert.Equal(t, StateEdited, e.State())
	})
}

func TestEditor_Close(t *testing.T) {
	t.Parallel()

	var saves atomic.Int32

	saver := &mockSaver{
		saveFn: func(_ context.Context, _ string, _ types.AdjustmentSet) error {
			saves.Add(1)

			return nil
		},
	}

	e := NewEditor(saver, "u1", types.AdjustmentSet{}, StateDefault, WithDebounce(testDebounce))

	e.Update(types.AdjustmentSet{BCVPct: 1})
	e.Close()

	time.Sleep(testDebounce * 5)

	assert.Equal(t, int32(0), saves.Load())
}
