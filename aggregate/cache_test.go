package aggregate

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/remesas/storage/types"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func TestCache(t *testing.T) {
	t.Parallel()

	newCache := func() (*Cache, *fakeClock) {
		clock := &fakeClock{now: time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)}

		c := NewCache()
		c.now = clock.Now

		return c, clock
	}

	rates := []*types.ExchangeRate{{Field: types.FieldUSDCOP, Rate: 4000}}

	t.Run("hit before expiry", func(t *testing.T) {
		t.Parallel()

		c, clock := newCache()
		c.Set("key", rates, time.Minute)

		clock.Advance(59 * time.Second)

		cached, ok := c.Get("key")
		require.True(t, ok)
		assert.Equal(t, rates, cached)
	})

	t.Run("miss after expiry", func(t *testing.T) {
		t.Parallel()

		c, clock := newCache()
		c.Set("key", rates, time.Minute)

		clock.Advance(time.Minute)

		_, ok := c.Get("key")
		assert.False(t, ok)
		assert.Equal(t, 0, c.len())
	})

	t.Run("non-positive TTL ignored", func(t *testing.T) {
		t.Parallel()

		c, _ := newCache()
		c.Set("key", rates, 0)

		_, ok := c.Get("key")
		assert.False(t, ok)
	})

	t.Run("set drops expired entries", func(t *testing.T) {
		t.Parallel()

		c, clock := newCache()
		c.Set("short", rates, time.Second)
		c.Set("long", rates, time.Hour)

		clock.Advance(time.Minute)
		c.Set("fresh", rates, time.Hour)

		assert.Equal(t, 2, c.len())

		_, ok := c.Get("fresh")
		assert.True(t, ok)

		_, ok = c.Get("long")
		assert.True(t, ok)
	})
}
