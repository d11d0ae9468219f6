package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/remesas/storage"
	"github.com/sig-0/remesas/storage/types"
)

func TestStorage_UserBySession(t *testing.T) {
	t.Parallel()

	s := NewStorage()
	s.SaveUser(types.User{ID: "u1", Email: "op@example.com", Active: true})

	s.CreateSession("valid", "u1", time.Hour)
	s.CreateSession("expired", "u1", -time.Second)
	s.CreateSession("orphan", "missing", time.Hour)

	u, err := s.UserBySession(context.Background(), "valid")
	require.NoError(t, err)
	assert.Equal(t, "op@example.com", u.Email)

	for _, id := range []string{"expired", "orphan", "unknown"} {
		_, err = s.UserBySession(context.Background(), id)
		assert.ErrorIs(t, err, storage.ErrNotFound, id)
	}
}

func TestStorage_Adjustments(t *testing.T) {
	t.Parallel()

	s := NewStorage()

	adj, err := s.Adjustments(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, adj)

	require.NoError(t, s.SaveAdjustments(
		context.Background(),
		"u1",
		types.AdjustmentSet{BCVPct: 80, USDTVESPct: -3},
	))

	adj, err = s.Adjustments(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, adj)

	assert.Equal(t, types.AdjustmentSet{BCVPct: 50, USDTVESPct: -3}, *adj)
}
