package binance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/remesas/storage/types"
)

// newBoard serves the given listing prices, capturing the request
func newBoard(t *testing.T, prices []any, captured *searchRequest) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}

		rows := make([]map[string]any, 0, len(prices))
		for _, price := range prices {
			rows = append(rows, map[string]any{
				"adv": map[string]any{"price": price},
			})
		}

		_ = json.NewEncoder(w).Encode(map[string]any{"data": rows})
	}))
	t.Cleanup(srv.Close)

	return srv.URL
}

func TestProvider_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("median of listings", func(t *testing.T) {
		t.Parallel()

		var captured searchRequest

		url := newBoard(t, []any{"10", "12", "11", "100", "9"}, &captured)

		rates, err := NewCOPBuyProvider(url, time.Second).Fetch(
			context.Background(),
			types.FetchParams{},
		)
		require.NoError(t, err)
		require.Len(t, rates, 1)

		assert.Equal(t, 11.0, rates[0].Rate)
		assert.Equal(t, types.FieldUSDTCOPBuy, rates[0].Field)

		assert.Equal(t, types.CurrencyUSDT, captured.Asset)
		assert.Equal(t, types.CurrencyCOP, captured.Fiat)
		assert.Equal(t, types.RateTypeBUY, captured.TradeType)
		assert.Equal(t, 1, captured.Page)
		assert.Equal(t, 10, captured.Rows)
		assert.Empty(t, captured.TransAmount)
	})

	t.Run("trade amount forwarded", func(t *testing.T) {
		t.Parallel()

		var captured searchRequest

		url := newBoard(t, []any{"36.5"}, &captured)

		rates, err := NewVESSellProvider(url, time.Second).Fetch(
			context.Background(),
			types.FetchParams{COPAmount: 100000, VESAmount: 5230},
		)
		require.NoError(t, err)
		require.Len(t, rates, 1)

		assert.Equal(t, types.FieldUSDTVESSell, rates[0].Field)
		assert.Equal(t, types.CurrencyVES, captured.Fiat)
		assert.Equal(t, types.RateTypeSELL, captured.TradeType)
		assert.Equal(t, "5200", captured.TransAmount)
	})

	t.Run("unparsable listings skipped", func(t *testing.T) {
		t.Parallel()

		url := newBoard(t, []any{"n/a", 4000.0, "4010", "-5"}, nil)

		rates, err := NewCOPBuyProvider(url, time.Second).Fetch(
			context.Background(),
			types.FetchParams{},
		)
		require.NoError(t, err)
		require.Len(t, rates, 1)

		assert.Equal(t, 4005.0, rates[0].Rate)
	})

	t.Run("empty board", func(t *testing.T) {
		t.Parallel()

		url := newBoard(t, nil, nil)

		_, err := NewCOPBuyProvider(url, time.Second).Fetch(
			context.Background(),
			types.FetchParams{},
		)
		assert.ErrorIs(t, err, errNoListings)
	})
}

func TestProvider_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Binance P2P COP", NewCOPBuyProvider(P2PURL, time.Second).Name())
	assert.Equal(t, "Binance P2P VES", NewVESSellProvider(P2PURL, time.Second).Name())
}

func TestProvider_CacheKey(t *testing.T) {
	t.Parallel()

	p := NewCOPBuyProvider(P2PURL, time.Second)

	assert.Equal(t, "0", p.CacheKey(types.FetchParams{}))
	assert.Equal(
		t,
		p.CacheKey(types.FetchParams{COPAmount: 101000}),
		p.CacheKey(types.FetchParams{COPAmount: 104000}),
	)
	assert.NotEqual(
		t,
		p.CacheKey(types.FetchParams{COPAmount: 100000}),
		p.CacheKey(types.FetchParams{COPAmount: 200000}),
	)
}

func TestBucketAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, bucketAmount(0))
	assert.Equal(t, 0.0, bucketAmount(-10))
	assert.InDelta(t, 5200, bucketAmount(5230), 1e-9)
	assert.InDelta(t, 100000, bucketAmount(101000), 1e-6)
	assert.InDelta(t, 350000, bucketAmount(350000), 1e-6)
}
