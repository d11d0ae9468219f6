package erapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sig-0/remesas/storage/types"
)

func TestProvider_Fetch(t *testing.T) {
	t.Parallel()

	serve := func(t *testing.T, body string) string {
		t.Helper()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		t.Cleanup(srv.Close)

		return srv.URL
	}

	t.Run("cross rates", func(t *testing.T) {
		t.Parallel()

		url := serve(t, `{"result":"success","rates":{"USD":1,"COP":4000,"EUR":0.8}}`)

		rates, err := NewProvider(url, time.Second).Fetch(context.Background(), types.FetchParams{})
		require.NoError(t, err)
		require.Len(t, rates, 2)

		assert.Equal(t, types.FieldUSDCOP, rates[0].Field)
		assert.Equal(t, 4000.0, rates[0].Rate)

		assert.Equal(t, types.FieldEURUSD, rates[1].Field)
		assert.InDelta(t, 1.25, rates[1].Rate, 1e-12)
	})

	t.Run("missing EUR", func(t *testing.T) {
		t.Parallel()

		url := serve(t, `{"result":"success","rates":{"COP":4000,"EUR":0}}`)

		rates, err := NewProvider(url, time.Second).Fetch(context.Background(), types.FetchParams{})
		require.NoError(t, err)
		require.Len(t, rates, 1)

		assert.Equal(t, types.FieldUSDCOP, rates[0].Field)
	})

	t.Run("error result", func(t *testing.T) {
		t.Parallel()

		url := serve(t, `{"result":"error","error-type":"unsupported-code"}`)

		_, err := NewProvider(url, time.Second).Fetch(context.Background(), types.FetchParams{})
		assert.ErrorIs(t, err, errUnsuccessful)
	})
}
