package httputil

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GetJSON(t *testing.T) {
	t.Parallel()

	t.Run("decodes response", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, defaultUserAgent, r.Header.Get("User-Agent"))

			_, _ = w.Write([]byte(`{"rate":36.5}`))
		}))
		t.Cleanup(srv.Close)

		var out struct {
			Rate float64 `json:"rate"`
		}

		require.NoError(t, NewClient(time.Second).GetJSON(context.Background(), srv.URL, &out))
		assert.Equal(t, 36.5, out.Rate)
	})

	t.Run("bad status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)

		var out map[string]any

		err := NewClient(time.Second).GetJSON(context.Background(), srv.URL, &out)
		assert.ErrorIs(t, err, ErrStatusCode)
	})

	t.Run("invalid body", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		t.Cleanup(srv.Close)

		var out map[string]any

		assert.Error(t, NewClient(time.Second).GetJSON(context.Background(), srv.URL, &out))
	})
}

func TestClient_PostJSON(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		_ = json.NewEncoder(w).Encode(map[string]string{"echo": in["ping"]})
	}))
	t.Cleanup(srv.Close)

	var out map[string]string

	require.NoError(
		t,
		NewClient(time.Second, WithUserAgent("test")).PostJSON(
			context.Background(),
			srv.URL,
			map[string]string{"ping": "pong"},
			&out,
		),
	)

	assert.Equal(t, "pong", out["echo"])
}
