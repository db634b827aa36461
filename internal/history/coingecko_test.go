package history

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinGeckoClient_Price(t *testing.T) {
	t.Run("keeps exact decimal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/simple/price", r.URL.Path)
			assert.Equal(t, "ethereum", r.URL.Query().Get("ids"))
			assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
			_, _ = w.Write([]byte(`{"ethereum":{"usd":3456.789012345}}`))
		}))
		defer srv.Close()

		price, err := NewCoinGeckoClient(srv.URL).Price(context.Background(), "ethereum", "USD")
		require.NoError(t, err)
		assert.Equal(t, "3456.789012345", price)
	})

	t.Run("missing currency", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"ethereum":{}}`))
		}))
		defer srv.Close()

		_, err := NewCoinGeckoClient(srv.URL).Price(context.Background(), "ethereum", "eur")
		assert.Error(t, err)
	})

	t.Run("rate limited", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		_, err := NewCoinGeckoClient(srv.URL).Price(context.Background(), "ethereum", "usd")
		assert.ErrorContains(t, err, "429")
	})
}
