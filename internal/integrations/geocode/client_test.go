package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"carebridge/internal/integrations/config"
	"carebridge/internal/shared/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, retryMax time.Duration) *Client {
	return NewClient(&config.Config{
		NominatimBaseURL: baseURL,
		GeocodeTimeout:   2 * time.Second,
		GeocodeRetryMax:  retryMax,
		GeocodeUserAgent: "carebridge-test",
	}, logger.NewLogger())
}

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "carebridge-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Write([]byte(`{
			"display_name": "Av. Arequipa 123, Lima, Peru",
			"address": {"road": "Av. Arequipa", "city": "Lima", "country": "Peru", "postcode": "15046"}
		}`))
	}))
	defer srv.Close()

	addresses, err := newTestClient(srv.URL, time.Second).Reverse(context.Background(), -12.05, -77.03)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, "Av. Arequipa 123, Lima, Peru", addresses[0].DisplayName)
	assert.Equal(t, "Lima", addresses[0].City)
	assert.Equal(t, "Peru", addresses[0].Country)
}

func TestReverse_FallsBackToTownOrVillage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"display_name": "x", "address": {"village": "Pueblo Libre"}}`))
	}))
	defer srv.Close()

	addresses, err := newTestClient(srv.URL, time.Second).Reverse(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Pueblo Libre", addresses[0].City)
}

func TestReverse_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"display_name": "ok", "address": {}}`))
	}))
	defer srv.Close()

	addresses, err := newTestClient(srv.URL, 5*time.Second).Reverse(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "ok", addresses[0].DisplayName)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestReverse_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 5*time.Second).Reverse(context.Background(), 0, 0)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
