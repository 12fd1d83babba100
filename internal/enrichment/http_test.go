package enrichment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylinkhq/flightsearch/internal/enrichment"
	"github.com/skylinkhq/flightsearch/internal/models"
)

func TestHTTPProvider_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/flights/GA-100/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"departure_time": "2026-09-12T08:15:00Z",
			"aircraft": "B737-800",
			"status": "DELAYED"
		}`))
	}))
	defer srv.Close()

	provider := enrichment.NewHTTPProvider(srv.URL, srv.Client())

	update, err := provider.Fetch(context.Background(), models.Flight{ID: "GA-100"})

	require.NoError(t, err)
	require.NotNil(t, update.DepartureTime)
	assert.Equal(t, time.Date(2026, 9, 12, 8, 15, 0, 0, time.UTC), update.DepartureTime.UTC())
	require.NotNil(t, update.Aircraft)
	assert.Equal(t, "B737-800", *update.Aircraft)
	require.NotNil(t, update.Status)
	assert.Equal(t, "DELAYED", *update.Status)
	assert.Nil(t, update.ArrivalTime)
}

func TestHTTPProvider_NonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	provider := enrichment.NewHTTPProvider(srv.URL, srv.Client())

	_, err := provider.Fetch(context.Background(), models.Flight{ID: "GA-100"})
	assert.Error(t, err)
}

func TestHTTPProvider_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	provider := enrichment.NewHTTPProvider(srv.URL, srv.Client())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := provider.Fetch(ctx, models.Flight{ID: "GA-100"})
	assert.Error(t, err)
}
