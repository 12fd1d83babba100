package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skylinkhq/flightsearch/internal/cache"
	"github.com/skylinkhq/flightsearch/internal/connection"
	"github.com/skylinkhq/flightsearch/internal/criteria"
	"github.com/skylinkhq/flightsearch/internal/handler"
	"github.com/skylinkhq/flightsearch/internal/models"
	"github.com/skylinkhq/flightsearch/internal/repository"
	"github.com/skylinkhq/flightsearch/internal/search"
)

func newServer(repo *repository.Memory) *echo.Echo {
	logger := zerolog.Nop()
	finder := connection.NewFinder(repo, connection.DefaultPolicy(), logger)
	resultCache := cache.New(cache.NewMemoryStore(), cache.DefaultTTLPolicy(), logger)
	searcher := search.New(repo, repo, finder, nil, resultCache, criteria.DefaultRules(), logger)

	e := echo.New()
	handler.NewSearchHandler(searcher, logger).Register(e)
	return e
}

func doSearch(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flights/search", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint_OK(t *testing.T) {
	dep := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	repo := repository.NewMemory()
	repo.AddFlights(models.Flight{
		ID:            "f1",
		AirlineID:     "DL",
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureTime: dep,
		ArrivalTime:   dep.Add(6 * time.Hour),
	})
	e := newServer(repo)

	body := fmt.Sprintf(`{"origin":"JFK","destination":"LAX","departure_date":%q}`, dep.Format(time.RFC3339))
	rec := doSearch(e, body)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Itineraries []models.Itinerary `json:"itineraries"`
		Total       int                `json:"total_results"`
		CacheHit    bool               `json:"cache_hit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Itineraries, 1)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "f1", resp.Itineraries[0].Legs[0].ID)
}

func TestSearchEndpoint_ValidationErrorIs400(t *testing.T) {
	e := newServer(repository.NewMemory())

	dep := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	body := fmt.Sprintf(`{"origin":"JFK","destination":"JFK","departure_date":%q}`, dep)
	rec := doSearch(e, body)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Field string `json:"field"`
		Code  string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.CodeSameOriginDestination, resp.Code)
}

func TestSearchEndpoint_NoResultsIs404(t *testing.T) {
	e := newServer(repository.NewMemory())

	dep := time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339)
	body := fmt.Sprintf(`{"origin":"JFK","destination":"LAX","departure_date":%q}`, dep)
	rec := doSearch(e, body)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchEndpoint_MalformedDateIs400(t *testing.T) {
	e := newServer(repository.NewMemory())

	rec := doSearch(e, `{"origin":"JFK","destination":"LAX","departure_date":"next tuesday"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidateEndpoint(t *testing.T) {
	dep := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	repo := repository.NewMemory()
	repo.AddFlights(models.Flight{
		ID:            "f1",
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureTime: dep,
		ArrivalTime:   dep.Add(6 * time.Hour),
	})
	e := newServer(repo)

	body := fmt.Sprintf(`{"origin":"JFK","destination":"LAX","departure_date":%q}`, dep.Format(time.RFC3339))
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/flights/search/cache", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	e := newServer(repository.NewMemory())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
