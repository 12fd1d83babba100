package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skylinkhq/flightsearch/internal/models"
)

// HTTPProvider fetches real-time flight status from an external HTTP API:
// GET {baseURL}/flights/{id}/status returning a JSON status document.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string, client *http.Client) *HTTPProvider {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPProvider{
		baseURL: baseURL,
		client:  client,
	}
}

type statusResponse struct {
	DepartureTime *time.Time `json:"departure_time"`
	ArrivalTime   *time.Time `json:"arrival_time"`
	Aircraft      *string    `json:"aircraft"`
	Status        *string    `json:"status"`
}

func (p *HTTPProvider) Fetch(ctx context.Context, flight models.Flight) (PartialFlightUpdate, error) {
	url := fmt.Sprintf("%s/flights/%s/status", p.baseURL, flight.ID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return PartialFlightUpdate{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return PartialFlightUpdate{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return PartialFlightUpdate{}, fmt.Errorf("status provider returned %d for flight %s", resp.StatusCode, flight.ID)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return PartialFlightUpdate{}, fmt.Errorf("decode status response: %w", err)
	}

	return PartialFlightUpdate{
		DepartureTime: status.DepartureTime,
		ArrivalTime:   status.ArrivalTime,
		Aircraft:      status.Aircraft,
		Status:        status.Status,
	}, nil
}

var _ Provider = (*HTTPProvider)(nil)
