package enrichment

import (
	"context"
	"time"

	"github.com/skylinkhq/flightsearch/internal/models"
)

// Provider fetches third-party augmentation data for a single flight.
// Fetch is time-boxed by the caller's context and may fail; failures are
// absorbed by the client, never surfaced to the search caller.
type Provider interface {
	Fetch(ctx context.Context, flight models.Flight) (PartialFlightUpdate, error)
}

// PartialFlightUpdate carries the fields a provider may confirm. Nil fields
// leave the flight untouched.
type PartialFlightUpdate struct {
	DepartureTime *time.Time `json:"departure_time,omitempty"`
	ArrivalTime   *time.Time `json:"arrival_time,omitempty"`
	Aircraft      *string    `json:"aircraft,omitempty"`
	Status        *string    `json:"status,omitempty"`
}

// Apply overlays the confirmed fields on a copy of the flight. Applying the
// same update twice yields the same result as applying it once.
func (u PartialFlightUpdate) Apply(f models.Flight) models.Flight {
	if u.DepartureTime != nil {
		f.DepartureTime = *u.DepartureTime
	}
	if u.ArrivalTime != nil {
		f.ArrivalTime = *u.ArrivalTime
	}
	if u.Aircraft != nil {
		f.Aircraft = *u.Aircraft
	}
	if u.Status != nil {
		f.Status = *u.Status
	}
	return f
}
