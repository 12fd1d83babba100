// Package repository declares the storage collaborators the search engine
// consumes. Persistence itself lives outside this engine; adapters implement
// these interfaces against whatever store holds the flight inventory.
package repository

import (
	"context"

	"github.com/skylinkhq/flightsearch/internal/criteria"
	"github.com/skylinkhq/flightsearch/internal/models"
)

type FlightRepository interface {
	// FindByCriteria returns direct flights matching the route and the
	// day-truncated departure date. An empty slice means no matches, not
	// an error.
	FindByCriteria(ctx context.Context, crit criteria.Criteria) ([]models.Flight, error)

	// FindByRoute returns flights for a route regardless of date; used for
	// connection expansion.
	FindByRoute(ctx context.Context, origin, destination string) ([]models.Flight, error)

	// FindByOrigin returns flights departing the given airport to any
	// destination; used to enumerate candidate first and middle legs.
	FindByOrigin(ctx context.Context, origin string) ([]models.Flight, error)
}

type SeatAvailabilityRepository interface {
	// FindByFlightIDs bulk-fetches seat records keyed by flight id. Flights
	// with no records are simply absent from the map.
	FindByFlightIDs(ctx context.Context, ids []string) (map[string][]models.SeatAvailability, error)
}
