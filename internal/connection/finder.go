// Package connection builds multi-leg itineraries between two airports.
// Depth is capped at two connections by policy; this is not a general
// pathfinding engine.
package connection

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/skylinkhq/flightsearch/internal/models"
	"github.com/skylinkhq/flightsearch/internal/repository"
)

// Policy is the permitted time window between the arrival of one leg and
// the departure of the next.
type Policy struct {
	MinConnection time.Duration
	MaxConnection time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MinConnection: 45 * time.Minute,
		MaxConnection: 240 * time.Minute,
	}
}

// RelaxedPolicy is the wider window used by products that accept long
// layovers and tight domestic transfers.
func RelaxedPolicy() Policy {
	return Policy{
		MinConnection: 30 * time.Minute,
		MaxConnection: 720 * time.Minute,
	}
}

type Finder struct {
	flights repository.FlightRepository
	policy  Policy
	logger  zerolog.Logger
}

func NewFinder(flights repository.FlightRepository, policy Policy, logger zerolog.Logger) *Finder {
	return &Finder{
		flights: flights,
		policy:  policy,
		logger:  logger.With().Str("component", "connection_finder").Logger(),
	}
}

// Find returns itineraries from origin to destination using at most
// maxConnections intermediate stops (0, 1, or 2). Direct flights are always
// included; pairs and triples are added as the cap allows. Visited airports
// are not de-duplicated, so a pathological dataset can produce a leg that
// revisits the origin.
func (f *Finder) Find(ctx context.Context, origin, destination string, maxConnections int) ([]models.Itinerary, error) {
	direct, err := f.flights.FindByRoute(ctx, origin, destination)
	if err != nil {
		return nil, models.NewRepositoryError("flight repository", err)
	}

	itineraries := make([]models.Itinerary, 0, len(direct))
	for _, leg := range direct {
		itineraries = append(itineraries, models.NewItinerary(leg))
	}
	if maxConnections == 0 {
		return itineraries, nil
	}

	firstLegs, err := f.flights.FindByOrigin(ctx, origin)
	if err != nil {
		return nil, models.NewRepositoryError("flight repository", err)
	}

	for _, leg1 := range firstLegs {
		if leg1.Destination == destination {
			continue // already counted as a direct flight
		}

		seconds, err := f.flights.FindByRoute(ctx, leg1.Destination, destination)
		if err != nil {
			return nil, models.NewRepositoryError("flight repository", err)
		}
		for _, leg2 := range seconds {
			if f.validConnection(leg1, leg2) {
				itineraries = append(itineraries, models.NewItinerary(leg1, leg2))
			}
		}

		if maxConnections < 2 {
			continue
		}

		mids, err := f.flights.FindByOrigin(ctx, leg1.Destination)
		if err != nil {
			return nil, models.NewRepositoryError("flight repository", err)
		}
		for _, leg2 := range mids {
			if leg2.Destination == destination || !f.validConnection(leg1, leg2) {
				continue
			}
			thirds, err := f.flights.FindByRoute(ctx, leg2.Destination, destination)
			if err != nil {
				return nil, models.NewRepositoryError("flight repository", err)
			}
			for _, leg3 := range thirds {
				if f.validConnection(leg2, leg3) {
					itineraries = append(itineraries, models.NewItinerary(leg1, leg2, leg3))
				}
			}
		}
	}

	f.logger.Debug().
		Str("origin", origin).
		Str("destination", destination).
		Int("max_connections", maxConnections).
		Int("itineraries", len(itineraries)).
		Msg("connection search complete")

	return itineraries, nil
}

// validConnection requires airport continuity and a layover inside the
// policy window.
func (f *Finder) validConnection(a, b models.Flight) bool {
	if a.Destination != b.Origin {
		return false
	}
	gap := b.DepartureTime.Sub(a.ArrivalTime)
	return gap >= f.policy.MinConnection && gap <= f.policy.MaxConnection
}
