// Package availability attaches seat inventory to flights and filters them
// by seat class.
package availability

import (
	"context"

	"github.com/skylinkhq/flightsearch/internal/models"
	"github.com/skylinkhq/flightsearch/internal/repository"
)

// Attach bulk-fetches seat records for the given flights and returns copies
// with their SeatAvailability maps filled. A flight with no matching records
// keeps an empty map; that is not an error. Input order is preserved.
func Attach(ctx context.Context, repo repository.SeatAvailabilityRepository, flights []models.Flight) ([]models.Flight, error) {
	if len(flights) == 0 {
		return flights, nil
	}

	ids := make([]string, 0, len(flights))
	for _, f := range flights {
		ids = append(ids, f.ID)
	}

	records, err := repo.FindByFlightIDs(ctx, ids)
	if err != nil {
		return nil, models.NewRepositoryError("seat availability repository", err)
	}

	attached := make([]models.Flight, len(flights))
	for i, f := range flights {
		f.SeatAvailability = make(map[models.SeatClass]int)
		for _, r := range records[f.ID] {
			f.SeatAvailability[r.Class] = r.AvailableSeats
		}
		attached[i] = f
	}
	return attached, nil
}

// FilterByClass keeps flights with at least one open seat in the given
// class. Runs after attachment so unmatched flights (empty availability)
// are dropped.
func FilterByClass(flights []models.Flight, class models.SeatClass) []models.Flight {
	result := make([]models.Flight, 0, len(flights))
	for _, f := range flights {
		if f.HasSeats(class) {
			result = append(result, f)
		}
	}
	return result
}

// FilterItineraries keeps itineraries whose every leg has open seats in the
// given class; a single sold-out leg makes the whole trip unbookable.
func FilterItineraries(itineraries []models.Itinerary, class models.SeatClass) []models.Itinerary {
	result := make([]models.Itinerary, 0, len(itineraries))
	for _, itin := range itineraries {
		bookable := true
		for _, leg := range itin.Legs {
			if !leg.HasSeats(class) {
				bookable = false
				break
			}
		}
		if bookable {
			result = append(result, itin)
		}
	}
	return result
}
