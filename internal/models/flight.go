package models

import (
	"strings"
	"time"
)

type SeatClass string

const (
	SeatClassEconomy        SeatClass = "ECONOMY"
	SeatClassPremiumEconomy SeatClass = "PREMIUM_ECONOMY"
	SeatClassBusiness       SeatClass = "BUSINESS"
	SeatClassFirst          SeatClass = "FIRST"
)

func SeatClasses() []SeatClass {
	return []SeatClass{
		SeatClassEconomy,
		SeatClassPremiumEconomy,
		SeatClassBusiness,
		SeatClassFirst,
	}
}

// ParseSeatClass normalizes a caller-supplied class name to its canonical
// uppercase form. The second return value is false for unknown classes.
func ParseSeatClass(s string) (SeatClass, bool) {
	normalized := SeatClass(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range SeatClasses() {
		if c == normalized {
			return c, true
		}
	}
	return "", false
}

// SeatAvailability is one seat-class inventory record for a flight, as
// returned by the seat availability repository.
type SeatAvailability struct {
	FlightID       string    `json:"flight_id"`
	Class          SeatClass `json:"class"`
	AvailableSeats int       `json:"available_seats"`
}

type Flight struct {
	ID               string            `json:"id"`
	AirlineID        string            `json:"airline_id"`
	Origin           string            `json:"origin"`
	Destination      string            `json:"destination"`
	DepartureTime    time.Time         `json:"departure_time"`
	ArrivalTime      time.Time         `json:"arrival_time"`
	SeatAvailability map[SeatClass]int `json:"seat_availability,omitempty"`
	Aircraft         string            `json:"aircraft,omitempty"`
	Status           string            `json:"status,omitempty"`
}

// HasSeats reports whether the flight has at least one open seat in the
// given class. Flights with no attached availability always report false.
func (f Flight) HasSeats(class SeatClass) bool {
	return f.SeatAvailability[class] > 0
}

func (f Flight) Duration() time.Duration {
	return f.ArrivalTime.Sub(f.DepartureTime)
}
