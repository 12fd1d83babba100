package models

import "time"

// Itinerary is an ordered sequence of one to three legs forming a bookable
// trip. Adjacent legs share an airport: leg[i].Destination ==
// leg[i+1].Origin, with the gap between arrival and next departure inside
// the configured connection window.
type Itinerary struct {
	Legs []Flight `json:"legs"`
}

func NewItinerary(legs ...Flight) Itinerary {
	return Itinerary{Legs: legs}
}

func (i Itinerary) Origin() string {
	if len(i.Legs) == 0 {
		return ""
	}
	return i.Legs[0].Origin
}

func (i Itinerary) Destination() string {
	if len(i.Legs) == 0 {
		return ""
	}
	return i.Legs[len(i.Legs)-1].Destination
}

// Stops is the number of connections, one less than the number of legs.
func (i Itinerary) Stops() int {
	if len(i.Legs) <= 1 {
		return 0
	}
	return len(i.Legs) - 1
}

// TotalDuration spans first departure to final arrival, layovers included.
func (i Itinerary) TotalDuration() time.Duration {
	if len(i.Legs) == 0 {
		return 0
	}
	return i.Legs[len(i.Legs)-1].ArrivalTime.Sub(i.Legs[0].DepartureTime)
}
