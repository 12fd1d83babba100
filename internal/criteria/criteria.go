package criteria

import (
	"regexp"
	"strings"
	"time"

	"github.com/skylinkhq/flightsearch/internal/models"
)

var airportCodePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// Rules holds the validation boundaries as explicit configuration so tests
// can exercise boundary values without recompilation.
type Rules struct {
	// MaxHorizon is how far into the future a departure or return may lie.
	MaxHorizon time.Duration
	// Classes is the accepted seat-class enumeration.
	Classes []models.SeatClass
	// Now supplies the clock; defaults to time.Now.
	Now func() time.Time
}

func DefaultRules() Rules {
	return Rules{
		MaxHorizon: 365 * 24 * time.Hour,
		Classes:    models.SeatClasses(),
		Now:        time.Now,
	}
}

// Criteria is an immutable, validated search description. A Criteria value
// only ever exists in a fully valid state: construct it through Build.
type Criteria struct {
	origin        string
	destination   string
	departureDate time.Time
	returnDate    *time.Time
	seatClass     models.SeatClass // empty means "any class"
}

// Build validates the raw inputs and returns an immutable Criteria.
// Rules are checked in order and the first failure wins; the returned error
// is always a *models.ValidationError carrying the offending field and code.
func Build(origin, destination string, departureDate time.Time, returnDate *time.Time, seatClass string, rules Rules) (Criteria, error) {
	if rules.Now == nil {
		rules.Now = time.Now
	}

	origin = strings.ToUpper(strings.TrimSpace(origin))
	destination = strings.ToUpper(strings.TrimSpace(destination))

	if origin == "" {
		return Criteria{}, models.NewValidationError("origin", models.CodeMissingField)
	}
	if destination == "" {
		return Criteria{}, models.NewValidationError("destination", models.CodeMissingField)
	}
	if departureDate.IsZero() {
		return Criteria{}, models.NewValidationError("departureDate", models.CodeMissingField)
	}
	if !airportCodePattern.MatchString(origin) {
		return Criteria{}, models.NewValidationError("origin", models.CodeInvalidAirportCode)
	}
	if !airportCodePattern.MatchString(destination) {
		return Criteria{}, models.NewValidationError("destination", models.CodeInvalidAirportCode)
	}
	if origin == destination {
		return Criteria{}, models.NewValidationError("destination", models.CodeSameOriginDestination)
	}

	now := rules.Now()
	horizon := now.Add(rules.MaxHorizon)
	if departureDate.Before(now) {
		return Criteria{}, models.NewValidationError("departureDate", models.CodeDateInPast)
	}
	if departureDate.After(horizon) {
		return Criteria{}, models.NewValidationError("departureDate", models.CodeFutureDateTooFar)
	}
	if returnDate != nil {
		if !returnDate.After(departureDate) {
			return Criteria{}, models.NewValidationError("returnDate", models.CodeReturnBeforeDeparture)
		}
		if returnDate.After(horizon) || returnDate.Sub(departureDate) > rules.MaxHorizon {
			return Criteria{}, models.NewValidationError("returnDate", models.CodeFutureDateTooFar)
		}
	}

	var class models.SeatClass
	if strings.TrimSpace(seatClass) != "" {
		parsed, ok := models.ParseSeatClass(seatClass)
		if !ok {
			return Criteria{}, models.NewValidationError("seatClass", models.CodeInvalidSeatClass)
		}
		class = parsed
	}

	c := Criteria{
		origin:        origin,
		destination:   destination,
		departureDate: departureDate,
		seatClass:     class,
	}
	if returnDate != nil {
		ret := *returnDate
		c.returnDate = &ret
	}
	return c, nil
}

func (c Criteria) Origin() string      { return c.origin }
func (c Criteria) Destination() string { return c.destination }

func (c Criteria) DepartureDate() time.Time { return c.departureDate }

// ReturnDate returns the return departure timestamp; ok is false for
// one-way criteria.
func (c Criteria) ReturnDate() (time.Time, bool) {
	if c.returnDate == nil {
		return time.Time{}, false
	}
	return *c.returnDate, true
}

// SeatClass returns the requested class; ok is false when any class is
// acceptable.
func (c Criteria) SeatClass() (models.SeatClass, bool) {
	return c.seatClass, c.seatClass != ""
}

func (c Criteria) IsRoundTrip() bool {
	return c.returnDate != nil
}

const (
	oneWayToken   = "oneway"
	anyClassToken = "any"
	dayLayout     = "2006-01-02"
)

// CacheKey derives a deterministic key from the normalized criteria. Dates
// are truncated to the day, so same-day searches issued with different
// intraday timestamps collapse into one cache entry.
func (c Criteria) CacheKey() string {
	ret := oneWayToken
	if c.returnDate != nil {
		ret = c.returnDate.UTC().Format(dayLayout)
	}
	class := anyClassToken
	if c.seatClass != "" {
		class = string(c.seatClass)
	}
	return strings.Join([]string{
		"search",
		c.origin,
		c.destination,
		c.departureDate.UTC().Format(dayLayout),
		ret,
		class,
	}, ":")
}

// ReturnLeg derives the criteria for the homebound half of a round trip:
// airports swapped, the return date promoted to departure. It must only be
// called on round-trip criteria; the result is valid by construction.
func (c Criteria) ReturnLeg() Criteria {
	return Criteria{
		origin:        c.destination,
		destination:   c.origin,
		departureDate: *c.returnDate,
		seatClass:     c.seatClass,
	}
}
