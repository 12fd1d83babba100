package models

import (
	"errors"
	"fmt"
)

// ErrNoFlights is returned when a search produced zero itineraries. It is
// an expected outcome ("no results"), not a system fault; handlers map it
// to HTTP 404.
var ErrNoFlights = errors.New("no flights found")

// Validation error codes. Each code identifies the first rule a criteria
// build violated, so callers can render a precise message per field.
const (
	CodeMissingField          = "MISSING_FIELD"
	CodeInvalidAirportCode    = "INVALID_AIRPORT_CODE"
	CodeSameOriginDestination = "SAME_ORIGIN_DESTINATION"
	CodeDateInPast            = "DATE_IN_PAST"
	CodeFutureDateTooFar      = "FUTURE_DATE_TOO_FAR"
	CodeReturnBeforeDeparture = "RETURN_BEFORE_DEPARTURE"
	CodeInvalidSeatClass      = "INVALID_SEAT_CLASS"
	CodeInvalidMaxConnections = "INVALID_MAX_CONNECTIONS"
)

// ValidationError reports malformed or contradictory search criteria.
// Handlers map it to HTTP 400; it is never retried.
type ValidationError struct {
	Field string
	Code  string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Field + ": " + e.Code
}

func NewValidationError(field, code string) *ValidationError {
	return &ValidationError{Field: field, Code: code}
}

// RepositoryError wraps an infrastructure fault from a collaborator.
// Repository faults abort the search; the wrapped error carries which
// collaborator failed without leaking stack detail to external callers.
type RepositoryError struct {
	Collaborator string
	Err          error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func NewRepositoryError(collaborator string, err error) *RepositoryError {
	return &RepositoryError{Collaborator: collaborator, Err: err}
}
