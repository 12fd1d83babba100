// Package search composes the full query flow: criteria validation, cache
// lookup, repository or connection search, seat attachment, class
// filtering, best-effort enrichment, and the asynchronous write-through.
package search

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/skylinkhq/flightsearch/internal/availability"
	"github.com/skylinkhq/flightsearch/internal/cache"
	"github.com/skylinkhq/flightsearch/internal/connection"
	"github.com/skylinkhq/flightsearch/internal/criteria"
	"github.com/skylinkhq/flightsearch/internal/enrichment"
	"github.com/skylinkhq/flightsearch/internal/models"
	"github.com/skylinkhq/flightsearch/internal/repository"
)

const cacheWriteTimeout = 5 * time.Second

// Request carries the raw, unvalidated search inputs.
type Request struct {
	Origin         string
	Destination    string
	DepartureDate  time.Time
	ReturnDate     *time.Time
	SeatClass      string
	MaxConnections int
}

type Result struct {
	Itineraries       []models.Itinerary `json:"itineraries"`
	ReturnItineraries []models.Itinerary `json:"return_itineraries,omitempty"`
	CacheHit          bool               `json:"cache_hit"`
	SearchTime        time.Duration      `json:"-"`
}

// Searcher is the orchestrator callers invoke. It owns no state beyond its
// collaborators; concurrent searches are independent except for the shared
// cache, where whole-entry overwrites by the last writer are harmless.
type Searcher struct {
	flights  repository.FlightRepository
	seats    repository.SeatAvailabilityRepository
	finder   *connection.Finder
	enricher *enrichment.Client
	cache    *cache.ResultCache
	rules    criteria.Rules
	group    singleflight.Group
	logger   zerolog.Logger
}

func New(
	flights repository.FlightRepository,
	seats repository.SeatAvailabilityRepository,
	finder *connection.Finder,
	enricher *enrichment.Client,
	resultCache *cache.ResultCache,
	rules criteria.Rules,
	logger zerolog.Logger,
) *Searcher {
	return &Searcher{
		flights:  flights,
		seats:    seats,
		finder:   finder,
		enricher: enricher,
		cache:    resultCache,
		rules:    rules,
		logger:   logger.With().Str("component", "searcher").Logger(),
	}
}

// Search validates the request and runs the full flow. It returns a
// *models.ValidationError for malformed criteria, models.ErrNoFlights when
// nothing matches, and a *models.RepositoryError when a collaborator fails.
func (s *Searcher) Search(ctx context.Context, req Request) (*Result, error) {
	crit, err := criteria.Build(req.Origin, req.Destination, req.DepartureDate, req.ReturnDate, req.SeatClass, s.rules)
	if err != nil {
		return nil, err
	}
	if req.MaxConnections < 0 || req.MaxConnections > 2 {
		return nil, models.NewValidationError("maxConnections", models.CodeInvalidMaxConnections)
	}

	start := time.Now()

	if !crit.IsRoundTrip() {
		itineraries, hit, err := s.searchOneWay(ctx, crit, req.MaxConnections)
		if err != nil {
			return nil, err
		}
		return &Result{
			Itineraries: itineraries,
			CacheHit:    hit,
			SearchTime:  time.Since(start),
		}, nil
	}

	return s.searchRoundTrip(ctx, crit, req.MaxConnections, start)
}

// searchRoundTrip fans the outbound and homebound searches out
// concurrently. A failed outbound leg fails the search; a failed return leg
// degrades to an outbound-only result.
func (s *Searcher) searchRoundTrip(ctx context.Context, crit criteria.Criteria, maxConnections int, start time.Time) (*Result, error) {
	type legResult struct {
		itineraries []models.Itinerary
		hit         bool
		err         error
	}

	outboundCh := make(chan legResult, 1)
	returnCh := make(chan legResult, 1)

	go func() {
		itineraries, hit, err := s.searchOneWay(ctx, crit, maxConnections)
		outboundCh <- legResult{itineraries: itineraries, hit: hit, err: err}
	}()
	go func() {
		itineraries, hit, err := s.searchOneWay(ctx, crit.ReturnLeg(), maxConnections)
		returnCh <- legResult{itineraries: itineraries, hit: hit, err: err}
	}()

	outbound := <-outboundCh
	homebound := <-returnCh

	if outbound.err != nil {
		return nil, outbound.err
	}
	if homebound.err != nil {
		s.logger.Warn().
			Err(homebound.err).
			Str("origin", crit.Destination()).
			Str("destination", crit.Origin()).
			Msg("return leg search failed, returning outbound only")
		homebound.itineraries = nil
	}

	return &Result{
		Itineraries:       outbound.itineraries,
		ReturnItineraries: homebound.itineraries,
		CacheHit:          outbound.hit,
		SearchTime:        time.Since(start),
	}, nil
}

func (s *Searcher) searchOneWay(ctx context.Context, crit criteria.Criteria, maxConnections int) ([]models.Itinerary, bool, error) {
	if itineraries, ok := s.cache.Get(ctx, crit); ok {
		s.logger.Debug().Str("cache_key", crit.CacheKey()).Msg("cache hit")
		return itineraries, true, nil
	}

	// Collapse concurrent identical misses into one lookup; late arrivals
	// share the first caller's result.
	v, err, _ := s.group.Do(crit.CacheKey(), func() (interface{}, error) {
		return s.lookup(ctx, crit, maxConnections)
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]models.Itinerary), false, nil
}

func (s *Searcher) lookup(ctx context.Context, crit criteria.Criteria, maxConnections int) ([]models.Itinerary, error) {
	var itineraries []models.Itinerary
	if maxConnections == 0 {
		flights, err := s.flights.FindByCriteria(ctx, crit)
		if err != nil {
			return nil, models.NewRepositoryError("flight repository", err)
		}
		for _, f := range flights {
			itineraries = append(itineraries, models.NewItinerary(f))
		}
	} else {
		var err error
		itineraries, err = s.finder.Find(ctx, crit.Origin(), crit.Destination(), maxConnections)
		if err != nil {
			return nil, err
		}
	}
	if len(itineraries) == 0 {
		return nil, models.ErrNoFlights
	}

	legs := flattenLegs(itineraries)
	attached, err := availability.Attach(ctx, s.seats, legs)
	if err != nil {
		return nil, err
	}
	itineraries = rebuildLegs(itineraries, attached)

	if class, ok := crit.SeatClass(); ok {
		itineraries = availability.FilterItineraries(itineraries, class)
		if len(itineraries) == 0 {
			return nil, models.ErrNoFlights
		}
	}

	if s.enricher != nil {
		enriched := s.enricher.Enrich(ctx, flattenLegs(itineraries))
		itineraries = rebuildLegs(itineraries, enriched)
	}

	// Fire-and-forget write-through; the caller's response never waits on
	// cache I/O.
	go func() {
		writeCtx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()
		s.cache.Put(writeCtx, crit, itineraries)
	}()

	return itineraries, nil
}

// InvalidateCache evicts the cached snapshot for the request's criteria.
func (s *Searcher) InvalidateCache(ctx context.Context, req Request) error {
	crit, err := criteria.Build(req.Origin, req.Destination, req.DepartureDate, req.ReturnDate, req.SeatClass, s.rules)
	if err != nil {
		return err
	}
	s.logger.Info().Str("cache_key", crit.CacheKey()).Msg("invalidating cache entry")
	return s.cache.Invalidate(ctx, crit)
}

// flattenLegs collects the distinct flights across all itineraries in
// first-seen order, so shared legs are attached and enriched once.
func flattenLegs(itineraries []models.Itinerary) []models.Flight {
	seen := make(map[string]bool)
	var legs []models.Flight
	for _, itin := range itineraries {
		for _, leg := range itin.Legs {
			if !seen[leg.ID] {
				seen[leg.ID] = true
				legs = append(legs, leg)
			}
		}
	}
	return legs
}

// rebuildLegs maps the processed flights back onto the itineraries by id.
func rebuildLegs(itineraries []models.Itinerary, legs []models.Flight) []models.Itinerary {
	byID := make(map[string]models.Flight, len(legs))
	for _, leg := range legs {
		byID[leg.ID] = leg
	}

	result := make([]models.Itinerary, len(itineraries))
	for i, itin := range itineraries {
		rebuilt := make([]models.Flight, len(itin.Legs))
		for j, leg := range itin.Legs {
			if updated, ok := byID[leg.ID]; ok {
				rebuilt[j] = updated
			} else {
				rebuilt[j] = leg
			}
		}
		result[i] = models.Itinerary{Legs: rebuilt}
	}
	return result
}
