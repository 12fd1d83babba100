// Package enrichment augments search results with best-effort third-party
// data. A flight that cannot be enriched is returned unchanged; enrichment
// failure is never fatal to the overall search.
package enrichment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/skylinkhq/flightsearch/internal/models"
)

type Config struct {
	// BatchSize bounds burst size against the third party.
	BatchSize int
	// MaxAttempts is the total number of tries per flight.
	MaxAttempts int
	// BaseDelay is the first retry backoff; it doubles per attempt up to
	// MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration
	// RequestsPerSecond and Burst size the token bucket to the provider's
	// published quota.
	RequestsPerSecond float64
	Burst             int
	// AcquireTimeout caps how long a flight waits for a rate-limit slot
	// before being treated as an enrichment failure.
	AcquireTimeout time.Duration
	// Workers bounds per-batch concurrency.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		BatchSize:         50,
		MaxAttempts:       3,
		BaseDelay:         100 * time.Millisecond,
		MaxDelay:          2 * time.Second,
		RequestsPerSecond: 25,
		Burst:             50,
		AcquireTimeout:    3 * time.Second,
		Workers:           8,
	}
}

type Client struct {
	provider Provider
	limiter  *rate.Limiter
	cfg      Config
	logger   zerolog.Logger
}

func NewClient(provider Provider, cfg Config, logger zerolog.Logger) *Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	return &Client{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		cfg:      cfg,
		logger:   logger.With().Str("component", "enrichment").Logger(),
	}
}

// Enrich augments each flight independently and returns a slice of the same
// size and order as the input. Flights are processed in fixed-size batches;
// within a batch, per-flight work fans out across a bounded worker pool and
// the call blocks only at the collection boundary.
func (c *Client) Enrich(ctx context.Context, flights []models.Flight) []models.Flight {
	out := make([]models.Flight, len(flights))
	copy(out, flights)

	for start := 0; start < len(out); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(out) {
			end = len(out)
		}

		g := new(errgroup.Group)
		g.SetLimit(c.cfg.Workers)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				enriched, err := c.enrichOne(ctx, out[i])
				if err != nil {
					c.logger.Warn().
						Err(err).
						Str("flight_id", out[i].ID).
						Msg("enrichment failed, keeping original record")
					return nil
				}
				out[i] = enriched
				return nil
			})
		}
		_ = g.Wait()
	}

	return out
}

func (c *Client) enrichOne(ctx context.Context, flight models.Flight) (models.Flight, error) {
	waitCtx, cancel := context.WithTimeout(ctx, c.cfg.AcquireTimeout)
	err := c.limiter.Wait(waitCtx)
	cancel()
	if err != nil {
		return flight, fmt.Errorf("acquire rate limit slot: %w", err)
	}

	delay := c.cfg.BaseDelay
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return flight, ctx.Err()
			}
			delay *= 2
			if delay > c.cfg.MaxDelay {
				delay = c.cfg.MaxDelay
			}
		}

		update, err := c.provider.Fetch(ctx, flight)
		if err == nil {
			return update.Apply(flight), nil
		}
		lastErr = err
		c.logger.Debug().
			Err(err).
			Str("flight_id", flight.ID).
			Int("attempt", attempt).
			Msg("enrichment attempt failed")
	}

	return flight, lastErr
}
