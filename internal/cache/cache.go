// Package cache stores search result snapshots keyed by normalized
// criteria, with a heuristic TTL chosen per entry at write time.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/skylinkhq/flightsearch/internal/criteria"
	"github.com/skylinkhq/flightsearch/internal/models"
)

// ErrNotFound is returned by stores when a key does not exist or has
// expired.
var ErrNotFound = errors.New("cache: key not found")

// Store is the raw bytes-with-TTL backing store. Implementations: Redis,
// in-memory, no-op.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// TTLPolicy selects an expiry per entry, evaluated at write time with the
// first matching rule winning:
//  1. result count >= PopularThreshold: PopularTTL (high-volume routes
//     churn proportionally less per unit time)
//  2. departure within NearTermWindow of now: NearTermTTL (near-term
//     inventory is volatile)
//  3. otherwise DefaultTTL
type TTLPolicy struct {
	PopularThreshold int
	PopularTTL       time.Duration
	NearTermWindow   time.Duration
	NearTermTTL      time.Duration
	DefaultTTL       time.Duration
}

func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		PopularThreshold: 100,
		PopularTTL:       time.Hour,
		NearTermWindow:   24 * time.Hour,
		NearTermTTL:      5 * time.Minute,
		DefaultTTL:       10 * time.Minute,
	}
}

func (p TTLPolicy) TTLFor(crit criteria.Criteria, resultCount int, now time.Time) time.Duration {
	if resultCount >= p.PopularThreshold {
		return p.PopularTTL
	}
	if crit.DepartureDate().Sub(now) <= p.NearTermWindow {
		return p.NearTermTTL
	}
	return p.DefaultTTL
}

// ResultCache is the criteria-keyed itinerary cache. Entries are immutable
// snapshots; concurrent writers of the same key simply overwrite each other,
// which is harmless.
type ResultCache struct {
	store  Store
	policy TTLPolicy
	logger zerolog.Logger
	now    func() time.Time
}

func New(store Store, policy TTLPolicy, logger zerolog.Logger) *ResultCache {
	return &ResultCache{
		store:  store,
		policy: policy,
		logger: logger.With().Str("component", "result_cache").Logger(),
		now:    time.Now,
	}
}

// Get returns the cached snapshot for the criteria. Any store error or
// decode failure counts as a miss.
func (c *ResultCache) Get(ctx context.Context, crit criteria.Criteria) ([]models.Itinerary, bool) {
	key := crit.CacheKey()

	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Debug().Err(err).Str("cache_key", key).Msg("cache read failed")
		}
		return nil, false
	}

	var itineraries []models.Itinerary
	if err := json.Unmarshal(data, &itineraries); err != nil {
		c.logger.Warn().Err(err).Str("cache_key", key).Msg("discarding undecodable cache entry")
		return nil, false
	}
	return itineraries, true
}

// Put writes a snapshot with a policy-selected TTL. Writes are advisory:
// failures are logged and swallowed because the search already succeeded
// and caching is a pure optimization.
func (c *ResultCache) Put(ctx context.Context, crit criteria.Criteria, itineraries []models.Itinerary) {
	key := crit.CacheKey()

	data, err := json.Marshal(itineraries)
	if err != nil {
		c.logger.Error().Err(err).Str("cache_key", key).Msg("failed to encode cache entry")
		return
	}

	ttl := c.policy.TTLFor(crit, len(itineraries), c.now())
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.Error().Err(err).Str("cache_key", key).Msg("cache write failed")
	}
}

// Invalidate evicts the entry for the criteria. Exposed for manual
// eviction; normal operation relies purely on TTL expiry.
func (c *ResultCache) Invalidate(ctx context.Context, crit criteria.Criteria) error {
	return c.store.Del(ctx, crit.CacheKey())
}
