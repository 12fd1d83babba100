package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skylinkhq/flightsearch/internal/criteria"
	"github.com/skylinkhq/flightsearch/internal/models"
)

// Memory is an in-memory implementation of both repository interfaces,
// seeded from a JSON fixture. It backs local runs and tests; production
// deployments swap in adapters over the real inventory store.
type Memory struct {
	mu      sync.RWMutex
	flights []models.Flight
	seats   map[string][]models.SeatAvailability
}

type fixture struct {
	Flights []models.Flight           `json:"flights"`
	Seats   []models.SeatAvailability `json:"seats"`
}

func NewMemory() *Memory {
	return &Memory{
		seats: make(map[string][]models.SeatAvailability),
	}
}

// LoadFile seeds the repository from a JSON fixture file holding flight and
// seat records. Flights without an id get an opaque one assigned.
func (m *Memory) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fixture: %w", err)
	}

	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return fmt.Errorf("parse fixture: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range fx.Flights {
		if f.ID == "" {
			f.ID = uuid.NewString()
		}
		m.flights = append(m.flights, f)
	}
	for _, s := range fx.Seats {
		m.seats[s.FlightID] = append(m.seats[s.FlightID], s)
	}
	return nil
}

func (m *Memory) AddFlights(flights ...models.Flight) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flights = append(m.flights, flights...)
}

func (m *Memory) AddSeats(records ...models.SeatAvailability) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.seats[r.FlightID] = append(m.seats[r.FlightID], r)
	}
}

func (m *Memory) FindByCriteria(ctx context.Context, crit criteria.Criteria) ([]models.Flight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	day := crit.DepartureDate().UTC().Truncate(24 * time.Hour)
	result := make([]models.Flight, 0)
	for _, f := range m.flights {
		if !strings.EqualFold(f.Origin, crit.Origin()) || !strings.EqualFold(f.Destination, crit.Destination()) {
			continue
		}
		if !f.DepartureTime.UTC().Truncate(24 * time.Hour).Equal(day) {
			continue
		}
		result = append(result, f)
	}
	return result, nil
}

func (m *Memory) FindByRoute(ctx context.Context, origin, destination string) ([]models.Flight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Flight, 0)
	for _, f := range m.flights {
		if strings.EqualFold(f.Origin, origin) && strings.EqualFold(f.Destination, destination) {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *Memory) FindByOrigin(ctx context.Context, origin string) ([]models.Flight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Flight, 0)
	for _, f := range m.flights {
		if strings.EqualFold(f.Origin, origin) {
			result = append(result, f)
		}
	}
	return result, nil
}

func (m *Memory) FindByFlightIDs(ctx context.Context, ids []string) (map[string][]models.SeatAvailability, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string][]models.SeatAvailability, len(ids))
	for _, id := range ids {
		if records, ok := m.seats[id]; ok {
			result[id] = append([]models.SeatAvailability(nil), records...)
		}
	}
	return result, nil
}

var (
	_ FlightRepository           = (*Memory)(nil)
	_ SeatAvailabilityRepository = (*Memory)(nil)
)
