package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-monitoring/internal/weather"
)

// history holds a time-ordered list of observations for a location.
type history struct {
	observations []weather.Observation
}

// MemoryStore is a concurrency-safe in-memory observation log and alert rule store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location name, value: history
	data map[string]*history

	rules []weather.AlertRule

	// retention configuration
	maxHistory int           // max number of observations per location
	maxAge     time.Duration // optional max age for observations
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory or maxAge is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*history),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Append records an observation and enforces retention. The write lock makes
// the append atomic for concurrent readers.
func (s *MemoryStore) Append(_ context.Context, obs weather.Observation) error {
	key := obs.Location.Name

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.data[key]
	if !ok {
		h = &history{}
		s.data[key] = h
	}

	// Overlapping cycles may append out of order; keep the slice sorted.
	n := len(h.observations)
	if n == 0 || !obs.Timestamp.Before(h.observations[n-1].Timestamp) {
		h.observations = append(h.observations, obs)
	} else {
		i := sort.Search(n, func(i int) bool {
			return h.observations[i].Timestamp.After(obs.Timestamp)
		})
		h.observations = append(h.observations, weather.Observation{})
		copy(h.observations[i+1:], h.observations[i:])
		h.observations[i] = obs
	}

	// Enforce retention by count.
	if s.maxHistory > 0 && len(h.observations) > s.maxHistory {
		over := len(h.observations) - s.maxHistory
		h.observations = append([]weather.Observation(nil), h.observations[over:]...)
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := sort.Search(len(h.observations), func(i int) bool {
			return !h.observations[i].Timestamp.Before(cutoff)
		})
		if i > 0 {
			h.observations = append([]weather.Observation(nil), h.observations[i:]...)
		}
	}
	return nil
}

// Latest returns the most recent observation for a location.
func (s *MemoryStore) Latest(_ context.Context, name string) (weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[name]
	if !ok || len(h.observations) == 0 {
		return weather.Observation{}, weather.Errorf(weather.KindNotFound, "no observations for %q", name)
	}
	return h.observations[len(h.observations)-1], nil
}

// QueryRange returns a copy of the observations between from and to (inclusive).
func (s *MemoryStore) QueryRange(_ context.Context, name string, from, to time.Time) ([]weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[name]
	if !ok {
		return []weather.Observation{}, nil
	}

	result := make([]weather.Observation, 0)
	for _, obs := range h.observations {
		if obs.Timestamp.Before(from) || obs.Timestamp.After(to) {
			continue
		}
		result = append(result, obs)
	}
	return result, nil
}

// Create stores a new alert rule.
func (s *MemoryStore) Create(_ context.Context, rule weather.AlertRule) (weather.AlertRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules = append(s.rules, rule)
	return rule, nil
}

// FindActiveByLocation returns active rules whose location name equals name exactly.
func (s *MemoryStore) FindActiveByLocation(_ context.Context, name string) ([]weather.AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []weather.AlertRule
	for _, r := range s.rules {
		if r.Active && r.Location.Name == name {
			result = append(result, r)
		}
	}
	return result, nil
}

// ListActive returns all active rules in creation order.
func (s *MemoryStore) ListActive(_ context.Context) ([]weather.AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]weather.AlertRule, 0, len(s.rules))
	for _, r := range s.rules {
		if r.Active {
			result = append(result, r)
		}
	}
	return result, nil
}
