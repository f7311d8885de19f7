// Package live broadcasts freshly recorded observations to connected clients.
package live

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/i474232898/weather-monitoring/internal/weather"
)

// EventWeatherUpdate is the event name sent for every recorded observation.
const EventWeatherUpdate = "weatherUpdate"

// Event is what subscribers receive.
type Event struct {
	Event string              `json:"event"`
	Data  weather.Observation `json:"data"`
}

// Hub fans observations out to in-process subscribers. A subscriber whose
// buffer is full misses the event; there is no replay.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[uint64]chan Event
	nextID      uint64
	buffer      int
	log         *zap.SugaredLogger
}

// NewHub creates a Hub whose subscriber channels hold buffer events.
func NewHub(buffer int, log *zap.SugaredLogger) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subscribers: make(map[uint64]chan Event),
		buffer:      buffer,
		log:         log,
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called to unregister; it closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subscribers[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of current subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish implements weather.Publisher.
func (h *Hub) Publish(_ context.Context, obs weather.Observation) {
	ev := Event{Event: EventWeatherUpdate, Data: obs}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.log.Debugw("live subscriber buffer full, dropping event", "subscriber", id, "location", obs.Location.Name)
		}
	}
}

// Multi publishes to every wrapped publisher in order.
type Multi []weather.Publisher

func (m Multi) Publish(ctx context.Context, obs weather.Observation) {
	for _, p := range m {
		p.Publish(ctx, obs)
	}
}
