package live

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/i474232898/weather-monitoring/internal/weather"
)

var delhi = weather.Location{Name: "Delhi", Lat: 28.6139, Lon: 77.2090}

func TestHubDeliversToEverySubscriber(t *testing.T) {
	h := NewHub(4, zap.NewNop().Sugar())
	a, cancelA := h.Subscribe()
	defer cancelA()
	b, cancelB := h.Subscribe()
	defer cancelB()
	require.Equal(t, 2, h.Subscribers())

	obs := weather.Observation{ID: "1", Location: delhi, Temperature: 31}
	h.Publish(context.Background(), obs)

	for _, ch := range []<-chan Event{a, b} {
		ev := <-ch
		assert.Equal(t, EventWeatherUpdate, ev.Event)
		assert.Equal(t, obs, ev.Data)
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	h := NewHub(1, zap.NewNop().Sugar())
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(context.Background(), weather.Observation{ID: "1", Location: delhi})
	h.Publish(context.Background(), weather.Observation{ID: "2", Location: delhi})

	ev := <-ch
	assert.Equal(t, "1", ev.Data.ID)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %s", ev.Data.ID)
	default:
	}
}

func TestHubCancelUnsubscribes(t *testing.T) {
	h := NewHub(0, zap.NewNop().Sugar())
	ch, cancel := h.Subscribe()

	cancel()
	cancel()
	assert.Zero(t, h.Subscribers())

	_, open := <-ch
	assert.False(t, open)

	// publishing with no subscribers is a no-op
	h.Publish(context.Background(), weather.Observation{Location: delhi})
}

type countingPublisher struct{ n int }

func (c *countingPublisher) Publish(context.Context, weather.Observation) { c.n++ }

func TestMultiPublishesToAll(t *testing.T) {
	first, second := &countingPublisher{}, &countingPublisher{}
	Multi{first, second}.Publish(context.Background(), weather.Observation{Location: delhi})

	assert.Equal(t, 1, first.n)
	assert.Equal(t, 1, second.n)
}

func TestNewRedisPublisherRejectsBadURL(t *testing.T) {
	_, err := NewRedisPublisher("http://localhost:6379", "", zap.NewNop().Sugar())
	assert.Error(t, err)

	p, err := NewRedisPublisher("redis://localhost:6379/0", "", zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, "weather:updates", p.channel)
	assert.NoError(t, p.Close())
}
