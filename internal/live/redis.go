package live

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/i474232898/weather-monitoring/internal/weather"
)

// RedisPublisher publishes observation events on a Redis pub/sub channel so
// other instances can relay them to their clients.
type RedisPublisher struct {
	client  *redis.Client
	channel string
	log     *zap.SugaredLogger
}

// NewRedisPublisher connects using a redis:// URL.
func NewRedisPublisher(redisURL, channel string, log *zap.SugaredLogger) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if channel == "" {
		channel = "weather:updates"
	}
	return &RedisPublisher{
		client:  redis.NewClient(opts),
		channel: channel,
		log:     log,
	}, nil
}

// Publish implements weather.Publisher. Failures are logged only.
func (p *RedisPublisher) Publish(ctx context.Context, obs weather.Observation) {
	payload, err := json.Marshal(Event{Event: EventWeatherUpdate, Data: obs})
	if err != nil {
		p.log.Errorw("encode live event failed", "error", err)
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		p.log.Warnw("redis publish failed", "channel", p.channel, "location", obs.Location.Name, "error", err)
	}
}

// Close closes the Redis client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
