package weather

import (
	"context"
	"time"
)

// Reading is a single provider reading already converted to canonical units
// (Celsius, m/s, percent).
type Reading struct {
	Temperature float64
	FeelsLike   float64
	Condition   Condition
	Humidity    float64
	WindSpeed   float64
	Timestamp   time.Time
}

// Source abstracts an external weather provider (OpenWeatherMap, Open-Meteo, WeatherAPI).
type Source interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (Reading, error)
}

// ObservationStore is the append-only log of observations.
// Implementations must make appends atomic with respect to concurrent range reads.
type ObservationStore interface {
	Append(ctx context.Context, obs Observation) error
	// QueryRange returns observations for the named location with from <= ts <= to,
	// ascending by timestamp. No matches is an empty result, not an error.
	QueryRange(ctx context.Context, name string, from, to time.Time) ([]Observation, error)
	// Latest returns the newest observation, or a KindNotFound error.
	Latest(ctx context.Context, name string) (Observation, error)
}

// AlertStore holds alert rules.
type AlertStore interface {
	Create(ctx context.Context, rule AlertRule) (AlertRule, error)
	// FindActiveByLocation matches the stored location name exactly.
	FindActiveByLocation(ctx context.Context, name string) ([]AlertRule, error)
	ListActive(ctx context.Context) ([]AlertRule, error)
}

// Notifier delivers a message to one recipient, e.g. by email.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Publisher broadcasts freshly recorded observations to live subscribers.
// Delivery is best-effort.
type Publisher interface {
	Publish(ctx context.Context, obs Observation)
}
