package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-monitoring/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// DefaultBackoff retries a failed request up to three times.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errNoHTTPClient = errors.New("http client not configured")
)

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// getJSON performs a GET with retries and a circuit breaker and decodes the
// response body into out. Transport failures come back as
// KindSourceUnavailable, undecodable bodies as KindSourceMalformed.
func getJSON(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	rawURL string,
	out any,
) error {
	if cfg.Client == nil {
		return weather.Wrap(weather.KindSourceUnavailable, errNoHTTPClient, "provider misconfigured")
	}

	var body []byte
	operation := func() error {
		result, err := cb.Execute(func() (interface{}, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return nil, backoff.Permanent(err)
			}
			resp, err := cfg.Client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()

			// Handle rate limiting and server errors explicitly.
			if resp.StatusCode == http.StatusTooManyRequests {
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				// Client errors will not clear on retry.
				return nil, backoff.Permanent(fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode))
			}
			return io.ReadAll(resp.Body)
		})
		if err != nil {
			// If circuit is open, stop retrying immediately.
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = result.([]byte)
		return nil
	}

	if err := backoff.Retry(operation, newBackOff(ctx, cfg.Backoff)); err != nil {
		return weather.Wrap(weather.KindSourceUnavailable, err, "request failed")
	}

	if err := json.Unmarshal(body, out); err != nil {
		return weather.Wrap(weather.KindSourceMalformed, err, "decode payload")
	}
	return nil
}

func newBackOff(ctx context.Context, cfg BackoffConfig) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		eb.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		eb.MaxInterval = cfg.MaxInterval
	}
	// The caller's context bounds the total time.
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, cfg.MaxRetries), ctx)
}

// kelvinToCelsius converts an absolute temperature to Celsius.
func kelvinToCelsius(k float64) float64 {
	return k - 273.15
}

// fahrenheitToCelsius converts a Fahrenheit temperature to Celsius.
func fahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// kphToMS converts km/h to m/s.
func kphToMS(kph float64) float64 {
	return kph / 3.6
}

func readingTime(unix int64) time.Time {
	if unix <= 0 {
		return time.Now().UTC()
	}
	return time.Unix(unix, 0).UTC()
}
