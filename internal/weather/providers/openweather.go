package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-monitoring/internal/weather"
)

// OpenWeatherProvider implements weather.Source for OpenWeatherMap.
// It requests standard units (Kelvin) and converts to Celsius.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenWeatherProvider(client *http.Client, apiKey string) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org/data/2.5/weather",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openweather"),
	}
}

// WithBaseURL points the provider at another endpoint (tests, proxies).
func (p *OpenWeatherProvider) WithBaseURL(u string) *OpenWeatherProvider {
	p.baseURL = u
	return p
}

// WithBackoff overrides the retry policy.
func (p *OpenWeatherProvider) WithBackoff(b BackoffConfig) *OpenWeatherProvider {
	p.httpCfg.Backoff = b
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type openWeatherPayload struct {
	Dt   int64 `json:"dt"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike float64  `json:"feels_like"`
		Humidity  float64  `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

func (p *OpenWeatherProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, weather.Errorf(weather.KindSourceUnavailable, "openweather api key is not configured")
	}

	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", loc.Lat))
	values.Set("lon", fmt.Sprintf("%f", loc.Lon))
	values.Set("appid", p.apiKey)
	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())

	var payload openWeatherPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.Reading{}, err
	}
	if payload.Main == nil || payload.Main.Temp == nil {
		return weather.Reading{}, weather.Errorf(weather.KindSourceMalformed, "openweather payload has no main.temp")
	}

	cond := weather.ConditionClear
	if len(payload.Weather) > 0 && payload.Weather[0].Main != "" {
		cond = weather.Condition(payload.Weather[0].Main)
	}

	return weather.Reading{
		Temperature: kelvinToCelsius(*payload.Main.Temp),
		FeelsLike:   kelvinToCelsius(payload.Main.FeelsLike),
		Condition:   cond,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		Timestamp:   readingTime(payload.Dt),
	}, nil
}
