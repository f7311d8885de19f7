package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-monitoring/internal/weather"
)

// OpenMeteoProvider implements weather.Source for Open-Meteo. No API key is needed.
// Readings are requested in Fahrenheit and km/h and converted.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteoProvider(client *http.Client) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: "https://api.open-meteo.com/v1/forecast",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openmeteo"),
	}
}

// WithBaseURL points the provider at another endpoint (tests, proxies).
func (p *OpenMeteoProvider) WithBaseURL(u string) *OpenMeteoProvider {
	p.baseURL = u
	return p
}

// WithBackoff overrides the retry policy.
func (p *OpenMeteoProvider) WithBackoff(b BackoffConfig) *OpenMeteoProvider {
	p.httpCfg.Backoff = b
	return p
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoPayload struct {
	Current *struct {
		Time                int64    `json:"time"`
		Temperature         *float64 `json:"temperature_2m"`
		ApparentTemperature float64  `json:"apparent_temperature"`
		RelativeHumidity    float64  `json:"relative_humidity_2m"`
		WindSpeed           float64  `json:"wind_speed_10m"`
		WeatherCode         int      `json:"weather_code"`
	} `json:"current"`
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Reading, error) {
	values := url.Values{}
	values.Set("latitude", fmt.Sprintf("%f", loc.Lat))
	values.Set("longitude", fmt.Sprintf("%f", loc.Lon))
	values.Set("current", "temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,weather_code")
	values.Set("temperature_unit", "fahrenheit")
	values.Set("wind_speed_unit", "kmh")
	values.Set("timeformat", "unixtime")
	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())

	var payload openMeteoPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.Reading{}, err
	}
	if payload.Current == nil || payload.Current.Temperature == nil {
		return weather.Reading{}, weather.Errorf(weather.KindSourceMalformed, "openmeteo payload has no current.temperature_2m")
	}

	c := payload.Current
	return weather.Reading{
		Temperature: fahrenheitToCelsius(*c.Temperature),
		FeelsLike:   fahrenheitToCelsius(c.ApparentTemperature),
		Condition:   mapOpenMeteoCondition(c.WeatherCode),
		Humidity:    c.RelativeHumidity,
		WindSpeed:   kphToMS(c.WindSpeed),
		Timestamp:   readingTime(c.Time),
	}, nil
}

// mapOpenMeteoCondition maps WMO weather codes (simplified).
func mapOpenMeteoCondition(code int) weather.Condition {
	switch {
	case code == 0:
		return weather.ConditionClear
	case code >= 1 && code <= 3:
		return weather.ConditionClouds
	case code == 45 || code == 48:
		return weather.ConditionMist
	case code >= 51 && code <= 57:
		return weather.ConditionDrizzle
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionThunderstorm
	default:
		return weather.ConditionUnknown
	}
}
