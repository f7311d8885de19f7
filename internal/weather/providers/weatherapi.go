package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-monitoring/internal/common"
	"github.com/i474232898/weather-monitoring/internal/weather"
)

// WeatherAPIProvider implements weather.Source for WeatherAPI.com.
// It reads the Fahrenheit fields and converts them.
type WeatherAPIProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewWeatherAPIProvider(client *http.Client, apiKey string) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:    "weatherapi",
		apiKey:  apiKey,
		baseURL: "https://api.weatherapi.com/v1/current.json",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("weatherapi"),
	}
}

// WithBaseURL points the provider at another endpoint (tests, proxies).
func (p *WeatherAPIProvider) WithBaseURL(u string) *WeatherAPIProvider {
	p.baseURL = u
	return p
}

// WithBackoff overrides the retry policy.
func (p *WeatherAPIProvider) WithBackoff(b BackoffConfig) *WeatherAPIProvider {
	p.httpCfg.Backoff = b
	return p
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

type weatherAPIPayload struct {
	Current *struct {
		LastUpdatedEpoch int64    `json:"last_updated_epoch"`
		TempF            *float64 `json:"temp_f"`
		FeelsLikeF       float64  `json:"feelslike_f"`
		Humidity         float64  `json:"humidity"`
		WindKph          float64  `json:"wind_kph"`
		Condition        struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (p *WeatherAPIProvider) Fetch(ctx context.Context, loc weather.Location) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, weather.Errorf(weather.KindSourceUnavailable, "weatherapi api key is not configured")
	}

	values := url.Values{}
	values.Set("key", p.apiKey)
	// WeatherAPI uses "q" for location; it accepts "lat,lon".
	values.Set("q", fmt.Sprintf("%f,%f", loc.Lat, loc.Lon))
	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())

	var payload weatherAPIPayload
	if err := getJSON(ctx, p.httpCfg, p.circuit, u, &payload); err != nil {
		return weather.Reading{}, err
	}
	if payload.Current == nil || payload.Current.TempF == nil {
		return weather.Reading{}, weather.Errorf(weather.KindSourceMalformed, "weatherapi payload has no current.temp_f")
	}

	c := payload.Current
	return weather.Reading{
		Temperature: fahrenheitToCelsius(*c.TempF),
		FeelsLike:   fahrenheitToCelsius(c.FeelsLikeF),
		Condition:   mapWeatherAPICondition(c.Condition.Text),
		Humidity:    c.Humidity,
		WindSpeed:   kphToMS(c.WindKph),
		Timestamp:   readingTime(c.LastUpdatedEpoch),
	}, nil
}

func mapWeatherAPICondition(text string) weather.Condition {
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.ContainsAnyFold(text, "thunder", "storm"):
		return weather.ConditionThunderstorm
	case common.ContainsAnyFold(text, "drizzle"):
		return weather.ConditionDrizzle
	case common.ContainsAnyFold(text, "rain", "shower"):
		return weather.ConditionRain
	case common.ContainsAnyFold(text, "snow", "sleet", "blizzard", "ice pellets"):
		return weather.ConditionSnow
	case common.ContainsAnyFold(text, "mist", "fog"):
		return weather.ConditionMist
	case common.ContainsAnyFold(text, "cloud", "overcast"):
		return weather.ConditionClouds
	case common.ContainsAnyFold(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
