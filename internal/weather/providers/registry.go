package providers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/i474232898/weather-monitoring/internal/weather"
)

// Keys holds provider API credentials.
type Keys struct {
	OpenWeather string
	WeatherAPI  string
}

// New returns the Source registered under name.
func New(name string, client *http.Client, keys Keys) (weather.Source, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "openweather", "openweathermap":
		return NewOpenWeatherProvider(client, keys.OpenWeather), nil
	case "openmeteo":
		return NewOpenMeteoProvider(client), nil
	case "weatherapi":
		return NewWeatherAPIProvider(client, keys.WeatherAPI), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", name)
	}
}
