package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-monitoring/internal/notify"
	"github.com/i474232898/weather-monitoring/internal/weather"
)

// DefaultLocations are the cities monitored when nothing else is configured.
var DefaultLocations = weather.Locations{
	{Name: "Delhi", Lat: 28.6139, Lon: 77.2090},
	{Name: "Mumbai", Lat: 19.0760, Lon: 72.8777},
	{Name: "Chennai", Lat: 13.0827, Lon: 80.2707},
	{Name: "Bangalore", Lat: 12.9716, Lon: 77.5946},
	{Name: "Kolkata", Lat: 22.5726, Lon: 88.3639},
	{Name: "Hyderabad", Lat: 17.3850, Lon: 78.4867},
}

type AppConfig struct {
	Provider          string
	OpenWeatherAPIKey string
	WeatherAPIKey     string

	// FetchInterval controls how often we collect data for every location.
	FetchInterval time.Duration
	// FetchTimeout bounds a single location's provider call, retries included.
	FetchTimeout time.Duration
	// NotifyTimeout bounds a single alert notification.
	NotifyTimeout time.Duration
	HTTPTimeout   time.Duration

	// Locations to track.
	Locations weather.Locations

	// In-memory store retention.
	StoreMaxHistory int           // max number of observations per location (0 = unlimited)
	StoreMaxAge     time.Duration // max age of observations (0 = unlimited)

	DatabaseURL  string
	RedisURL     string
	RedisChannel string
	SMTP         notify.SMTPConfig

	LogLevel  string
	LogFormat string

	Port string
}

// Load reads configuration from environment (and an optional .env file) with sensible defaults.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	cfg.Provider = getenvDefault("WEATHER_PROVIDER", "openweather")
	cfg.OpenWeatherAPIKey = getenv("OPENWEATHER_API_KEY")
	cfg.WeatherAPIKey = getenv("WEATHERAPI_API_KEY")

	if cfg.FetchInterval, err = getenvDuration("FETCH_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.FetchInterval <= 0 {
		return nil, fmt.Errorf("invalid FETCH_INTERVAL: must be positive")
	}
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.NotifyTimeout, err = getenvDuration("NOTIFY_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	// Store retention.
	if cfg.StoreMaxHistory, err = getenvInt("STORE_MAX_HISTORY", 0); err != nil {
		return nil, err
	}
	if cfg.StoreMaxAge, err = getenvDuration("STORE_MAX_AGE", 0); err != nil {
		return nil, err
	}

	cfg.DatabaseURL = getenv("DATABASE_URL")
	cfg.RedisURL = getenv("REDIS_URL")
	cfg.RedisChannel = getenvDefault("REDIS_CHANNEL", "weather:updates")

	smtpPort, err := getenvInt("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	cfg.SMTP = notify.SMTPConfig{
		Host:     getenv("SMTP_HOST"),
		Port:     smtpPort,
		Username: getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     getenvDefault("SMTP_FROM", getenv("SMTP_USERNAME")),
	}

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")
	cfg.Port = getenvDefault("PORT", "8080")

	if cfg.Locations, err = loadLocations(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadLocations reads LOCATIONS_FILE (YAML), then LOCATIONS ("Name:lat:lon,..."),
// falling back to DefaultLocations.
func loadLocations() (weather.Locations, error) {
	var (
		locs weather.Locations
		err  error
	)
	switch {
	case getenv("LOCATIONS_FILE") != "":
		locs, err = readLocationsFile(getenv("LOCATIONS_FILE"))
	case getenv("LOCATIONS") != "":
		locs, err = ParseLocations(getenv("LOCATIONS"))
	default:
		locs = append(weather.Locations(nil), DefaultLocations...)
	}
	if err != nil {
		return nil, err
	}
	if err := validateLocations(locs); err != nil {
		return nil, err
	}
	return locs, nil
}

func readLocationsFile(path string) (weather.Locations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read LOCATIONS_FILE: %w", err)
	}
	var doc struct {
		Locations weather.Locations `yaml:"locations"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse LOCATIONS_FILE: %w", err)
	}
	return doc.Locations, nil
}

// ParseLocations parses "Name:lat:lon" entries separated by commas.
func ParseLocations(s string) (weather.Locations, error) {
	var locs weather.Locations
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid location %q: want Name:lat:lon", entry)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude in %q: %w", entry, err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude in %q: %w", entry, err)
		}
		locs = append(locs, weather.Location{Name: strings.TrimSpace(parts[0]), Lat: lat, Lon: lon})
	}
	return locs, nil
}

func validateLocations(locs weather.Locations) error {
	if len(locs) == 0 {
		return fmt.Errorf("no locations configured")
	}
	seen := make(map[string]bool, len(locs))
	for _, l := range locs {
		if l.Name == "" {
			return fmt.Errorf("location with empty name")
		}
		if l.Lat < -90 || l.Lat > 90 || l.Lon < -180 || l.Lon > 180 {
			return fmt.Errorf("location %q has out of range coordinates", l.Name)
		}
		key := strings.ToLower(l.Name)
		if seen[key] {
			return fmt.Errorf("duplicate location %q", l.Name)
		}
		seen[key] = true
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
