package weather

import (
	"strings"
	"time"
)

// Condition is a categorical weather label using the OpenWeather "main" vocabulary.
// Providers with a different vocabulary map into these values.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionRain         Condition = "Rain"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionSnow         Condition = "Snow"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionMist         Condition = "Mist"
	ConditionUnknown      Condition = "Unknown"
)

// Location is a named, fixed point we monitor. Locations come from static
// configuration and never change at runtime.
type Location struct {
	Name string  `json:"name" yaml:"name"`
	Lat  float64 `json:"lat" yaml:"lat"`
	Lon  float64 `json:"lon" yaml:"lon"`
}

// Locations is the configured set of monitored points.
type Locations []Location

// Find returns the configured location whose name matches name, ignoring case.
func (ls Locations) Find(name string) (Location, bool) {
	name = strings.TrimSpace(name)
	for _, l := range ls {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return Location{}, false
}

// Observation is one reading for a location. Temperatures are in Celsius,
// wind speed in m/s and humidity in percent. Timestamp is always UTC.
type Observation struct {
	ID          string    `json:"id"`
	Location    Location  `json:"city"`
	Temperature float64   `json:"temp"`
	FeelsLike   float64   `json:"feels_like"`
	Condition   Condition `json:"main"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Timestamp   time.Time `json:"timestamp"`
}

// DailyAggregate summarises one location's observations for one UTC calendar day.
// It is derived on every request and never stored.
type DailyAggregate struct {
	Date              time.Time `json:"timestamp"`
	AverageTemp       float64   `json:"averageTemp"`
	MaxTemp           float64   `json:"maxTemp"`
	MinTemp           float64   `json:"minTemp"`
	DominantCondition Condition `json:"dominantCondition"`
	Count             int       `json:"count"`
}

// Operator is the comparison an alert rule applies to the observed temperature.
type Operator string

const (
	OperatorAbove Operator = "above"
	OperatorBelow Operator = "below"
)

// Valid reports whether o is one of the supported operators.
func (o Operator) Valid() bool {
	return o == OperatorAbove || o == OperatorBelow
}

// Matches reports whether temp crosses threshold. Both comparisons are strict.
func (o Operator) Matches(temp, threshold float64) bool {
	switch o {
	case OperatorAbove:
		return temp > threshold
	case OperatorBelow:
		return temp < threshold
	default:
		return false
	}
}

// AlertRule is a standing request to be emailed when a location's temperature
// crosses a threshold. Firing never changes the rule.
type AlertRule struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Location  Location  `json:"city"`
	Operator  Operator  `json:"condition"`
	Threshold float64   `json:"threshold"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}
