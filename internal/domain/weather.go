package domain

import (
	"context"
	"time"
)

// ForecastPoint is a single hourly temperature forecast entry
type ForecastPoint struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperature"`
}

// TemperatureSource supplies current and forecast temperatures.
//
// Implementations report missing data instead of failing: Current returns
// ok == false and Forecast returns an empty slice when no data is available.
// Callers treat absence as "not enough information yet", never as an error.
type TemperatureSource interface {
	Current(ctx context.Context) (temperature float64, ok bool)
	Forecast(ctx context.Context, hours int) []ForecastPoint
}

// TemperatureReading wraps the current temperature for API responses
type TemperatureReading struct {
	Temperature float64   `json:"temperature"`
	Available   bool      `json:"available"`
	Timestamp   time.Time `json:"timestamp"`
}

// Hitech City coordinates used for weather lookups and the map centre
const (
	HitechCityLat = 17.4435
	HitechCityLon = 78.3772
)
