package models

import (
	"time"
)

// WeatherSnapshot is a normalized point-in-time weather lookup for one place.
// It is produced per request and never stored.
type WeatherSnapshot struct {
	Place       string    `json:"place"`
	Country     string    `json:"country,omitempty"`
	Temperature float64   `json:"temperature"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"wind_speed"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	RetrievedAt time.Time `json:"retrieved_at"`
	Source      string    `json:"source"`
}
