package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bobby-s-dev/trip-planner/internal/apperr"
	"github.com/bobby-s-dev/trip-planner/internal/models"
	"go.uber.org/zap"
)

const openMeteoSource = "open-meteo"

// OpenMeteoClient is the keyless weather provider. Place names are resolved
// to coordinates through the Open-Meteo geocoding API first.
type OpenMeteoClient struct {
	*BaseClient
	baseURL      string
	geocodingURL string
}

type openMeteoGeocodingResponse struct {
	Results []struct {
		Name        string  `json:"name"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		CountryCode string  `json:"country_code"`
	} `json:"results"`
}

type OpenMeteoCurrentResponse struct {
	Current struct {
		Time                string  `json:"time"`
		Temperature2M       float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		RelativeHumidity2M  float64 `json:"relative_humidity_2m"`
		WindSpeed10M        float64 `json:"wind_speed_10m"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
}

func NewOpenMeteoClient(baseURL, geocodingURL string, config ClientConfig, logger *zap.Logger) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1"
	}
	if geocodingURL == "" {
		geocodingURL = "https://geocoding-api.open-meteo.com/v1"
	}
	return &OpenMeteoClient{
		BaseClient:   NewBaseClient(openMeteoSource, config, logger),
		baseURL:      strings.TrimRight(baseURL, "/"),
		geocodingURL: strings.TrimRight(geocodingURL, "/"),
	}
}

func (c *OpenMeteoClient) CurrentWeather(ctx context.Context, place string) (*models.WeatherSnapshot, error) {
	geoURL := fmt.Sprintf("%s/search?name=%s&count=1&language=en&format=json",
		c.geocodingURL, url.QueryEscape(place))

	data, err := c.Get(ctx, geoURL)
	if err != nil {
		return nil, c.mapError(err)
	}

	var geo openMeteoGeocodingResponse
	if err := json.Unmarshal(data, &geo); err != nil {
		return nil, apperr.Provider(openMeteoSource, "failed to fetch weather", "bad_data", err)
	}
	if len(geo.Results) == 0 {
		return nil, apperr.NotFound("place not found")
	}
	loc := geo.Results[0]

	forecastURL := fmt.Sprintf("%s/forecast?latitude=%.4f&longitude=%.4f&current=temperature_2m,apparent_temperature,relative_humidity_2m,wind_speed_10m,weather_code&wind_speed_unit=ms",
		c.baseURL, loc.Latitude, loc.Longitude)

	data, err = c.Get(ctx, forecastURL)
	if err != nil {
		return nil, c.mapError(err)
	}

	var response OpenMeteoCurrentResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, apperr.Provider(openMeteoSource, "failed to fetch weather", "bad_data", err)
	}

	return &models.WeatherSnapshot{
		Place:       loc.Name,
		Country:     strings.ToUpper(loc.CountryCode),
		Temperature: response.Current.Temperature2M,
		FeelsLike:   response.Current.ApparentTemperature,
		Humidity:    response.Current.RelativeHumidity2M,
		WindSpeed:   response.Current.WindSpeed10M,
		Description: weatherCodeToDescription(response.Current.WeatherCode),
		Icon:        weatherCodeToIcon(response.Current.WeatherCode),
		Source:      openMeteoSource,
	}, nil
}

func (c *OpenMeteoClient) mapError(err error) error {
	if StatusCode(err) == http.StatusNotFound {
		return apperr.NotFound("place not found")
	}
	return apperr.Provider(openMeteoSource, "failed to fetch weather", "", err)
}

// WMO Weather interpretation codes
var weatherCodes = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow fall",
	73: "Moderate snow fall",
	75: "Heavy snow fall",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

func weatherCodeToDescription(code int) string {
	if desc, ok := weatherCodes[code]; ok {
		return desc
	}
	return "Unknown"
}

// weatherCodeToIcon maps WMO codes onto OpenWeatherMap icon tokens so both
// providers produce the same icon vocabulary.
func weatherCodeToIcon(code int) string {
	switch {
	case code == 0:
		return "01d"
	case code <= 3:
		return "02d"
	case code <= 48:
		return "50d"
	case code <= 67:
		return "10d"
	case code <= 77:
		return "13d"
	case code <= 82:
		return "09d"
	case code <= 86:
		return "13d"
	default:
		return "11d"
	}
}
