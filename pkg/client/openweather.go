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

const openWeatherSource = "openweathermap"

// placeholderKeys are values shipped in sample .env files.
var placeholderKeys = map[string]bool{
	"your_api_key":             true,
	"your_api_key_here":        true,
	"your_openweather_api_key": true,
	"changeme":                 true,
	"replace_me":               true,
}

// CredentialConfigured reports whether key looks like a real credential.
func CredentialConfigured(key string) bool {
	key = strings.TrimSpace(key)
	return key != "" && !placeholderKeys[strings.ToLower(key)]
}

type OpenWeatherClient struct {
	*BaseClient
	apiKey  string
	baseURL string
}

type OpenWeatherCurrentResponse struct {
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Name string `json:"name"`
}

func NewOpenWeatherClient(apiKey, baseURL string, config ClientConfig, logger *zap.Logger) *OpenWeatherClient {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}
	return &OpenWeatherClient{
		BaseClient: NewBaseClient(openWeatherSource, config, logger),
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// CurrentWeather looks up the current conditions for place in metric units.
// The call is never attempted without a usable credential.
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, place string) (*models.WeatherSnapshot, error) {
	if !CredentialConfigured(c.apiKey) {
		return nil, apperr.Configuration(openWeatherSource, "weather credential is not configured")
	}

	endpoint := fmt.Sprintf("%s/weather?q=%s&appid=%s&units=metric",
		c.baseURL, url.QueryEscape(place), url.QueryEscape(c.apiKey))

	data, err := c.Get(ctx, endpoint)
	if err != nil {
		switch StatusCode(err) {
		case http.StatusUnauthorized:
			return nil, apperr.Configuration(openWeatherSource, "invalid credential")
		case http.StatusNotFound:
			return nil, apperr.NotFound("place not found")
		default:
			return nil, apperr.Provider(openWeatherSource, "failed to fetch weather", "", err)
		}
	}

	var response OpenWeatherCurrentResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, apperr.Provider(openWeatherSource, "failed to fetch weather", "bad_data", err)
	}

	weather := &models.WeatherSnapshot{
		Place:       response.Name,
		Country:     response.Sys.Country,
		Temperature: response.Main.Temp,
		FeelsLike:   response.Main.FeelsLike,
		Humidity:    response.Main.Humidity,
		WindSpeed:   response.Wind.Speed,
		Source:      openWeatherSource,
	}
	if weather.Place == "" {
		weather.Place = place
	}
	if len(response.Weather) > 0 {
		weather.Description = response.Weather[0].Description
		weather.Icon = response.Weather[0].Icon
	}

	return weather, nil
}
