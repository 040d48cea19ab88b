package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/trip-planner/internal/apperr"
	"github.com/bobby-s-dev/trip-planner/internal/models"
)

// WeatherProvider looks up current conditions for a place.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, place string) (*models.WeatherSnapshot, error)
}

// WeatherService normalizes provider lookups into snapshots.
type WeatherService struct {
	provider WeatherProvider
	logger   *zap.Logger
	now      func() time.Time
}

func NewWeatherService(provider WeatherProvider, logger *zap.Logger) *WeatherService {
	return &WeatherService{
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// Fetch returns a fresh snapshot for place.
func (s *WeatherService) Fetch(ctx context.Context, place string) (models.WeatherSnapshot, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return models.WeatherSnapshot{}, apperr.Validation("city is required")
	}

	snapshot, err := s.provider.CurrentWeather(ctx, place)
	if err != nil {
		s.logger.Warn("Weather lookup failed",
			zap.String("city", place),
			zap.Error(err))
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return models.WeatherSnapshot{}, err
		}
		return models.WeatherSnapshot{}, apperr.Provider("weather", "failed to fetch weather", "", err)
	}

	result := *snapshot
	result.RetrievedAt = s.now().UTC()
	return result, nil
}
