package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/bobby-s-dev/trip-planner/internal/apperr"
	"github.com/bobby-s-dev/trip-planner/internal/models"
)

// TripService holds trip operations that span more than one record type.
type TripService struct {
	store  RecordStore
	logger *zap.Logger
}

func NewTripService(store RecordStore, logger *zap.Logger) *TripService {
	return &TripService{store: store, logger: logger}
}

// Delete removes a trip and the expenses attached to it. It returns the
// number of expenses removed.
func (s *TripService) Delete(ctx context.Context, id string) (int64, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0, apperr.Validation("trip id is required")
	}

	if _, err := s.store.FindTripByID(ctx, id); err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return 0, apperr.NotFound("trip not found")
		}
		return 0, apperr.Internal("failed to load trip", err)
	}

	removed, err := s.store.DeleteExpensesByTrip(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete trip expenses", zap.String("trip_id", id), zap.Error(err))
		return 0, apperr.Internal("failed to delete trip expenses", err)
	}

	if err := s.store.DeleteTrip(ctx, id); err != nil {
		if errors.Is(err, models.ErrRecordNotFound) {
			return removed, apperr.NotFound("trip not found")
		}
		s.logger.Error("Failed to delete trip", zap.String("trip_id", id), zap.Error(err))
		return removed, apperr.Internal("failed to delete trip", err)
	}

	s.logger.Info("Trip deleted",
		zap.String("trip_id", id),
		zap.Int64("expenses_removed", removed))

	return removed, nil
}
