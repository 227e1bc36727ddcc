package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tastebud/tastebud-api/config"
	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/internal/repository"
	apperrors "github.com/tastebud/tastebud-api/pkg/errors"
	"github.com/tastebud/tastebud-api/pkg/logger"
	"github.com/tastebud/tastebud-api/pkg/metrics"
)

var knownDietTypes = map[string]bool{
	"diabetic":    true,
	"keto":        true,
	"paleo":       true,
	"low_carb":    true,
	"pescatarian": true,
}

// PreferencesService stores diners' permanent filters
type PreferencesService struct {
	preferences repository.PreferencesDataSource
	config      *config.Config
}

// NewPreferencesService creates a new preferences service instance
func NewPreferencesService(preferences repository.PreferencesDataSource, cfg *config.Config) *PreferencesService {
	return &PreferencesService{
		preferences: preferences,
		config:      cfg,
	}
}

// GetFilters returns the user's saved permanent filters. Users who never
// saved preferences, and reads that fail, get the permissive defaults so the
// discovery surface keeps working.
func (s *PreferencesService) GetFilters(ctx context.Context, userID string) (*models.PermanentFilters, error) {
	filters, err := s.preferences.GetPreferences(ctx, userID)
	if err != nil {
		logger.Debug("No stored preferences, returning defaults",
			zap.String("user_id", userID),
			zap.Error(err))
		return models.DefaultPermanentFilters(), nil
	}

	return filters, nil
}

// SaveFilters validates and stores the user's permanent filters, replacing
// any previous version
func (s *PreferencesService) SaveFilters(ctx context.Context, userID string, filters *models.PermanentFilters) error {
	if filters == nil {
		return apperrors.InvalidInputError("filters", "filters payload is required")
	}

	if !filters.Diet.Valid() {
		metrics.PreferenceUpdates.WithLabelValues("invalid").Inc()
		return apperrors.InvalidInputError("diet", "unknown diet preference")
	}

	for _, dietType := range filters.DietTypes {
		if !knownDietTypes[strings.ToLower(dietType)] {
			metrics.PreferenceUpdates.WithLabelValues("invalid").Inc()
			return apperrors.InvalidInputError("dietTypes", "unknown diet type: "+dietType)
		}
	}

	if err := s.preferences.UpsertPreferences(ctx, userID, filters); err != nil {
		metrics.PreferenceUpdates.WithLabelValues("error").Inc()
		logger.Error("Failed to save preferences",
			zap.String("user_id", userID),
			zap.Error(err))
		return apperrors.InternalError("failed to save preferences")
	}

	metrics.PreferenceUpdates.WithLabelValues("success").Inc()
	logger.Info("Preferences saved", zap.String("user_id", userID))

	return nil
}
