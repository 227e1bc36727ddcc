package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/pkg/logger"
	"github.com/tastebud/tastebud-api/pkg/metrics"
)

// GetPreferences fetches the user's permanent filters. Returns pgx.ErrNoRows
// wrapped when the user has never saved preferences.
func (c *Client) GetPreferences(ctx context.Context, userID string) (*models.PermanentFilters, error) {
	start := time.Now()
	operation := "getPreferences"

	var raw []byte
	err := c.pool.QueryRow(ctx,
		"SELECT filters FROM user_preferences WHERE user_id = $1",
		userID).Scan(&raw)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if err == pgx.ErrNoRows {
			recordMetrics(operation, "not_found", duration)
			logger.LogAPICall("postgres", operation, "not_found", duration)
			return nil, fmt.Errorf("preferences not found: %w", err)
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to fetch preferences: %w", err)
	}

	var filters models.PermanentFilters
	if err := json.Unmarshal(raw, &filters); err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to decode preferences: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration)

	return &filters, nil
}

// UpsertPreferences stores the user's permanent filters, replacing any
// previous version
func (c *Client) UpsertPreferences(ctx context.Context, userID string, filters *models.PermanentFilters) error {
	start := time.Now()
	operation := "upsertPreferences"

	raw, err := json.Marshal(filters)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	_, err = c.pool.Exec(ctx, `
		INSERT INTO user_preferences (user_id, filters)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET filters = EXCLUDED.filters, updated_at = now()
	`, userID, raw)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.String("user_id", userID))

	return nil
}
