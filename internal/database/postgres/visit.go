package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/pkg/logger"
	"github.com/tastebud/tastebud-api/pkg/metrics"
)

// CreateVisit records one completed rating-flow submission: the visit row and
// its dish opinions in a single transaction. Either everything lands or
// nothing does. Returns the new visit ID.
func (c *Client) CreateVisit(ctx context.Context, submission *models.RatingSubmission) (string, error) {
	start := time.Now()
	operation := "createVisit"

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var visitID string
	err = tx.QueryRow(ctx, `
		INSERT INTO user_visits (user_id, restaurant_id, is_first_visit, points_total)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, submission.UserID, submission.RestaurantID, submission.IsFirstVisit, submission.Points.Total).Scan(&visitID)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return "", fmt.Errorf("failed to insert visit: %w", err)
	}

	for _, rating := range submission.DishRatings {
		_, err = tx.Exec(ctx, `
			INSERT INTO dish_opinions (visit_id, dish_id, opinion, tags, photo_url)
			VALUES ($1, $2, $3, $4, $5)
		`, visitID, rating.DishID, string(rating.Opinion), rating.Tags, nilIfEmpty(rating.PhotoURL))
		if err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
			return "", fmt.Errorf("failed to insert dish opinion: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return "", fmt.Errorf("failed to commit visit: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("visit_id", visitID), zap.Int("dish_opinions", len(submission.DishRatings)))

	return visitID, nil
}

// HasVisited reports whether the user has any recorded visit to the restaurant
func (c *Client) HasVisited(ctx context.Context, userID, restaurantID string) (bool, error) {
	start := time.Now()
	operation := "hasVisited"

	var exists bool
	err := c.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_visits WHERE user_id = $1 AND restaurant_id = $2
		)
	`, userID, restaurantID).Scan(&exists)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return false, fmt.Errorf("failed to check visit history: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration)

	return exists, nil
}

// SaveExperienceResponse stores the answer to the restaurant-experience
// question for a visit
func (c *Client) SaveExperienceResponse(ctx context.Context, visitID string, feedback *models.RestaurantFeedbackInput) error {
	start := time.Now()
	operation := "saveExperienceResponse"

	_, err := c.pool.Exec(ctx, `
		INSERT INTO restaurant_experience_responses (visit_id, question_type, response, photo_url)
		VALUES ($1, $2, $3, $4)
	`, visitID, string(feedback.QuestionType), feedback.Response, nilIfEmpty(feedback.PhotoURL))

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to save experience response: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration)

	return nil
}

// AwardPoints records the points earned for a visit in the user's ledger
func (c *Client) AwardPoints(ctx context.Context, userID, visitID string, points int) error {
	start := time.Now()
	operation := "awardPoints"

	_, err := c.pool.Exec(ctx, `
		INSERT INTO user_points (user_id, visit_id, points)
		VALUES ($1, $2, $3)
	`, userID, visitID, points)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to award points: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("user_id", userID), zap.Int("points", points))

	return nil
}

// GetPointsHistory fetches the user's points ledger, newest first
func (c *Client) GetPointsHistory(ctx context.Context, userID string) ([]*models.PointsEntry, error) {
	start := time.Now()
	operation := "getPointsHistory"

	rows, err := c.pool.Query(ctx, `
		SELECT p.visit_id, v.restaurant_id, p.points, p.created_at
		FROM user_points p
		JOIN user_visits v ON v.id = p.visit_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC
	`, userID)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query points history: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.PointsEntry, 0)
	for rows.Next() {
		var e models.PointsEntry
		if err := rows.Scan(&e.VisitID, &e.RestaurantID, &e.Points, &e.AwardedAt); err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
			return nil, fmt.Errorf("failed to scan points row: %w", err)
		}
		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("error iterating points rows: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(entries)))

	return entries, nil
}

// GetTotalPoints returns the user's lifetime points total
func (c *Client) GetTotalPoints(ctx context.Context, userID string) (int, error) {
	start := time.Now()
	operation := "getTotalPoints"

	var total int
	err := c.pool.QueryRow(ctx,
		"SELECT COALESCE(SUM(points), 0) FROM user_points WHERE user_id = $1",
		userID).Scan(&total)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration)

	return total, nil
}
