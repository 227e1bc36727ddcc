package services

import (
	"context"

	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/internal/repository"
)

// PointsService exposes the read side of the points ledger
type PointsService struct {
	visits repository.VisitDataSource
}

// NewPointsService creates a new points service instance
func NewPointsService(visits repository.VisitDataSource) *PointsService {
	return &PointsService{visits: visits}
}

// GetSummary returns the user's lifetime total and ledger, newest first
func (s *PointsService) GetSummary(ctx context.Context, userID string) (*models.PointsSummary, error) {
	total, err := s.visits.GetTotalPoints(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.visits.GetPointsHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.PointsSummary{
		Total:   total,
		History: history,
	}, nil
}
