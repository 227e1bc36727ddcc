package ratingflow

import "github.com/tastebud/tastebud-api/internal/models"

// Per-unit point awards. The tally is a plain arithmetic sum, so the
// computation is total and idempotent for a given ratings/feedback/first-visit
// triple.
const (
	PointsPerDishRating   = 10
	PointsPerTaggedDish   = 5
	PointsPerDishPhoto    = 15
	PointsFeedbackAnswer  = 5
	PointsFeedbackPhoto   = 10
	PointsFirstVisitBonus = 20
)

// ComputePoints computes the points breakdown for one completed session.
// A skipped restaurant question is represented by a nil feedback and
// contributes zero.
func ComputePoints(ratings []models.DishRatingInput, feedback *models.RestaurantFeedbackInput, firstVisit bool) models.PointsBreakdown {
	var b models.PointsBreakdown

	for _, r := range ratings {
		b.DishRatings += PointsPerDishRating
		if len(r.Tags) > 0 {
			b.DishTags += PointsPerTaggedDish
		}
		if r.PhotoURL != "" {
			b.DishPhotos += PointsPerDishPhoto
		}
	}

	if feedback != nil {
		b.RestaurantFeedback = PointsFeedbackAnswer
		if feedback.PhotoURL != "" {
			b.RestaurantPhoto = PointsFeedbackPhoto
		}
	}

	if firstVisit {
		b.FirstVisitBonus = PointsFirstVisitBonus
	}

	b.Total = b.DishRatings + b.DishTags + b.DishPhotos +
		b.RestaurantFeedback + b.RestaurantPhoto + b.FirstVisitBonus

	return b
}
