package repository

import (
	"context"

	"github.com/tastebud/tastebud-api/internal/models"
)

// RestaurantDataSource defines the interface for restaurant data fetching
type RestaurantDataSource interface {
	// GetAllRestaurants fetches all visible restaurants
	GetAllRestaurants(ctx context.Context) ([]*models.Restaurant, error)

	// GetRestaurantBySlug fetches a single restaurant by slug
	GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error)

	// GetRestaurantByID fetches a single restaurant by ID
	GetRestaurantByID(ctx context.Context, id string) (*models.Restaurant, error)
}

// DishDataSource defines the interface for dish data fetching
type DishDataSource interface {
	// GetDishesByRestaurant fetches all available dishes for one restaurant
	GetDishesByRestaurant(ctx context.Context, restaurantID string) ([]*models.Dish, error)

	// GetAllDishes fetches all available dishes grouped by restaurant ID
	GetAllDishes(ctx context.Context) (map[string][]*models.Dish, error)

	// GetDishByID fetches a single dish by ID
	GetDishByID(ctx context.Context, id string) (*models.Dish, error)
}

// VisitDataSource defines the interface for visit and points operations
type VisitDataSource interface {
	// CreateVisit records a completed submission and returns the visit ID
	CreateVisit(ctx context.Context, submission *models.RatingSubmission) (string, error)

	// HasVisited reports whether the user has a recorded visit to the restaurant
	HasVisited(ctx context.Context, userID, restaurantID string) (bool, error)

	// SaveExperienceResponse stores the restaurant-question answer for a visit
	SaveExperienceResponse(ctx context.Context, visitID string, feedback *models.RestaurantFeedbackInput) error

	// AwardPoints records earned points in the user's ledger
	AwardPoints(ctx context.Context, userID, visitID string, points int) error

	// GetPointsHistory fetches the user's points ledger, newest first
	GetPointsHistory(ctx context.Context, userID string) ([]*models.PointsEntry, error)

	// GetTotalPoints returns the user's lifetime points total
	GetTotalPoints(ctx context.Context, userID string) (int, error)
}

// PreferencesDataSource defines the interface for permanent filter storage
type PreferencesDataSource interface {
	// GetPreferences fetches the user's saved permanent filters
	GetPreferences(ctx context.Context, userID string) (*models.PermanentFilters, error)

	// UpsertPreferences stores the user's permanent filters
	UpsertPreferences(ctx context.Context, userID string, filters *models.PermanentFilters) error
}
