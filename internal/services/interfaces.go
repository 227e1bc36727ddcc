package services

import (
	"context"

	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/internal/ratingflow"
	"github.com/tastebud/tastebud-api/pkg/jwt"
)

// RestaurantServiceInterface defines the interface for restaurant discovery operations
type RestaurantServiceInterface interface {
	ListRestaurants(ctx context.Context) ([]*models.PublicRestaurantResponse, error)
	SearchRestaurants(ctx context.Context, userID string, daily *models.DailyFilters, preset string) ([]*models.PublicRestaurantResponse, error)
	GetRestaurantBySlug(ctx context.Context, slug string) (*models.RestaurantWithDishes, error)
	GetRestaurantDishes(ctx context.Context, slug string, userID string, applyFilters bool) ([]*models.Dish, error)
}

// RatingFlowServiceInterface defines the interface for the rating wizard
type RatingFlowServiceInterface interface {
	StartSession(ctx context.Context, userID string) (ratingflow.View, error)
	GetSession(ctx context.Context, userID, sessionID string) (ratingflow.View, error)
	SelectRestaurant(ctx context.Context, userID, sessionID, restaurantSlug string) (ratingflow.View, error)
	ConfirmDishes(ctx context.Context, userID, sessionID string, dishIDs []string) (ratingflow.View, error)
	RateDish(ctx context.Context, userID, sessionID string, input models.DishRatingInput) (ratingflow.View, error)
	SubmitFeedback(ctx context.Context, userID, sessionID string, feedback *models.RestaurantFeedbackInput) (ratingflow.View, error)
	SkipFeedback(ctx context.Context, userID, sessionID string) (ratingflow.View, error)
	Back(ctx context.Context, userID, sessionID string) (ratingflow.View, error)
	AbandonSession(ctx context.Context, userID, sessionID string) error
	UploadPhoto(ctx context.Context, userID, sessionID, kind, photoData, contentType string) (string, error)
}

// PreferencesServiceInterface defines the interface for permanent filter storage
type PreferencesServiceInterface interface {
	GetFilters(ctx context.Context, userID string) (*models.PermanentFilters, error)
	SaveFilters(ctx context.Context, userID string, filters *models.PermanentFilters) error
}

// PointsServiceInterface defines the interface for the points ledger
type PointsServiceInterface interface {
	GetSummary(ctx context.Context, userID string) (*models.PointsSummary, error)
}

// DinerAuthServiceInterface defines guest session issuance for diners
type DinerAuthServiceInterface interface {
	StartSession(ctx context.Context, name, email string) (*models.DinerSession, string, error)
	GetSessionTTL() int
	GetCookieDomain() string
	GetCookieSecure() bool
	GetTokenManager() *jwt.TokenManager
}

// Ensure services implement their interfaces
var _ RestaurantServiceInterface = (*RestaurantService)(nil)
var _ RatingFlowServiceInterface = (*RatingFlowService)(nil)
var _ PreferencesServiceInterface = (*PreferencesService)(nil)
var _ PointsServiceInterface = (*PointsService)(nil)
var _ DinerAuthServiceInterface = (*DinerAuthService)(nil)
