package repository

import (
	"context"

	"github.com/tastebud/tastebud-api/internal/database/postgres"
	"github.com/tastebud/tastebud-api/internal/models"
)

// PostgresDataSource implements all data source interfaces using PostgreSQL
type PostgresDataSource struct {
	client *postgres.Client
}

var (
	_ RestaurantDataSource  = (*PostgresDataSource)(nil)
	_ DishDataSource        = (*PostgresDataSource)(nil)
	_ VisitDataSource       = (*PostgresDataSource)(nil)
	_ PreferencesDataSource = (*PostgresDataSource)(nil)
)

// NewPostgresDataSource creates a new PostgreSQL data source
func NewPostgresDataSource(client *postgres.Client) *PostgresDataSource {
	return &PostgresDataSource{client: client}
}

func (ds *PostgresDataSource) GetAllRestaurants(ctx context.Context) ([]*models.Restaurant, error) {
	return ds.client.GetAllRestaurants(ctx)
}

func (ds *PostgresDataSource) GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	return ds.client.GetRestaurantBySlug(ctx, slug)
}

func (ds *PostgresDataSource) GetRestaurantByID(ctx context.Context, id string) (*models.Restaurant, error) {
	return ds.client.GetRestaurantByID(ctx, id)
}

func (ds *PostgresDataSource) GetDishesByRestaurant(ctx context.Context, restaurantID string) ([]*models.Dish, error) {
	return ds.client.GetDishesByRestaurant(ctx, restaurantID)
}

func (ds *PostgresDataSource) GetAllDishes(ctx context.Context) (map[string][]*models.Dish, error) {
	return ds.client.GetAllDishes(ctx)
}

func (ds *PostgresDataSource) GetDishByID(ctx context.Context, id string) (*models.Dish, error) {
	return ds.client.GetDishByID(ctx, id)
}

func (ds *PostgresDataSource) CreateVisit(ctx context.Context, submission *models.RatingSubmission) (string, error) {
	return ds.client.CreateVisit(ctx, submission)
}

func (ds *PostgresDataSource) HasVisited(ctx context.Context, userID, restaurantID string) (bool, error) {
	return ds.client.HasVisited(ctx, userID, restaurantID)
}

func (ds *PostgresDataSource) SaveExperienceResponse(ctx context.Context, visitID string, feedback *models.RestaurantFeedbackInput) error {
	return ds.client.SaveExperienceResponse(ctx, visitID, feedback)
}

func (ds *PostgresDataSource) AwardPoints(ctx context.Context, userID, visitID string, points int) error {
	return ds.client.AwardPoints(ctx, userID, visitID, points)
}

func (ds *PostgresDataSource) GetPointsHistory(ctx context.Context, userID string) ([]*models.PointsEntry, error) {
	return ds.client.GetPointsHistory(ctx, userID)
}

func (ds *PostgresDataSource) GetTotalPoints(ctx context.Context, userID string) (int, error) {
	return ds.client.GetTotalPoints(ctx, userID)
}

func (ds *PostgresDataSource) GetPreferences(ctx context.Context, userID string) (*models.PermanentFilters, error) {
	return ds.client.GetPreferences(ctx, userID)
}

func (ds *PostgresDataSource) UpsertPreferences(ctx context.Context, userID string, filters *models.PermanentFilters) error {
	return ds.client.UpsertPreferences(ctx, userID, filters)
}
