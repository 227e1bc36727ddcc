package services_test

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"

	"github.com/tastebud/tastebud-api/internal/models"
)

// MockRestaurantDataSource is a mock implementation of repository.RestaurantDataSource
type MockRestaurantDataSource struct {
	mock.Mock
}

func (m *MockRestaurantDataSource) GetAllRestaurants(ctx context.Context) ([]*models.Restaurant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Restaurant), args.Error(1)
}

func (m *MockRestaurantDataSource) GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

func (m *MockRestaurantDataSource) GetRestaurantByID(ctx context.Context, id string) (*models.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

// MockDishDataSource is a mock implementation of repository.DishDataSource
type MockDishDataSource struct {
	mock.Mock
}

func (m *MockDishDataSource) GetDishesByRestaurant(ctx context.Context, restaurantID string) ([]*models.Dish, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Dish), args.Error(1)
}

func (m *MockDishDataSource) GetAllDishes(ctx context.Context) (map[string][]*models.Dish, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]*models.Dish), args.Error(1)
}

func (m *MockDishDataSource) GetDishByID(ctx context.Context, id string) (*models.Dish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dish), args.Error(1)
}

// MockVisitDataSource is a mock implementation of repository.VisitDataSource
type MockVisitDataSource struct {
	mock.Mock
}

func (m *MockVisitDataSource) CreateVisit(ctx context.Context, submission *models.RatingSubmission) (string, error) {
	args := m.Called(ctx, submission)
	return args.String(0), args.Error(1)
}

func (m *MockVisitDataSource) HasVisited(ctx context.Context, userID, restaurantID string) (bool, error) {
	args := m.Called(ctx, userID, restaurantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVisitDataSource) SaveExperienceResponse(ctx context.Context, visitID string, feedback *models.RestaurantFeedbackInput) error {
	args := m.Called(ctx, visitID, feedback)
	return args.Error(0)
}

func (m *MockVisitDataSource) AwardPoints(ctx context.Context, userID, visitID string, points int) error {
	args := m.Called(ctx, userID, visitID, points)
	return args.Error(0)
}

func (m *MockVisitDataSource) GetPointsHistory(ctx context.Context, userID string) ([]*models.PointsEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PointsEntry), args.Error(1)
}

func (m *MockVisitDataSource) GetTotalPoints(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// MockPreferencesDataSource is a mock implementation of repository.PreferencesDataSource
type MockPreferencesDataSource struct {
	mock.Mock
}

func (m *MockPreferencesDataSource) GetPreferences(ctx context.Context, userID string) (*models.PermanentFilters, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PermanentFilters), args.Error(1)
}

func (m *MockPreferencesDataSource) UpsertPreferences(ctx context.Context, userID string, filters *models.PermanentFilters) error {
	args := m.Called(ctx, userID, filters)
	return args.Error(0)
}

// MockHTTPClient is a mock implementation of httpclient.Client
type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Get(url string) (*http.Response, error) {
	args := m.Called(url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}
