package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebud/tastebud-api/config"
	"github.com/tastebud/tastebud-api/internal/cache"
	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/internal/services"
	apperrors "github.com/tastebud/tastebud-api/pkg/errors"
)

type restaurantFixture struct {
	service     *services.RestaurantService
	restaurants *MockRestaurantDataSource
	dishes      *MockDishDataSource
	preferences *MockPreferencesDataSource
}

func newRestaurantFixture() *restaurantFixture {
	restaurants := new(MockRestaurantDataSource)
	dishes := new(MockDishDataSource)
	preferences := new(MockPreferencesDataSource)

	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "https://tastebud.app"},
	}

	service := services.NewRestaurantService(
		cache.NewRestaurantCache(restaurants, dishes, 600),
		restaurants, dishes, preferences, cfg,
	)

	return &restaurantFixture{
		service:     service,
		restaurants: restaurants,
		dishes:      dishes,
		preferences: preferences,
	}
}

func catalogRestaurants() []*models.Restaurant {
	return []*models.Restaurant{
		{ID: "rest-1", Slug: "golden-wok", Name: "Golden Wok", Cuisine: "chinese", PriceLevel: 2, IsVisible: true},
		{ID: "rest-2", Slug: "la-piazza", Name: "La Piazza", Cuisine: "italian", PriceLevel: 3, IsVisible: true},
		{ID: "rest-3", Slug: "green-bowl", Name: "Green Bowl", Cuisine: "fusion", PriceLevel: 1, IsVisible: true},
	}
}

func TestRestaurantService_ListRestaurants(t *testing.T) {
	f := newRestaurantFixture()
	ctx := context.Background()

	f.restaurants.On("GetAllRestaurants", ctx).Return(catalogRestaurants(), nil).Once()

	result, err := f.service.ListRestaurants(ctx)
	require.NoError(t, err)

	assert.Len(t, result, 3)
	assert.Equal(t, "https://tastebud.app/restaurant/golden-wok", result[0].Link)

	f.dishes.AssertNotCalled(t, "GetAllDishes")
}

func TestRestaurantService_SearchByCuisine(t *testing.T) {
	f := newRestaurantFixture()
	ctx := context.Background()

	f.restaurants.On("GetAllRestaurants", ctx).Return(catalogRestaurants(), nil).Once()

	daily := &models.DailyFilters{CuisineTypes: []string{"italian"}}
	result, err := f.service.SearchRestaurants(ctx, "", daily, "")
	require.NoError(t, err)

	require.Len(t, result, 1)
	assert.Equal(t, "La Piazza", result[0].Name)

	// Cuisine is restaurant-level, menus must not be loaded.
	f.dishes.AssertNotCalled(t, "GetAllDishes")
}

func TestRestaurantService_SearchLoadsDishesForDietFilters(t *testing.T) {
	f := newRestaurantFixture()
	ctx := context.Background()

	dishesByRestaurant := map[string][]*models.Dish{
		"rest-1": {{ID: "dish-1", RestaurantID: "rest-1", Name: "Kung Pao Chicken", Tags: []string{"meat"}, IsAvailable: true}},
		"rest-3": {{ID: "dish-5", RestaurantID: "rest-3", Name: "Buddha Bowl", Tags: []string{"vegan"}, IsAvailable: true}},
	}

	f.restaurants.On("GetAllRestaurants", ctx).Return(catalogRestaurants(), nil).Once()
	f.dishes.On("GetAllDishes", ctx).Return(dishesByRestaurant, nil).Once()

	daily := &models.DailyFilters{Diet: models.DietVegan}
	result, err := f.service.SearchRestaurants(ctx, "", daily, "")
	require.NoError(t, err)

	// rest-1 only serves meat, rest-2 has no loaded menu (permissive),
	// rest-3 has a vegan dish.
	names := make([]string, 0, len(result))
	for _, r := range result {
		names = append(names, r.Name)
	}
	assert.NotContains(t, names, "Golden Wok")
	assert.Contains(t, names, "Green Bowl")
}

func TestRestaurantService_SearchCombinesPermanentFilters(t *testing.T) {
	f := newRestaurantFixture()
	ctx := context.Background()

	stored := models.DefaultPermanentFilters()
	stored.RequiredFacilities = []string{"parking"}

	restaurants := catalogRestaurants()
	restaurants[1].Facilities = []string{"parking", "wifi"}

	f.restaurants.On("GetAllRestaurants", ctx).Return(restaurants, nil).Once()
	f.preferences.On("GetPreferences", ctx, "user-1").Return(stored, nil).Once()

	result, err := f.service.SearchRestaurants(ctx, "user-1", &models.DailyFilters{}, "")
	require.NoError(t, err)

	require.Len(t, result, 1)
	assert.Equal(t, "La Piazza", result[0].Name)
}

func TestRestaurantService_SearchPreferencesReadFailureFallsBackToDefaults(t *testing.T) {
	f := newRestaurantFixture()
	ctx := context.Background()

	f.restaurants.On("GetAllRestaurants", ctx).Return(catalogRestaurants(), nil).Once()
	f.preferences.On("GetPreferences", ctx, "user-1").Return(nil, errors.New("connection refused")).Once()

	result, err := f.service.SearchRestaurants(ctx, "user-1", &models.DailyFilters{}, "")
	require.NoError(t, err)
	assert.Len(t, result, 3)
}

func TestRestaurantService_SearchWithPreset(t *testing.T) {
	f := newRestaurantFixture()
	ctx := context.Background()

	f.restaurants.On("GetAllRestaurants", ctx).Return(catalogRestaurants(), nil).Once()

	result, err := f.service.SearchRestaurants(ctx, "", &models.DailyFilters{}, "budget_eats")
	require.NoError(t, err)

	// budget_eats caps the price level at 2.
	require.Len(t, result, 2)
	for _, r := range result {
		assert.NotEqual(t, "La Piazza", r.Name)
	}
}

func TestRestaurantService_SearchUnknownPreset(t *testing.T) {
	f := newRestaurantFixture()
	ctx := context.Background()

	_, err := f.service.SearchRestaurants(ctx, "", &models.DailyFilters{}, "michelin_only")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestRestaurantService_GetRestaurantBySlug(t *testing.T) {
	f := newRestaurantFixture()
	ctx := context.Background()

	restaurant := catalogRestaurants()[0]
	menu := []*models.Dish{{ID: "dish-1", RestaurantID: "rest-1", Name: "Kung Pao Chicken"}}

	f.restaurants.On("GetRestaurantBySlug", ctx, "golden-wok").Return(restaurant, nil).Once()
	f.dishes.On("GetDishesByRestaurant", ctx, "rest-1").Return(menu, nil).Once()

	result, err := f.service.GetRestaurantBySlug(ctx, "golden-wok")
	require.NoError(t, err)

	assert.Equal(t, "Golden Wok", result.Restaurant.Name)
	assert.Len(t, result.Dishes, 1)
}

func TestRestaurantService_GetRestaurantBySlugNotFound(t *testing.T) {
	f := newRestaurantFixture()
	ctx := context.Background()

	f.restaurants.On("GetRestaurantBySlug", ctx, "no-such-place").
		Return(nil, errors.New("restaurant not found")).Once()

	_, err := f.service.GetRestaurantBySlug(ctx, "no-such-place")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestRestaurantService_GetRestaurantDishesFiltered(t *testing.T) {
	f := newRestaurantFixture()
	ctx := context.Background()

	restaurant := catalogRestaurants()[0]
	menu := []*models.Dish{
		{ID: "dish-1", RestaurantID: "rest-1", Name: "Kung Pao Chicken", Tags: []string{"meat"}, IsAvailable: true},
		{ID: "dish-2", RestaurantID: "rest-1", Name: "Mapo Tofu", Tags: []string{"vegan"}, IsAvailable: true},
	}

	stored := models.DefaultPermanentFilters()
	stored.ExcludeMeat = true

	f.restaurants.On("GetRestaurantBySlug", ctx, "golden-wok").Return(restaurant, nil).Once()
	f.dishes.On("GetDishesByRestaurant", ctx, "rest-1").Return(menu, nil).Once()
	f.preferences.On("GetPreferences", ctx, "user-1").Return(stored, nil).Once()

	result, err := f.service.GetRestaurantDishes(ctx, "golden-wok", "user-1", true)
	require.NoError(t, err)

	require.Len(t, result, 1)
	assert.Equal(t, "Mapo Tofu", result[0].Name)
}
