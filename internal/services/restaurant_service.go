package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tastebud/tastebud-api/config"
	"github.com/tastebud/tastebud-api/internal/cache"
	"github.com/tastebud/tastebud-api/internal/filter"
	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/internal/repository"
	apperrors "github.com/tastebud/tastebud-api/pkg/errors"
	"github.com/tastebud/tastebud-api/pkg/logger"
	"github.com/tastebud/tastebud-api/pkg/metrics"
)

// RestaurantService serves the discovery surface: the restaurant catalog,
// filtered search and per-restaurant menus. Reads go through the in-memory
// cache unless it is disabled.
type RestaurantService struct {
	cache       *cache.RestaurantCache
	restaurants repository.RestaurantDataSource
	dishes      repository.DishDataSource
	preferences repository.PreferencesDataSource
	config      *config.Config
}

// NewRestaurantService creates a new restaurant service instance
func NewRestaurantService(
	restaurantCache *cache.RestaurantCache,
	restaurants repository.RestaurantDataSource,
	dishes repository.DishDataSource,
	preferences repository.PreferencesDataSource,
	cfg *config.Config,
) *RestaurantService {
	return &RestaurantService{
		cache:       restaurantCache,
		restaurants: restaurants,
		dishes:      dishes,
		preferences: preferences,
		config:      cfg,
	}
}

// ListRestaurants returns the full visible catalog without any filtering
func (s *RestaurantService) ListRestaurants(ctx context.Context) ([]*models.PublicRestaurantResponse, error) {
	restaurants, _, err := s.getCatalog(ctx, false)
	if err != nil {
		return nil, err
	}

	return s.toPublic(restaurants), nil
}

// SearchRestaurants returns the restaurants matching the daily filters
// combined with the user's stored permanent filters. An empty userID means an
// anonymous search against permissive permanent filters.
func (s *RestaurantService) SearchRestaurants(ctx context.Context, userID string, daily *models.DailyFilters, preset string) ([]*models.PublicRestaurantResponse, error) {
	if daily == nil {
		daily = &models.DailyFilters{}
	}

	if preset != "" {
		if err := filter.ApplyPreset(daily, preset); err != nil {
			metrics.RestaurantSearches.WithLabelValues("invalid").Inc()
			return nil, apperrors.InvalidInputError("preset", err.Error())
		}
	}

	perm := s.loadPermanentFilters(ctx, userID)

	restaurants, dishesByRestaurant, err := s.getCatalog(ctx, filter.NeedsDishData(daily, perm))
	if err != nil {
		metrics.RestaurantSearches.WithLabelValues("error").Inc()
		return nil, err
	}

	matched := filter.Restaurants(restaurants, dishesByRestaurant, daily, perm, time.Now())

	filterKind := "daily"
	if userID != "" {
		filterKind = "combined"
	}
	metrics.RestaurantSearches.WithLabelValues("success").Inc()
	metrics.RestaurantsMatched.WithLabelValues(filterKind).Observe(float64(len(matched)))

	logger.Debug("Restaurant search completed",
		zap.Int("candidates", len(restaurants)),
		zap.Int("matched", len(matched)),
		zap.String("filter_kind", filterKind))

	return s.toPublic(matched), nil
}

// GetRestaurantBySlug returns one restaurant with its full menu
func (s *RestaurantService) GetRestaurantBySlug(ctx context.Context, slug string) (*models.RestaurantWithDishes, error) {
	restaurant, err := s.getRestaurant(ctx, slug)
	if err != nil {
		return nil, err
	}

	dishes, err := s.getRestaurantDishes(ctx, restaurant.ID)
	if err != nil {
		return nil, err
	}

	return &models.RestaurantWithDishes{
		Restaurant: restaurant,
		Dishes:     dishes,
	}, nil
}

// GetRestaurantDishes returns a restaurant's menu, optionally narrowed by the
// user's permanent filters
func (s *RestaurantService) GetRestaurantDishes(ctx context.Context, slug string, userID string, applyFilters bool) ([]*models.Dish, error) {
	restaurant, err := s.getRestaurant(ctx, slug)
	if err != nil {
		return nil, err
	}

	dishes, err := s.getRestaurantDishes(ctx, restaurant.ID)
	if err != nil {
		return nil, err
	}

	if !applyFilters {
		return dishes, nil
	}

	perm := s.loadPermanentFilters(ctx, userID)
	return filter.Dishes(dishes, nil, perm), nil
}

func (s *RestaurantService) getRestaurant(ctx context.Context, slug string) (*models.Restaurant, error) {
	if !s.config.Cache.DisableRestaurantsCache && s.cache.IsReady() {
		restaurant, err := s.cache.GetBySlug(slug)
		if err == nil {
			return restaurant, nil
		}
		// Fall through to the database: the restaurant may have been added
		// since the last refresh.
	}

	restaurant, err := s.restaurants.GetRestaurantBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.NotFoundError("restaurant")
	}
	return restaurant, nil
}

func (s *RestaurantService) getRestaurantDishes(ctx context.Context, restaurantID string) ([]*models.Dish, error) {
	if !s.config.Cache.DisableRestaurantsCache && s.cache.IsReady() {
		dishesByRestaurant, err := s.cache.GetDishes()
		if err == nil {
			if dishes, ok := dishesByRestaurant[restaurantID]; ok {
				return dishes, nil
			}
		}
	}

	return s.dishes.GetDishesByRestaurant(ctx, restaurantID)
}

// getCatalog returns all visible restaurants and, when needed, their dish
// lists. The dish map is nil when dish-level filters are inactive so matching
// stays permissive without loading menus.
func (s *RestaurantService) getCatalog(ctx context.Context, withDishes bool) ([]*models.Restaurant, map[string][]*models.Dish, error) {
	if !s.config.Cache.DisableRestaurantsCache && s.cache.IsReady() {
		restaurants, err := s.cache.Get()
		if err != nil {
			return nil, nil, apperrors.InternalError("restaurant catalog unavailable")
		}

		var dishes map[string][]*models.Dish
		if withDishes {
			dishes, err = s.cache.GetDishes()
			if err != nil {
				return nil, nil, apperrors.InternalError("dish catalog unavailable")
			}
		}
		return restaurants, dishes, nil
	}

	restaurants, err := s.restaurants.GetAllRestaurants(ctx)
	if err != nil {
		return nil, nil, err
	}

	var dishes map[string][]*models.Dish
	if withDishes {
		dishes, err = s.dishes.GetAllDishes(ctx)
		if err != nil {
			return nil, nil, err
		}
	}

	return restaurants, dishes, nil
}

// loadPermanentFilters resolves the user's stored filters, falling back to the
// permissive defaults for anonymous users or when the read fails. A filter
// read must never take the search surface down.
func (s *RestaurantService) loadPermanentFilters(ctx context.Context, userID string) *models.PermanentFilters {
	if userID == "" {
		return models.DefaultPermanentFilters()
	}

	filters, err := s.preferences.GetPreferences(ctx, userID)
	if err != nil {
		logger.Warn("Failed to load permanent filters, using defaults",
			zap.String("user_id", userID),
			zap.Error(err))
		return models.DefaultPermanentFilters()
	}

	return filters
}

func (s *RestaurantService) toPublic(restaurants []*models.Restaurant) []*models.PublicRestaurantResponse {
	out := make([]*models.PublicRestaurantResponse, 0, len(restaurants))
	for _, r := range restaurants {
		resp := r.ToPublicResponse(s.config.Server.BaseURL)
		out = append(out, &resp)
	}
	return out
}
