package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/pkg/logger"
	"github.com/tastebud/tastebud-api/pkg/metrics"
)

// RestaurantDataSource defines the data fetching the cache depends on
type RestaurantDataSource interface {
	GetAllRestaurants(ctx context.Context) ([]*models.Restaurant, error)
	GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
}

// DishDataSource provides the per-restaurant dish lists the filter engine
// matches against
type DishDataSource interface {
	GetAllDishes(ctx context.Context) (map[string][]*models.Dish, error)
}

const (
	restaurantKeyPrefix = "restaurant:slug:"
	allRestaurantsKey   = "restaurant:all"
	allDishesKey        = "dishes:all"
	cacheCheckPeriod    = 10 * time.Second
	maxRetries          = 3
	initialRetryWait    = 2 * time.Second
)

// RestaurantCache keeps the full visible restaurant catalog and their dish
// lists in memory so search and filter matching never hit the database on the
// request path
type RestaurantCache struct {
	cache       *gocache.Cache
	restaurants RestaurantDataSource
	dishes      DishDataSource
	mu          sync.RWMutex
	refreshing  bool
	ready       bool
	ttl         time.Duration
	lastRefresh time.Time
}

// NewRestaurantCache creates a new restaurant cache with slug-based storage
func NewRestaurantCache(restaurants RestaurantDataSource, dishes DishDataSource, ttlSeconds int) *RestaurantCache {
	ttl := time.Duration(ttlSeconds) * time.Second

	return &RestaurantCache{
		cache:       gocache.New(gocache.NoExpiration, cacheCheckPeriod),
		restaurants: restaurants,
		dishes:      dishes,
		ttl:         ttl,
	}
}

// Initialize performs initial cache population (synchronous, blocks until ready)
// Should be called during application startup before accepting requests
func (rc *RestaurantCache) Initialize() error {
	logger.Info("Initializing restaurant cache...")
	startTime := time.Now()

	err := rc.refreshWithRetry()
	if err != nil {
		logger.Error("Failed to initialize restaurant cache", zap.Error(err))
		return err
	}

	rc.mu.Lock()
	rc.ready = true
	rc.lastRefresh = time.Now()
	rc.mu.Unlock()

	duration := time.Since(startTime)
	logger.Info("Restaurant cache initialized successfully",
		zap.Duration("duration", duration))

	// Start background refresh scheduler
	go rc.schedulePeriodicRefresh()

	return nil
}

// IsReady returns true if the cache has been successfully initialized
func (rc *RestaurantCache) IsReady() bool {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.ready
}

// GetBySlug retrieves a single restaurant by slug with O(1) complexity
// Returns immediately without blocking, never triggers a database fetch
func (rc *RestaurantCache) GetBySlug(slug string) (*models.Restaurant, error) {
	if !rc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	key := restaurantKeyPrefix + slug

	data, found := rc.cache.Get(key)
	if !found {
		metrics.CacheMisses.WithLabelValues("restaurant_by_slug").Inc()
		logger.Debug("Restaurant not found in cache", zap.String("slug", slug))
		return nil, fmt.Errorf("restaurant not found")
	}

	metrics.CacheHits.WithLabelValues("restaurant_by_slug").Inc()

	restaurant, ok := data.(*models.Restaurant)
	if !ok {
		logger.Error("Invalid cache data type", zap.String("slug", slug))
		rc.cache.Delete(key)
		return nil, fmt.Errorf("invalid cache data")
	}

	return restaurant, nil
}

// Get retrieves all restaurants from cache
// Returns immediately without blocking, never triggers a database fetch
func (rc *RestaurantCache) Get() ([]*models.Restaurant, error) {
	if !rc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	slugsData, found := rc.cache.Get(allRestaurantsKey)
	if !found {
		metrics.CacheMisses.WithLabelValues("restaurant_all").Inc()
		logger.Warn("All restaurants list not in cache, returning empty")
		return []*models.Restaurant{}, nil
	}

	slugs, ok := slugsData.([]string)
	if !ok {
		logger.Error("Invalid cache data type for all restaurants list")
		return []*models.Restaurant{}, nil
	}

	metrics.CacheHits.WithLabelValues("restaurant_all").Inc()

	restaurants := make([]*models.Restaurant, 0, len(slugs))
	for _, slug := range slugs {
		restaurant, err := rc.GetBySlug(slug)
		if err != nil {
			// Skip missing restaurants rather than failing
			logger.Debug("Restaurant missing from cache", zap.String("slug", slug))
			continue
		}
		restaurants = append(restaurants, restaurant)
	}

	return restaurants, nil
}

// GetDishes retrieves the full dish map grouped by restaurant ID
func (rc *RestaurantCache) GetDishes() (map[string][]*models.Dish, error) {
	if !rc.IsReady() {
		return nil, fmt.Errorf("cache not initialized")
	}

	data, found := rc.cache.Get(allDishesKey)
	if !found {
		metrics.CacheMisses.WithLabelValues("dishes_all").Inc()
		logger.Warn("Dish map not in cache, returning empty")
		return map[string][]*models.Dish{}, nil
	}

	metrics.CacheHits.WithLabelValues("dishes_all").Inc()

	dishes, ok := data.(map[string][]*models.Dish)
	if !ok {
		logger.Error("Invalid cache data type for dish map")
		return map[string][]*models.Dish{}, nil
	}

	return dishes, nil
}

// UpdateSingleRestaurant refreshes ONE restaurant in cache from the data source
func (rc *RestaurantCache) UpdateSingleRestaurant(slug string) error {
	if !rc.IsReady() {
		return fmt.Errorf("cache not initialized")
	}

	logger.Info("Updating single restaurant in cache", zap.String("slug", slug))

	restaurant, err := rc.restaurants.GetRestaurantBySlug(context.Background(), slug)
	if err != nil {
		logger.Error("Failed to fetch restaurant from data source",
			zap.String("slug", slug),
			zap.Error(err))
		return err
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.cache.Set(restaurantKeyPrefix+slug, restaurant, gocache.NoExpiration)

	if err := rc.ensureRestaurantInListLocked(slug); err != nil {
		logger.Error("Failed to update all-restaurants list", zap.Error(err))
		// Non-fatal, restaurant is still cached
	}

	logger.Info("Single restaurant updated successfully", zap.String("slug", slug))
	return nil
}

// ForceRefresh triggers a background refresh and returns immediately
func (rc *RestaurantCache) ForceRefresh() ([]*models.Restaurant, error) {
	logger.Info("Force refresh requested, triggering background refresh")

	go func() {
		if err := rc.refreshInBackground(); err != nil {
			logger.Error("Background refresh failed", zap.Error(err))
		}
	}()

	// Return current cached data immediately
	return rc.Get()
}

// schedulePeriodicRefresh runs background refresh at TTL intervals
func (rc *RestaurantCache) schedulePeriodicRefresh() {
	ticker := time.NewTicker(rc.ttl)
	defer ticker.Stop()

	for range ticker.C {
		logger.Info("Starting scheduled cache refresh")

		if err := rc.refreshInBackground(); err != nil {
			logger.Error("Scheduled cache refresh failed", zap.Error(err))
			// Don't stop the scheduler, will retry on next tick
		}
	}
}

// refreshInBackground performs non-blocking background refresh
func (rc *RestaurantCache) refreshInBackground() error {
	rc.mu.Lock()
	if rc.refreshing {
		rc.mu.Unlock()
		logger.Debug("Refresh already in progress, skipping")
		return nil
	}
	rc.refreshing = true
	rc.mu.Unlock()

	defer func() {
		rc.mu.Lock()
		rc.refreshing = false
		rc.mu.Unlock()
	}()

	logger.Info("Background refresh started")
	startTime := time.Now()

	restaurants, dishes, err := rc.fetchAll()
	if err != nil {
		logger.Error("Failed to fetch catalog in background refresh", zap.Error(err))
		return err
	}

	rc.populateCache(restaurants, dishes)

	rc.mu.Lock()
	rc.lastRefresh = time.Now()
	rc.mu.Unlock()

	duration := time.Since(startTime)
	logger.Info("Background refresh completed",
		zap.Int("restaurants", len(restaurants)),
		zap.Duration("duration", duration))

	return nil
}

// refreshWithRetry performs a refresh with exponential backoff retry logic
func (rc *RestaurantCache) refreshWithRetry() error {
	var err error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			//nolint:gosec // G115: attempt bounded by maxRetries (3), no overflow possible
			waitTime := initialRetryWait * time.Duration(1<<uint(attempt-1))
			logger.Warn("Retrying cache refresh",
				zap.Int("attempt", attempt+1),
				zap.Duration("wait", waitTime))
			time.Sleep(waitTime)
		}

		var restaurants []*models.Restaurant
		var dishes map[string][]*models.Dish
		restaurants, dishes, err = rc.fetchAll()
		if err == nil {
			rc.populateCache(restaurants, dishes)
			return nil
		}
	}

	return fmt.Errorf("cache refresh failed after %d attempts: %w", maxRetries, err)
}

func (rc *RestaurantCache) fetchAll() ([]*models.Restaurant, map[string][]*models.Dish, error) {
	ctx := context.Background()

	restaurants, err := rc.restaurants.GetAllRestaurants(ctx)
	if err != nil {
		return nil, nil, err
	}

	dishes, err := rc.dishes.GetAllDishes(ctx)
	if err != nil {
		return nil, nil, err
	}

	return restaurants, dishes, nil
}

// populateCache atomically replaces the cached catalog
func (rc *RestaurantCache) populateCache(restaurants []*models.Restaurant, dishes map[string][]*models.Dish) {
	slugs := make([]string, 0, len(restaurants))
	for _, restaurant := range restaurants {
		rc.cache.Set(restaurantKeyPrefix+restaurant.Slug, restaurant, gocache.NoExpiration)
		slugs = append(slugs, restaurant.Slug)
	}

	rc.cache.Set(allRestaurantsKey, slugs, gocache.NoExpiration)
	rc.cache.Set(allDishesKey, dishes, gocache.NoExpiration)

	metrics.CacheSize.WithLabelValues("restaurants").Set(float64(len(restaurants)))
	metrics.CacheSize.WithLabelValues("dish_lists").Set(float64(len(dishes)))
}

func (rc *RestaurantCache) ensureRestaurantInListLocked(slug string) error {
	slugsData, found := rc.cache.Get(allRestaurantsKey)
	if !found {
		rc.cache.Set(allRestaurantsKey, []string{slug}, gocache.NoExpiration)
		return nil
	}

	slugs, ok := slugsData.([]string)
	if !ok {
		return fmt.Errorf("invalid all-restaurants list type")
	}

	for _, s := range slugs {
		if s == slug {
			return nil
		}
	}

	rc.cache.Set(allRestaurantsKey, append(slugs, slug), gocache.NoExpiration)
	return nil
}

// LastRefresh returns the time of the last successful refresh
func (rc *RestaurantCache) LastRefresh() time.Time {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.lastRefresh
}
