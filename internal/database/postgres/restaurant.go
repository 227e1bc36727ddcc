package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/pkg/logger"
	"github.com/tastebud/tastebud-api/pkg/metrics"
)

// RestaurantRow represents a restaurant row from the database
type RestaurantRow struct {
	ID          string
	Slug        string
	Name        string
	Description *string
	Cuisine     string
	PriceLevel  int
	Address     *string
	City        *string
	Latitude    *float64
	Longitude   *float64
	Tags        []string
	Facilities  []string
	ImageURL    *string
	OpensAt     int
	ClosesAt    int
	IsVisible   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const restaurantColumns = `
	r.id, r.slug, r.name, r.description, r.cuisine, r.price_level,
	r.address, r.city, r.latitude, r.longitude, r.tags, r.facilities,
	r.image_url, r.opens_at, r.closes_at, r.is_visible, r.created_at, r.updated_at`

// GetAllRestaurants fetches all visible restaurants from the database
func (c *Client) GetAllRestaurants(ctx context.Context) ([]*models.Restaurant, error) {
	start := time.Now()
	operation := "getAllRestaurants"

	query := fmt.Sprintf(`
		SELECT %s
		FROM restaurants r
		WHERE r.is_visible = true
		ORDER BY r.name ASC
	`, restaurantColumns)

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query restaurants: %w", err)
	}
	defer rows.Close()

	restaurants := make([]*models.Restaurant, 0)
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			duration := metrics.MeasureDuration(start)
			recordMetrics(operation, "error", duration)
			logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
			return nil, fmt.Errorf("failed to scan restaurant row: %w", err)
		}
		restaurants = append(restaurants, restaurant)
	}

	if err := rows.Err(); err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("error iterating restaurant rows: %w", err)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(restaurants)))

	return restaurants, nil
}

// GetRestaurantBySlug fetches a single restaurant by slug
func (c *Client) GetRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	return c.getRestaurantByField(ctx, "getRestaurantBySlug", "r.slug = $1", slug)
}

// GetRestaurantByID fetches a single restaurant by ID
func (c *Client) GetRestaurantByID(ctx context.Context, id string) (*models.Restaurant, error) {
	return c.getRestaurantByField(ctx, "getRestaurantByID", "r.id = $1", id)
}

// getRestaurantByField is a helper that fetches a restaurant by a specific field condition
func (c *Client) getRestaurantByField(ctx context.Context, operation, whereClause string, arg interface{}) (*models.Restaurant, error) {
	start := time.Now()

	query := fmt.Sprintf(`
		SELECT %s
		FROM restaurants r
		WHERE %s
	`, restaurantColumns, whereClause)

	row := c.pool.QueryRow(ctx, query, arg)
	restaurant, err := scanRestaurant(row)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if err == pgx.ErrNoRows {
			recordMetrics(operation, "not_found", duration)
			logger.LogAPICall("postgres", operation, "not_found", duration)
			return nil, fmt.Errorf("restaurant not found")
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to fetch restaurant: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration)

	return restaurant, nil
}

func scanRestaurant(row pgx.Row) (*models.Restaurant, error) {
	var r RestaurantRow

	err := row.Scan(
		&r.ID, &r.Slug, &r.Name, &r.Description, &r.Cuisine, &r.PriceLevel,
		&r.Address, &r.City, &r.Latitude, &r.Longitude, &r.Tags, &r.Facilities,
		&r.ImageURL, &r.OpensAt, &r.ClosesAt, &r.IsVisible, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return rowToRestaurant(&r), nil
}

func rowToRestaurant(row *RestaurantRow) *models.Restaurant {
	return &models.Restaurant{
		ID:          row.ID,
		Slug:        row.Slug,
		Name:        row.Name,
		Description: stringValue(row.Description),
		Cuisine:     row.Cuisine,
		PriceLevel:  row.PriceLevel,
		Address:     stringValue(row.Address),
		City:        stringValue(row.City),
		Latitude:    floatValue(row.Latitude),
		Longitude:   floatValue(row.Longitude),
		Tags:        row.Tags,
		Facilities:  row.Facilities,
		ImageURL:    stringValue(row.ImageURL),
		OpensAt:     row.OpensAt,
		ClosesAt:    row.ClosesAt,
		IsVisible:   row.IsVisible,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatValue(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
