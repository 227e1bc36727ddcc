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

// DishRow represents a dish row from the database
type DishRow struct {
	ID           string
	RestaurantID string
	Name         string
	Description  *string
	Category     string
	Price        float64
	Calories     *int
	Ingredients  []string
	Allergens    []string
	Tags         []string
	PhotoURL     *string
	IsAvailable  bool
}

const dishColumns = `
	d.id, d.restaurant_id, d.name, d.description, d.category, d.price,
	d.calories, d.ingredients, d.allergens, d.tags, d.photo_url, d.is_available`

// GetDishesByRestaurant fetches all available dishes for one restaurant
func (c *Client) GetDishesByRestaurant(ctx context.Context, restaurantID string) ([]*models.Dish, error) {
	start := time.Now()
	operation := "getDishesByRestaurant"

	query := fmt.Sprintf(`
		SELECT %s
		FROM dishes d
		WHERE d.restaurant_id = $1 AND d.is_available = true
		ORDER BY d.category, d.name
	`, dishColumns)

	rows, err := c.pool.Query(ctx, query, restaurantID)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query dishes: %w", err)
	}
	defer rows.Close()

	dishes, err := collectDishes(rows)

	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, err
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration,
		zap.String("restaurant_id", restaurantID), zap.Int("count", len(dishes)))

	return dishes, nil
}

// GetAllDishes fetches all available dishes grouped by restaurant. Used by the
// restaurant cache so filter matching never queries per restaurant.
func (c *Client) GetAllDishes(ctx context.Context) (map[string][]*models.Dish, error) {
	start := time.Now()
	operation := "getAllDishes"

	query := fmt.Sprintf(`
		SELECT %s
		FROM dishes d
		JOIN restaurants r ON r.id = d.restaurant_id
		WHERE d.is_available = true AND r.is_visible = true
		ORDER BY d.restaurant_id, d.category, d.name
	`, dishColumns)

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		duration := metrics.MeasureDuration(start)
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to query dishes: %w", err)
	}
	defer rows.Close()

	dishes, err := collectDishes(rows)

	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, err
	}

	byRestaurant := make(map[string][]*models.Dish)
	for _, dish := range dishes {
		byRestaurant[dish.RestaurantID] = append(byRestaurant[dish.RestaurantID], dish)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(dishes)))

	return byRestaurant, nil
}

// GetDishByID fetches a single dish by ID
func (c *Client) GetDishByID(ctx context.Context, id string) (*models.Dish, error) {
	start := time.Now()
	operation := "getDishByID"

	query := fmt.Sprintf(`
		SELECT %s
		FROM dishes d
		WHERE d.id = $1
	`, dishColumns)

	row := c.pool.QueryRow(ctx, query, id)
	dish, err := scanDish(row)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if err == pgx.ErrNoRows {
			recordMetrics(operation, "not_found", duration)
			logger.LogAPICall("postgres", operation, "not_found", duration)
			return nil, fmt.Errorf("dish not found")
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return nil, fmt.Errorf("failed to fetch dish: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration)

	return dish, nil
}

func collectDishes(rows pgx.Rows) ([]*models.Dish, error) {
	dishes := make([]*models.Dish, 0)
	for rows.Next() {
		dish, err := scanDish(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dish row: %w", err)
		}
		dishes = append(dishes, dish)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dish rows: %w", err)
	}

	return dishes, nil
}

func scanDish(row pgx.Row) (*models.Dish, error) {
	var d DishRow

	err := row.Scan(
		&d.ID, &d.RestaurantID, &d.Name, &d.Description, &d.Category, &d.Price,
		&d.Calories, &d.Ingredients, &d.Allergens, &d.Tags, &d.PhotoURL, &d.IsAvailable,
	)
	if err != nil {
		return nil, err
	}

	calories := 0
	if d.Calories != nil {
		calories = *d.Calories
	}

	return &models.Dish{
		ID:           d.ID,
		RestaurantID: d.RestaurantID,
		Name:         d.Name,
		Description:  stringValue(d.Description),
		Category:     d.Category,
		Price:        d.Price,
		Calories:     calories,
		Ingredients:  d.Ingredients,
		Allergens:    d.Allergens,
		Tags:         d.Tags,
		PhotoURL:     stringValue(d.PhotoURL),
		IsAvailable:  d.IsAvailable,
	}, nil
}
