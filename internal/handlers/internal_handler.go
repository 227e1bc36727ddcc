package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebud/tastebud-api/internal/cache"
)

// InternalHandler serves service-to-service endpoints guarded by the internal
// API token
type InternalHandler struct {
	restaurantCache *cache.RestaurantCache
}

// NewInternalHandler creates a new internal handler
func NewInternalHandler(restaurantCache *cache.RestaurantCache) *InternalHandler {
	return &InternalHandler{restaurantCache: restaurantCache}
}

// RefreshCache handles POST /api/internal/cache/refresh
// Triggers a background catalog refresh and returns the current data
func (h *InternalHandler) RefreshCache(c *gin.Context) {
	restaurants, err := h.restaurantCache.ForceRefresh()
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "Cache not ready", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"restaurants":  len(restaurants),
		"last_refresh": h.restaurantCache.LastRefresh(),
	})
}

// RefreshRestaurant handles POST /api/internal/restaurants/:slug/refresh
// Re-reads one restaurant from the database after an out-of-band edit,
// without waiting for the periodic refresh
func (h *InternalHandler) RefreshRestaurant(c *gin.Context) {
	slug := c.Param("slug")

	if err := h.restaurantCache.UpdateSingleRestaurant(slug); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "slug": slug})
}

// GetRestaurants handles GET /api/internal/restaurants
// Returns the full cached restaurant records including non-public fields
func (h *InternalHandler) GetRestaurants(c *gin.Context) {
	restaurants, err := h.restaurantCache.Get()
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "Cache not ready", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"restaurants": restaurants})
}
