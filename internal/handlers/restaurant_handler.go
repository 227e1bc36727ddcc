package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebud/tastebud-api/internal/middleware"
	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/internal/services"
)

// RestaurantHandler handles restaurant discovery HTTP requests
type RestaurantHandler struct {
	service services.RestaurantServiceInterface
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(service services.RestaurantServiceInterface) *RestaurantHandler {
	return &RestaurantHandler{service: service}
}

// SearchRequest is the body of POST /api/v1/restaurants/search
type SearchRequest struct {
	PriceMin        int      `json:"priceMin" binding:"omitempty,min=0,max=4"`
	PriceMax        int      `json:"priceMax" binding:"omitempty,min=0,max=4"`
	CuisineTypes    []string `json:"cuisineTypes"`
	Diet            string   `json:"diet" binding:"omitempty,oneof=all vegetarian vegan"`
	Proteins        []string `json:"proteins"`
	CaloriesEnabled bool     `json:"caloriesEnabled"`
	CaloriesMin     int      `json:"caloriesMin" binding:"omitempty,min=0"`
	CaloriesMax     int      `json:"caloriesMax" binding:"omitempty,min=0"`
	OpenNow         bool     `json:"openNow"`
	Preset          string   `json:"preset"`
}

// ListRestaurants handles GET /api/v1/restaurants
func (h *RestaurantHandler) ListRestaurants(c *gin.Context) {
	restaurants, err := h.service.ListRestaurants(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"restaurants": restaurants})
}

// SearchRestaurants handles POST /api/v1/restaurants/search. Signed-in diners
// get their permanent filters combined in; anonymous searches use the daily
// filters alone.
func (h *RestaurantHandler) SearchRestaurants(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": ParseValidationErrors(err),
		})
		return
	}

	daily := &models.DailyFilters{
		PriceMin:        req.PriceMin,
		PriceMax:        req.PriceMax,
		CuisineTypes:    req.CuisineTypes,
		Diet:            models.DietPreference(req.Diet),
		Proteins:        req.Proteins,
		CaloriesEnabled: req.CaloriesEnabled,
		CaloriesMin:     req.CaloriesMin,
		CaloriesMax:     req.CaloriesMax,
		OpenNow:         req.OpenNow,
	}

	userID := ""
	if session, err := middleware.GetDinerSession(c); err == nil {
		userID = session.ID
	}

	restaurants, err := h.service.SearchRestaurants(c.Request.Context(), userID, daily, req.Preset)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurants": restaurants,
		"count":       len(restaurants),
	})
}

// GetRestaurant handles GET /api/v1/restaurants/:slug
func (h *RestaurantHandler) GetRestaurant(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		respondError(c, http.StatusBadRequest, "Missing restaurant slug", nil)
		return
	}

	result, err := h.service.GetRestaurantBySlug(c.Request.Context(), slug)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetRestaurantDishes handles GET /api/v1/restaurants/:slug/dishes.
// With ?filtered=true the menu is narrowed by the diner's permanent filters.
func (h *RestaurantHandler) GetRestaurantDishes(c *gin.Context) {
	slug := c.Param("slug")
	if slug == "" {
		respondError(c, http.StatusBadRequest, "Missing restaurant slug", nil)
		return
	}

	applyFilters := c.Query("filtered") == "true"

	userID := ""
	if session, err := middleware.GetDinerSession(c); err == nil {
		userID = session.ID
	}

	dishes, err := h.service.GetRestaurantDishes(c.Request.Context(), slug, userID, applyFilters)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dishes": dishes})
}
