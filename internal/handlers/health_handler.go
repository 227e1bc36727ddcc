package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	restaurantCacheReady func() bool
}

func NewHealthHandler(restaurantCacheReady func() bool) *HealthHandler {
	return &HealthHandler{
		restaurantCacheReady: restaurantCacheReady,
	}
}

func (h *HealthHandler) Healthcheck(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, max-age=0, must-revalidate")

	// Check if the restaurant cache is ready
	if !h.restaurantCacheReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "restaurant cache not initialized",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
