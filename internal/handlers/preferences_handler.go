package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebud/tastebud-api/internal/middleware"
	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/internal/services"
)

// PreferencesHandler handles permanent filter HTTP requests
type PreferencesHandler struct {
	service services.PreferencesServiceInterface
}

// NewPreferencesHandler creates a new preferences handler
func NewPreferencesHandler(service services.PreferencesServiceInterface) *PreferencesHandler {
	return &PreferencesHandler{service: service}
}

// GetFilters handles GET /api/v1/preferences/filters
func (h *PreferencesHandler) GetFilters(c *gin.Context) {
	session, err := middleware.GetDinerSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	filters, err := h.service.GetFilters(c.Request.Context(), session.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, filters)
}

// SaveFilters handles PUT /api/v1/preferences/filters
func (h *PreferencesHandler) SaveFilters(c *gin.Context) {
	session, err := middleware.GetDinerSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	var filters models.PermanentFilters
	if err := c.ShouldBindJSON(&filters); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": ParseValidationErrors(err),
		})
		return
	}

	if err := h.service.SaveFilters(c.Request.Context(), session.ID, &filters); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
