package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebud/tastebud-api/internal/middleware"
	"github.com/tastebud/tastebud-api/internal/services"
)

// PointsHandler handles points ledger HTTP requests
type PointsHandler struct {
	service services.PointsServiceInterface
}

// NewPointsHandler creates a new points handler
func NewPointsHandler(service services.PointsServiceInterface) *PointsHandler {
	return &PointsHandler{service: service}
}

// GetSummary handles GET /api/v1/points
func (h *PointsHandler) GetSummary(c *gin.Context) {
	session, err := middleware.GetDinerSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return
	}

	summary, err := h.service.GetSummary(c.Request.Context(), session.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
