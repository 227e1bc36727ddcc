package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebud/tastebud-api/internal/middleware"
	"github.com/tastebud/tastebud-api/internal/services"
)

// DinerAuthHandler handles diner session endpoints
type DinerAuthHandler struct {
	service services.DinerAuthServiceInterface
}

// NewDinerAuthHandler creates a new DinerAuthHandler
func NewDinerAuthHandler(service services.DinerAuthServiceInterface) *DinerAuthHandler {
	return &DinerAuthHandler{service: service}
}

// StartSessionRequest is the body of POST /api/v1/auth/session
type StartSessionRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
}

// StartSession handles POST /api/v1/auth/session
// Creates a guest diner identity and sets the session cookie
func (h *DinerAuthHandler) StartSession(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": ParseValidationErrors(err),
		})
		return
	}

	session, token, err := h.service.StartSession(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	middleware.SetSessionCookie(
		c,
		token,
		h.service.GetSessionTTL()*3600,
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"session": session,
	})
}

// EndSession handles POST /api/v1/auth/logout
// Clears the session cookie
func (h *DinerAuthHandler) EndSession(c *gin.Context) {
	middleware.ClearSessionCookie(
		c,
		h.service.GetCookieDomain(),
		h.service.GetCookieSecure(),
	)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
