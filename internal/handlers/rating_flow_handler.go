package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebud/tastebud-api/internal/middleware"
	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/internal/services"
)

// RatingFlowHandler handles the rating wizard HTTP requests. Every endpoint
// requires a diner session; the session cookie identifies whose flow it is.
type RatingFlowHandler struct {
	service services.RatingFlowServiceInterface
}

// NewRatingFlowHandler creates a new rating flow handler
func NewRatingFlowHandler(service services.RatingFlowServiceInterface) *RatingFlowHandler {
	return &RatingFlowHandler{service: service}
}

// SelectRestaurantRequest is the body of POST .../restaurant
type SelectRestaurantRequest struct {
	RestaurantSlug string `json:"restaurantSlug" binding:"required"`
}

// ConfirmDishesRequest is the body of POST .../dishes
type ConfirmDishesRequest struct {
	DishIDs []string `json:"dishIds" binding:"required,min=1"`
}

// RateDishRequest is the body of POST .../rate
type RateDishRequest struct {
	DishID   string   `json:"dishId" binding:"required"`
	Opinion  string   `json:"opinion" binding:"required,oneof=liked okay disliked"`
	Tags     []string `json:"tags"`
	PhotoURL string   `json:"photoUrl" binding:"omitempty,url"`
}

// FeedbackRequest is the body of POST .../feedback
type FeedbackRequest struct {
	QuestionType string `json:"questionType" binding:"required"`
	Response     *bool  `json:"response" binding:"required"`
	PhotoURL     string `json:"photoUrl" binding:"omitempty,url"`
}

// UploadPhotoRequest is the body of POST .../photos
type UploadPhotoRequest struct {
	Kind        string `json:"kind" binding:"required,oneof=dish restaurant"`
	PhotoData   string `json:"photoData" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// StartSession handles POST /api/v1/rating-flow
func (h *RatingFlowHandler) StartSession(c *gin.Context) {
	session, err := h.dinerSession(c)
	if err != nil {
		return
	}

	view, err := h.service.StartSession(c.Request.Context(), session.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetSession handles GET /api/v1/rating-flow/:sessionId
func (h *RatingFlowHandler) GetSession(c *gin.Context) {
	session, err := h.dinerSession(c)
	if err != nil {
		return
	}

	view, err := h.service.GetSession(c.Request.Context(), session.ID, c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SelectRestaurant handles POST /api/v1/rating-flow/:sessionId/restaurant
func (h *RatingFlowHandler) SelectRestaurant(c *gin.Context) {
	session, err := h.dinerSession(c)
	if err != nil {
		return
	}

	var req SelectRestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": ParseValidationErrors(err),
		})
		return
	}

	view, err := h.service.SelectRestaurant(c.Request.Context(), session.ID, c.Param("sessionId"), req.RestaurantSlug)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ConfirmDishes handles POST /api/v1/rating-flow/:sessionId/dishes
func (h *RatingFlowHandler) ConfirmDishes(c *gin.Context) {
	session, err := h.dinerSession(c)
	if err != nil {
		return
	}

	var req ConfirmDishesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": ParseValidationErrors(err),
		})
		return
	}

	view, err := h.service.ConfirmDishes(c.Request.Context(), session.ID, c.Param("sessionId"), req.DishIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// RateDish handles POST /api/v1/rating-flow/:sessionId/rate
func (h *RatingFlowHandler) RateDish(c *gin.Context) {
	session, err := h.dinerSession(c)
	if err != nil {
		return
	}

	var req RateDishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": ParseValidationErrors(err),
		})
		return
	}

	input := models.DishRatingInput{
		DishID:   req.DishID,
		Opinion:  models.Opinion(req.Opinion),
		Tags:     req.Tags,
		PhotoURL: req.PhotoURL,
	}

	view, err := h.service.RateDish(c.Request.Context(), session.ID, c.Param("sessionId"), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitFeedback handles POST /api/v1/rating-flow/:sessionId/feedback
func (h *RatingFlowHandler) SubmitFeedback(c *gin.Context) {
	session, err := h.dinerSession(c)
	if err != nil {
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": ParseValidationErrors(err),
		})
		return
	}

	feedback := &models.RestaurantFeedbackInput{
		QuestionType: models.QuestionType(req.QuestionType),
		Response:     *req.Response,
		PhotoURL:     req.PhotoURL,
	}

	view, err := h.service.SubmitFeedback(c.Request.Context(), session.ID, c.Param("sessionId"), feedback)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SkipFeedback handles POST /api/v1/rating-flow/:sessionId/skip
func (h *RatingFlowHandler) SkipFeedback(c *gin.Context) {
	session, err := h.dinerSession(c)
	if err != nil {
		return
	}

	view, err := h.service.SkipFeedback(c.Request.Context(), session.ID, c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Back handles POST /api/v1/rating-flow/:sessionId/back
func (h *RatingFlowHandler) Back(c *gin.Context) {
	session, err := h.dinerSession(c)
	if err != nil {
		return
	}

	view, err := h.service.Back(c.Request.Context(), session.ID, c.Param("sessionId"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// AbandonSession handles DELETE /api/v1/rating-flow/:sessionId
func (h *RatingFlowHandler) AbandonSession(c *gin.Context) {
	session, err := h.dinerSession(c)
	if err != nil {
		return
	}

	if err := h.service.AbandonSession(c.Request.Context(), session.ID, c.Param("sessionId")); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadPhoto handles POST /api/v1/rating-flow/:sessionId/photos
func (h *RatingFlowHandler) UploadPhoto(c *gin.Context) {
	session, err := h.dinerSession(c)
	if err != nil {
		return
	}

	var req UploadPhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation failed",
			"details": ParseValidationErrors(err),
		})
		return
	}

	url, err := h.service.UploadPhoto(c.Request.Context(), session.ID, c.Param("sessionId"), req.Kind, req.PhotoData, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"photoUrl": url})
}

// dinerSession resolves the diner session or writes a 401 response
func (h *RatingFlowHandler) dinerSession(c *gin.Context) (*models.DinerSession, error) {
	session, err := middleware.GetDinerSession(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized", err)
		return nil, err
	}
	return session, nil
}
