package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/tastebud/tastebud-api/internal/middleware"
	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/internal/ratingflow"
	apperrors "github.com/tastebud/tastebud-api/pkg/errors"
)

// MockRatingFlowService implements RatingFlowServiceInterface for testing
type MockRatingFlowService struct {
	mock.Mock
}

func (m *MockRatingFlowService) StartSession(ctx context.Context, userID string) (ratingflow.View, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(ratingflow.View), args.Error(1)
}

func (m *MockRatingFlowService) GetSession(ctx context.Context, userID, sessionID string) (ratingflow.View, error) {
	args := m.Called(ctx, userID, sessionID)
	return args.Get(0).(ratingflow.View), args.Error(1)
}

func (m *MockRatingFlowService) SelectRestaurant(ctx context.Context, userID, sessionID, restaurantSlug string) (ratingflow.View, error) {
	args := m.Called(ctx, userID, sessionID, restaurantSlug)
	return args.Get(0).(ratingflow.View), args.Error(1)
}

func (m *MockRatingFlowService) ConfirmDishes(ctx context.Context, userID, sessionID string, dishIDs []string) (ratingflow.View, error) {
	args := m.Called(ctx, userID, sessionID, dishIDs)
	return args.Get(0).(ratingflow.View), args.Error(1)
}

func (m *MockRatingFlowService) RateDish(ctx context.Context, userID, sessionID string, input models.DishRatingInput) (ratingflow.View, error) {
	args := m.Called(ctx, userID, sessionID, input)
	return args.Get(0).(ratingflow.View), args.Error(1)
}

func (m *MockRatingFlowService) SubmitFeedback(ctx context.Context, userID, sessionID string, feedback *models.RestaurantFeedbackInput) (ratingflow.View, error) {
	args := m.Called(ctx, userID, sessionID, feedback)
	return args.Get(0).(ratingflow.View), args.Error(1)
}

func (m *MockRatingFlowService) SkipFeedback(ctx context.Context, userID, sessionID string) (ratingflow.View, error) {
	args := m.Called(ctx, userID, sessionID)
	return args.Get(0).(ratingflow.View), args.Error(1)
}

func (m *MockRatingFlowService) Back(ctx context.Context, userID, sessionID string) (ratingflow.View, error) {
	args := m.Called(ctx, userID, sessionID)
	return args.Get(0).(ratingflow.View), args.Error(1)
}

func (m *MockRatingFlowService) AbandonSession(ctx context.Context, userID, sessionID string) error {
	args := m.Called(ctx, userID, sessionID)
	return args.Error(0)
}

func (m *MockRatingFlowService) UploadPhoto(ctx context.Context, userID, sessionID, kind, photoData, contentType string) (string, error) {
	args := m.Called(ctx, userID, sessionID, kind, photoData, contentType)
	return args.String(0), args.Error(1)
}

// withDinerSession injects a diner session the way the session middleware does
func withDinerSession(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.DinerSessionContextKey, &models.DinerSession{ID: userID, Name: "Alex"})
		c.Next()
	}
}

func flowRouter(handler *RatingFlowHandler, userID string) *gin.Engine {
	router := gin.New()
	group := router.Group("/api/v1/rating-flow", withDinerSession(userID))
	group.POST("", handler.StartSession)
	group.GET("/:sessionId", handler.GetSession)
	group.DELETE("/:sessionId", handler.AbandonSession)
	group.POST("/:sessionId/restaurant", handler.SelectRestaurant)
	group.POST("/:sessionId/rate", handler.RateDish)
	group.POST("/:sessionId/feedback", handler.SubmitFeedback)
	return router
}

func TestRatingFlowHandler_StartSession(t *testing.T) {
	mockService := new(MockRatingFlowService)
	handler := NewRatingFlowHandler(mockService)
	router := flowRouter(handler, "diner-1")

	mockService.On("StartSession", mock.Anything, "diner-1").
		Return(ratingflow.View{SessionID: "flow-1", Step: ratingflow.StepSelectRestaurant}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/rating-flow", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var view ratingflow.View
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "flow-1", view.SessionID)
	assert.Equal(t, ratingflow.StepSelectRestaurant, view.Step)

	mockService.AssertExpectations(t)
}

func TestRatingFlowHandler_StartSessionRequiresSession(t *testing.T) {
	mockService := new(MockRatingFlowService)
	handler := NewRatingFlowHandler(mockService)

	// No session middleware
	router := gin.New()
	router.POST("/api/v1/rating-flow", handler.StartSession)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/rating-flow", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "StartSession")
}

func TestRatingFlowHandler_SelectRestaurant(t *testing.T) {
	mockService := new(MockRatingFlowService)
	handler := NewRatingFlowHandler(mockService)
	router := flowRouter(handler, "diner-1")

	mockService.On("SelectRestaurant", mock.Anything, "diner-1", "flow-1", "golden-wok").
		Return(ratingflow.View{SessionID: "flow-1", Step: ratingflow.StepSelectDishes}, nil)

	body, _ := json.Marshal(SelectRestaurantRequest{RestaurantSlug: "golden-wok"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/rating-flow/flow-1/restaurant", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestRatingFlowHandler_SelectRestaurantValidation(t *testing.T) {
	mockService := new(MockRatingFlowService)
	handler := NewRatingFlowHandler(mockService)
	router := flowRouter(handler, "diner-1")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/rating-flow/flow-1/restaurant", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Validation failed", resp["error"])
	mockService.AssertNotCalled(t, "SelectRestaurant")
}

func TestRatingFlowHandler_RateDishRejectsUnknownOpinion(t *testing.T) {
	mockService := new(MockRatingFlowService)
	handler := NewRatingFlowHandler(mockService)
	router := flowRouter(handler, "diner-1")

	body, _ := json.Marshal(RateDishRequest{DishID: "dish-1", Opinion: "loved"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/rating-flow/flow-1/rate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "RateDish")
}

func TestRatingFlowHandler_SubmitFeedbackAcceptsNegativeAnswer(t *testing.T) {
	mockService := new(MockRatingFlowService)
	handler := NewRatingFlowHandler(mockService)
	router := flowRouter(handler, "diner-1")

	mockService.On("SubmitFeedback", mock.Anything, "diner-1", "flow-1",
		mock.MatchedBy(func(f *models.RestaurantFeedbackInput) bool {
			return f.QuestionType == models.QuestionWouldReturn && !f.Response
		})).
		Return(ratingflow.View{SessionID: "flow-1", Step: ratingflow.StepComplete}, nil)

	// "response": false must survive binding, hence the pointer field
	body := []byte(`{"questionType":"would_return","response":false}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/v1/rating-flow/flow-1/feedback", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestRatingFlowHandler_GetSessionNotFound(t *testing.T) {
	mockService := new(MockRatingFlowService)
	handler := NewRatingFlowHandler(mockService)
	router := flowRouter(handler, "diner-1")

	mockService.On("GetSession", mock.Anything, "diner-1", "missing").
		Return(ratingflow.View{}, apperrors.NotFoundError("rating flow session"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/rating-flow/missing", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRatingFlowHandler_GetSessionForbiddenForOtherDiner(t *testing.T) {
	mockService := new(MockRatingFlowService)
	handler := NewRatingFlowHandler(mockService)
	router := flowRouter(handler, "diner-2")

	mockService.On("GetSession", mock.Anything, "diner-2", "flow-1").
		Return(ratingflow.View{}, apperrors.AccessDeniedError("session belongs to another user"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/v1/rating-flow/flow-1", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRatingFlowHandler_AbandonSession(t *testing.T) {
	mockService := new(MockRatingFlowService)
	handler := NewRatingFlowHandler(mockService)
	router := flowRouter(handler, "diner-1")

	mockService.On("AbandonSession", mock.Anything, "diner-1", "flow-1").Return(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/api/v1/rating-flow/flow-1", http.NoBody)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	mockService.AssertExpectations(t)
}
