package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tastebud/tastebud-api/config"
	"github.com/tastebud/tastebud-api/internal/cache"
	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/internal/ratingflow"
	"github.com/tastebud/tastebud-api/internal/services"
	apperrors "github.com/tastebud/tastebud-api/pkg/errors"
)

type ratingFlowFixture struct {
	service     *services.RatingFlowService
	restaurants *MockRestaurantDataSource
	dishes      *MockDishDataSource
	visits      *MockVisitDataSource
	cfg         *config.Config
}

func newRatingFlowFixture() *ratingFlowFixture {
	restaurants := new(MockRestaurantDataSource)
	dishes := new(MockDishDataSource)
	visits := new(MockVisitDataSource)

	cfg := &config.Config{
		RatingFlow: config.RatingFlowConfig{
			SessionTTLMinutes: 30,
			MaxSelectedDishes: 20,
		},
	}

	// Uninitialized cache: the service falls back to the data sources.
	restaurantCache := cache.NewRestaurantCache(restaurants, dishes, 600)
	sessions := ratingflow.NewSessionStore(30 * time.Minute)

	service := services.NewRatingFlowService(
		sessions, restaurantCache, restaurants, dishes, visits,
		nil, cfg, new(MockHTTPClient),
	)

	return &ratingFlowFixture{
		service:     service,
		restaurants: restaurants,
		dishes:      dishes,
		visits:      visits,
		cfg:         cfg,
	}
}

func fixtureRestaurant() *models.Restaurant {
	return &models.Restaurant{ID: "rest-1", Slug: "golden-wok", Name: "Golden Wok"}
}

func fixtureDishes() []*models.Dish {
	return []*models.Dish{
		{ID: "dish-1", RestaurantID: "rest-1", Name: "Kung Pao Chicken"},
		{ID: "dish-2", RestaurantID: "rest-1", Name: "Mapo Tofu"},
	}
}

// driveToQuestion walks a session up to the restaurant question step
func driveToQuestion(t *testing.T, f *ratingFlowFixture, ctx context.Context, userID string) string {
	t.Helper()

	f.restaurants.On("GetRestaurantBySlug", ctx, "golden-wok").Return(fixtureRestaurant(), nil).Once()
	f.dishes.On("GetDishesByRestaurant", ctx, "rest-1").Return(fixtureDishes(), nil).Once()
	f.visits.On("HasVisited", ctx, userID, "rest-1").Return(false, nil).Once()

	view, err := f.service.StartSession(ctx, userID)
	require.NoError(t, err)
	sessionID := view.SessionID

	view, err = f.service.SelectRestaurant(ctx, userID, sessionID, "golden-wok")
	require.NoError(t, err)
	require.Equal(t, ratingflow.StepSelectDishes, view.Step)

	view, err = f.service.ConfirmDishes(ctx, userID, sessionID, []string{"dish-1", "dish-2"})
	require.NoError(t, err)
	require.Equal(t, ratingflow.StepRateDish, view.Step)

	view, err = f.service.RateDish(ctx, userID, sessionID, models.DishRatingInput{
		DishID: "dish-1", Opinion: models.OpinionLiked, Tags: []string{"tasty"},
	})
	require.NoError(t, err)
	require.Equal(t, ratingflow.StepRateDish, view.Step)

	view, err = f.service.RateDish(ctx, userID, sessionID, models.DishRatingInput{
		DishID: "dish-2", Opinion: models.OpinionOkay,
	})
	require.NoError(t, err)
	require.Equal(t, ratingflow.StepRestaurantQuestion, view.Step)

	return sessionID
}

func TestRatingFlowService_CompleteWithFeedback(t *testing.T) {
	f := newRatingFlowFixture()
	ctx := context.Background()

	sessionID := driveToQuestion(t, f, ctx, "user-1")

	view, err := f.service.GetSession(ctx, "user-1", sessionID)
	require.NoError(t, err)

	f.visits.On("CreateVisit", ctx, mock.AnythingOfType("*models.RatingSubmission")).Return("visit-1", nil).Once()
	f.visits.On("SaveExperienceResponse", ctx, "visit-1", mock.AnythingOfType("*models.RestaurantFeedbackInput")).Return(nil).Once()
	// 2 dishes rated (20) + 1 tagged dish (5) + feedback (5) + first visit (20)
	f.visits.On("AwardPoints", ctx, "user-1", "visit-1", 50).Return(nil).Once()

	view, err = f.service.SubmitFeedback(ctx, "user-1", sessionID, &models.RestaurantFeedbackInput{
		QuestionType: view.Question,
		Response:     true,
	})
	require.NoError(t, err)

	assert.Equal(t, ratingflow.StepComplete, view.Step)
	require.NotNil(t, view.PointsEarned)
	assert.Equal(t, 50, view.PointsEarned.Total)

	f.visits.AssertExpectations(t)
}

func TestRatingFlowService_SkipOmitsFeedbackSave(t *testing.T) {
	f := newRatingFlowFixture()
	ctx := context.Background()

	sessionID := driveToQuestion(t, f, ctx, "user-1")

	f.visits.On("CreateVisit", ctx, mock.AnythingOfType("*models.RatingSubmission")).Return("visit-1", nil).Once()
	// 2 dishes (20) + 1 tagged (5) + first visit (20), no feedback components
	f.visits.On("AwardPoints", ctx, "user-1", "visit-1", 45).Return(nil).Once()

	view, err := f.service.SkipFeedback(ctx, "user-1", sessionID)
	require.NoError(t, err)

	assert.Equal(t, ratingflow.StepComplete, view.Step)
	assert.Equal(t, 45, view.PointsEarned.Total)

	f.visits.AssertExpectations(t)
	f.visits.AssertNotCalled(t, "SaveExperienceResponse")
}

func TestRatingFlowService_VisitFailureAbortsSubmission(t *testing.T) {
	f := newRatingFlowFixture()
	ctx := context.Background()

	sessionID := driveToQuestion(t, f, ctx, "user-1")

	f.visits.On("CreateVisit", ctx, mock.AnythingOfType("*models.RatingSubmission")).
		Return("", errors.New("connection refused")).Once()

	_, err := f.service.SkipFeedback(ctx, "user-1", sessionID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))

	// The session must stay on the question so the user can retry.
	view, err := f.service.GetSession(ctx, "user-1", sessionID)
	require.NoError(t, err)
	assert.Equal(t, ratingflow.StepRestaurantQuestion, view.Step)

	f.visits.AssertNotCalled(t, "AwardPoints")
}

func TestRatingFlowService_FeedbackSaveFailureIsNonFatal(t *testing.T) {
	f := newRatingFlowFixture()
	ctx := context.Background()

	sessionID := driveToQuestion(t, f, ctx, "user-1")

	view, err := f.service.GetSession(ctx, "user-1", sessionID)
	require.NoError(t, err)

	f.visits.On("CreateVisit", ctx, mock.AnythingOfType("*models.RatingSubmission")).Return("visit-1", nil).Once()
	f.visits.On("SaveExperienceResponse", ctx, "visit-1", mock.AnythingOfType("*models.RestaurantFeedbackInput")).
		Return(errors.New("write failed")).Once()
	f.visits.On("AwardPoints", ctx, "user-1", "visit-1", 50).Return(nil).Once()

	view, err = f.service.SubmitFeedback(ctx, "user-1", sessionID, &models.RestaurantFeedbackInput{
		QuestionType: view.Question,
		Response:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, ratingflow.StepComplete, view.Step)

	f.visits.AssertExpectations(t)
}

func TestRatingFlowService_FeedbackSaveFailureFatalWhenConfigured(t *testing.T) {
	f := newRatingFlowFixture()
	f.cfg.RatingFlow.FeedbackSaveFatal = true
	ctx := context.Background()

	sessionID := driveToQuestion(t, f, ctx, "user-1")

	view, err := f.service.GetSession(ctx, "user-1", sessionID)
	require.NoError(t, err)

	f.visits.On("CreateVisit", ctx, mock.AnythingOfType("*models.RatingSubmission")).Return("visit-1", nil).Once()
	f.visits.On("SaveExperienceResponse", ctx, "visit-1", mock.AnythingOfType("*models.RestaurantFeedbackInput")).
		Return(errors.New("write failed")).Once()

	_, err = f.service.SubmitFeedback(ctx, "user-1", sessionID, &models.RestaurantFeedbackInput{
		QuestionType: view.Question,
		Response:     true,
	})
	require.Error(t, err)

	f.visits.AssertNotCalled(t, "AwardPoints")
}

func TestRatingFlowService_PointsAwardFailureIsNonFatal(t *testing.T) {
	f := newRatingFlowFixture()
	ctx := context.Background()

	sessionID := driveToQuestion(t, f, ctx, "user-1")

	f.visits.On("CreateVisit", ctx, mock.AnythingOfType("*models.RatingSubmission")).Return("visit-1", nil).Once()
	f.visits.On("AwardPoints", ctx, "user-1", "visit-1", 45).Return(errors.New("write failed")).Once()

	view, err := f.service.SkipFeedback(ctx, "user-1", sessionID)
	require.NoError(t, err)
	assert.Equal(t, ratingflow.StepComplete, view.Step)
}

func TestRatingFlowService_SelectRestaurantRequiresDishes(t *testing.T) {
	f := newRatingFlowFixture()
	ctx := context.Background()

	f.restaurants.On("GetRestaurantBySlug", ctx, "golden-wok").Return(fixtureRestaurant(), nil).Once()
	f.dishes.On("GetDishesByRestaurant", ctx, "rest-1").Return([]*models.Dish{}, nil).Once()

	view, err := f.service.StartSession(ctx, "user-1")
	require.NoError(t, err)

	_, err = f.service.SelectRestaurant(ctx, "user-1", view.SessionID, "golden-wok")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))

	f.visits.AssertNotCalled(t, "HasVisited")
}

func TestRatingFlowService_ReturningVisitorGetsNoBonus(t *testing.T) {
	f := newRatingFlowFixture()
	ctx := context.Background()

	f.restaurants.On("GetRestaurantBySlug", ctx, "golden-wok").Return(fixtureRestaurant(), nil).Once()
	f.dishes.On("GetDishesByRestaurant", ctx, "rest-1").Return(fixtureDishes(), nil).Once()
	f.visits.On("HasVisited", ctx, "user-1", "rest-1").Return(true, nil).Once()

	view, err := f.service.StartSession(ctx, "user-1")
	require.NoError(t, err)
	sessionID := view.SessionID

	view, err = f.service.SelectRestaurant(ctx, "user-1", sessionID, "golden-wok")
	require.NoError(t, err)
	assert.False(t, view.IsFirstVisit)
}

func TestRatingFlowService_SessionOwnership(t *testing.T) {
	f := newRatingFlowFixture()
	ctx := context.Background()

	view, err := f.service.StartSession(ctx, "user-1")
	require.NoError(t, err)

	_, err = f.service.GetSession(ctx, "user-2", view.SessionID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAccessDenied))
}

func TestRatingFlowService_UnknownSession(t *testing.T) {
	f := newRatingFlowFixture()
	ctx := context.Background()

	_, err := f.service.GetSession(ctx, "user-1", "no-such-session")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestRatingFlowService_BackFromQuestionThenResubmit(t *testing.T) {
	f := newRatingFlowFixture()
	ctx := context.Background()

	sessionID := driveToQuestion(t, f, ctx, "user-1")

	view, err := f.service.Back(ctx, "user-1", sessionID)
	require.NoError(t, err)
	assert.Equal(t, ratingflow.StepRateDish, view.Step)
	assert.Equal(t, "dish-2", view.CurrentDish.ID)

	view, err = f.service.RateDish(ctx, "user-1", sessionID, models.DishRatingInput{
		DishID: "dish-2", Opinion: models.OpinionLiked, Tags: []string{"would_order_again"},
	})
	require.NoError(t, err)
	require.Equal(t, ratingflow.StepRestaurantQuestion, view.Step)

	f.visits.On("CreateVisit", ctx, mock.AnythingOfType("*models.RatingSubmission")).Return("visit-1", nil).Once()
	// 2 dishes (20) + 2 tagged dishes (10) + first visit (20)
	f.visits.On("AwardPoints", ctx, "user-1", "visit-1", 50).Return(nil).Once()

	view, err = f.service.SkipFeedback(ctx, "user-1", sessionID)
	require.NoError(t, err)
	assert.Equal(t, ratingflow.StepComplete, view.Step)
	assert.Equal(t, 50, view.PointsEarned.Total)

	f.visits.AssertExpectations(t)
}
