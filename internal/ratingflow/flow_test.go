package ratingflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebud/tastebud-api/internal/models"
)

func testRestaurant() *models.Restaurant {
	return &models.Restaurant{
		ID:   "rest-1",
		Slug: "golden-wok",
		Name: "Golden Wok",
	}
}

func testDishes() []*models.Dish {
	return []*models.Dish{
		{ID: "dish-1", RestaurantID: "rest-1", Name: "Kung Pao Chicken"},
		{ID: "dish-2", RestaurantID: "rest-1", Name: "Mapo Tofu"},
		{ID: "dish-3", RestaurantID: "rest-1", Name: "Spring Rolls"},
	}
}

func sessionAtRateDish(t *testing.T, dishIDs []string) *Session {
	t.Helper()

	s := NewSession("user-1", 20)
	require.NoError(t, s.SelectRestaurant(testRestaurant(), testDishes(), true))
	require.NoError(t, s.ConfirmDishes(dishIDs))
	return s
}

func likedRating(dishID string) models.DishRatingInput {
	return models.DishRatingInput{
		DishID:  dishID,
		Opinion: models.OpinionLiked,
		Tags:    []string{"tasty"},
	}
}

func TestNewSessionDrawsValidQuestion(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := NewSession("user-1", 20)
		assert.True(t, s.Snapshot().Question.Valid())
	}
}

func TestQuestionStableAcrossBackNavigation(t *testing.T) {
	s := sessionAtRateDish(t, []string{"dish-1", "dish-2"})
	question := s.Snapshot().Question

	_, err := s.RateDish(likedRating("dish-1"))
	require.NoError(t, err)
	_, err = s.Back()
	require.NoError(t, err)
	_, err = s.Back()
	require.NoError(t, err)

	assert.Equal(t, question, s.Snapshot().Question)
}

func TestLinearFlowThroughAllDishes(t *testing.T) {
	s := sessionAtRateDish(t, []string{"dish-1", "dish-2", "dish-3"})

	step, err := s.RateDish(likedRating("dish-1"))
	require.NoError(t, err)
	assert.Equal(t, StepRateDish, step)
	assert.Equal(t, 1, s.Snapshot().CurrentDishIndex)

	step, err = s.RateDish(models.DishRatingInput{DishID: "dish-2", Opinion: models.OpinionOkay})
	require.NoError(t, err)
	assert.Equal(t, StepRateDish, step)

	step, err = s.RateDish(models.DishRatingInput{
		DishID:  "dish-3",
		Opinion: models.OpinionDisliked,
		Tags:    []string{"too_salty"},
	})
	require.NoError(t, err)
	assert.Equal(t, StepRestaurantQuestion, step)
	assert.Equal(t, 3, s.Snapshot().RatedDishes)
}

func TestConfirmDishesRejectsEmptySelection(t *testing.T) {
	s := NewSession("user-1", 20)
	require.NoError(t, s.SelectRestaurant(testRestaurant(), testDishes(), false))

	err := s.ConfirmDishes(nil)
	assert.ErrorIs(t, err, ErrNoDishesSelected)
}

func TestConfirmDishesRejectsUnknownDish(t *testing.T) {
	s := NewSession("user-1", 20)
	require.NoError(t, s.SelectRestaurant(testRestaurant(), testDishes(), false))

	err := s.ConfirmDishes([]string{"dish-1", "dish-99"})
	assert.ErrorIs(t, err, ErrUnknownDish)
}

func TestConfirmDishesEnforcesLimit(t *testing.T) {
	s := NewSession("user-1", 2)
	require.NoError(t, s.SelectRestaurant(testRestaurant(), testDishes(), false))

	err := s.ConfirmDishes([]string{"dish-1", "dish-2", "dish-3"})
	assert.ErrorIs(t, err, ErrTooManyDishes)
}

func TestRateDishRejectsWrongDish(t *testing.T) {
	s := sessionAtRateDish(t, []string{"dish-1", "dish-2"})

	_, err := s.RateDish(likedRating("dish-2"))
	assert.ErrorIs(t, err, ErrDishMismatch)
}

func TestRateDishTagVocabulary(t *testing.T) {
	tests := []struct {
		name    string
		opinion models.Opinion
		tags    []string
		wantErr error
	}{
		{"liked with positive tag", models.OpinionLiked, []string{"tasty"}, nil},
		{"liked with negative tag", models.OpinionLiked, []string{"bland"}, ErrTagNotAllowed},
		{"disliked with negative tag", models.OpinionDisliked, []string{"overpriced"}, nil},
		{"disliked with positive tag", models.OpinionDisliked, []string{"tasty"}, ErrTagNotAllowed},
		{"okay with no tags", models.OpinionOkay, nil, nil},
		{"okay with tags", models.OpinionOkay, []string{"tasty"}, ErrTagNotAllowed},
		{"unknown tag", models.OpinionLiked, []string{"spicy"}, ErrTagNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sessionAtRateDish(t, []string{"dish-1"})
			_, err := s.RateDish(models.DishRatingInput{
				DishID:  "dish-1",
				Opinion: tt.opinion,
				Tags:    tt.tags,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBackFromSelectDishesClearsRestaurant(t *testing.T) {
	s := NewSession("user-1", 20)
	require.NoError(t, s.SelectRestaurant(testRestaurant(), testDishes(), true))

	step, err := s.Back()
	require.NoError(t, err)
	assert.Equal(t, StepSelectRestaurant, step)

	view := s.Snapshot()
	assert.Nil(t, view.Restaurant)
	assert.False(t, view.IsFirstVisit)
}

func TestBackMidRatingDropsLastRating(t *testing.T) {
	s := sessionAtRateDish(t, []string{"dish-1", "dish-2", "dish-3"})

	_, err := s.RateDish(likedRating("dish-1"))
	require.NoError(t, err)
	_, err = s.RateDish(models.DishRatingInput{DishID: "dish-2", Opinion: models.OpinionOkay})
	require.NoError(t, err)

	step, err := s.Back()
	require.NoError(t, err)
	assert.Equal(t, StepRateDish, step)

	view := s.Snapshot()
	assert.Equal(t, 1, view.CurrentDishIndex)
	assert.Equal(t, 1, view.RatedDishes)
	assert.Equal(t, "dish-2", view.CurrentDish.ID)
}

func TestBackAtFirstDishReturnsToSelection(t *testing.T) {
	s := sessionAtRateDish(t, []string{"dish-1", "dish-2"})

	step, err := s.Back()
	require.NoError(t, err)
	assert.Equal(t, StepSelectDishes, step)
	assert.Equal(t, 0, s.Snapshot().RatedDishes)

	// Restaurant stays selected, the dish list is shown again.
	assert.NotNil(t, s.Snapshot().Restaurant)
}

func TestBackFromQuestionTargetsLastDish(t *testing.T) {
	s := sessionAtRateDish(t, []string{"dish-1", "dish-2", "dish-3"})

	for _, id := range []string{"dish-1", "dish-2", "dish-3"} {
		_, err := s.RateDish(likedRating(id))
		require.NoError(t, err)
	}
	require.Equal(t, StepRestaurantQuestion, s.Snapshot().Step)

	step, err := s.Back()
	require.NoError(t, err)
	assert.Equal(t, StepRateDish, step)

	view := s.Snapshot()
	assert.Equal(t, 2, view.CurrentDishIndex, "must target the last dish, not the first")
	assert.Equal(t, "dish-3", view.CurrentDish.ID)
	assert.Equal(t, 2, view.RatedDishes, "last rating must be dropped for re-rating")

	// Re-rate and land back on the question.
	step, err = s.RateDish(models.DishRatingInput{DishID: "dish-3", Opinion: models.OpinionOkay})
	require.NoError(t, err)
	assert.Equal(t, StepRestaurantQuestion, step)
	assert.Equal(t, 3, s.Snapshot().RatedDishes)
}

func TestBackBumpsGeneration(t *testing.T) {
	s := sessionAtRateDish(t, []string{"dish-1", "dish-2"})
	gen := s.Generation()

	_, err := s.RateDish(likedRating("dish-1"))
	require.NoError(t, err)
	assert.True(t, s.GenerationMatches(gen), "rating forward must not invalidate async work")

	_, err = s.Back()
	require.NoError(t, err)
	assert.False(t, s.GenerationMatches(gen))
}

func TestRatingsTrackDishCursor(t *testing.T) {
	s := sessionAtRateDish(t, []string{"dish-1", "dish-2", "dish-3"})

	view := s.Snapshot()
	assert.Equal(t, view.CurrentDishIndex, view.RatedDishes)

	_, err := s.RateDish(likedRating("dish-1"))
	require.NoError(t, err)
	view = s.Snapshot()
	assert.Equal(t, view.CurrentDishIndex, view.RatedDishes)

	_, err = s.Back()
	require.NoError(t, err)
	view = s.Snapshot()
	assert.Equal(t, view.CurrentDishIndex, view.RatedDishes)
}

func TestBuildSubmissionWithFeedback(t *testing.T) {
	s := sessionAtRateDish(t, []string{"dish-1"})
	_, err := s.RateDish(likedRating("dish-1"))
	require.NoError(t, err)

	feedback := &models.RestaurantFeedbackInput{
		QuestionType: s.Snapshot().Question,
		Response:     true,
	}
	sub, err := s.BuildSubmission(feedback)
	require.NoError(t, err)

	assert.Equal(t, "user-1", sub.UserID)
	assert.Equal(t, "rest-1", sub.RestaurantID)
	assert.Equal(t, "rest-1", sub.Feedback.RestaurantID)
	assert.Len(t, sub.DishRatings, 1)
	assert.True(t, sub.IsFirstVisit)

	// Building does not complete: the session stays on the question until
	// persistence succeeds.
	assert.Equal(t, StepRestaurantQuestion, s.Snapshot().Step)
}

func TestBuildSubmissionRejectsWrongQuestion(t *testing.T) {
	s := sessionAtRateDish(t, []string{"dish-1"})
	_, err := s.RateDish(likedRating("dish-1"))
	require.NoError(t, err)

	wrong := models.QuestionServiceFriendly
	if s.Snapshot().Question == wrong {
		wrong = models.QuestionWouldReturn
	}

	_, err = s.BuildSubmission(&models.RestaurantFeedbackInput{QuestionType: wrong, Response: true})
	assert.ErrorIs(t, err, ErrQuestionMismatch)
}

func TestSkipOmitsFeedback(t *testing.T) {
	s := sessionAtRateDish(t, []string{"dish-1"})
	_, err := s.RateDish(likedRating("dish-1"))
	require.NoError(t, err)

	sub, err := s.BuildSubmission(nil)
	require.NoError(t, err)

	assert.Nil(t, sub.Feedback)
	assert.Equal(t, 0, sub.Points.RestaurantFeedback)
	assert.Equal(t, 0, sub.Points.RestaurantPhoto)
}

func TestCompleteCommitsPoints(t *testing.T) {
	s := sessionAtRateDish(t, []string{"dish-1"})
	_, err := s.RateDish(likedRating("dish-1"))
	require.NoError(t, err)

	sub, err := s.BuildSubmission(nil)
	require.NoError(t, err)

	require.NoError(t, s.Complete(sub))
	view := s.Snapshot()
	assert.Equal(t, StepComplete, view.Step)
	require.NotNil(t, view.PointsEarned)
	assert.Equal(t, sub.Points.Total, view.PointsEarned.Total)

	// No further mutation after completion.
	_, err = s.Back()
	assert.ErrorIs(t, err, ErrAlreadyComplete)
	_, err = s.RateDish(likedRating("dish-1"))
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestActionsRejectedInWrongStep(t *testing.T) {
	s := NewSession("user-1", 20)

	err := s.ConfirmDishes([]string{"dish-1"})
	assert.ErrorIs(t, err, ErrWrongStep)

	_, err = s.RateDish(likedRating("dish-1"))
	assert.ErrorIs(t, err, ErrWrongStep)

	_, err = s.BuildSubmission(nil)
	assert.ErrorIs(t, err, ErrWrongStep)

	_, err = s.Back()
	assert.ErrorIs(t, err, ErrCannotGoBack)
}
