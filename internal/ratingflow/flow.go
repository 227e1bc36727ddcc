// Package ratingflow implements the five-step rating wizard: a linear state
// machine that walks a user through rating a restaurant visit and the dishes
// they tried, accumulating input and producing one aggregate submission plus
// a deterministic points tally.
package ratingflow

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tastebud/tastebud-api/internal/models"
)

// Step identifies one state of the rating flow.
type Step string

const (
	StepSelectRestaurant   Step = "select_restaurant"
	StepSelectDishes       Step = "select_dishes"
	StepRateDish           Step = "rate_dish"
	StepRestaurantQuestion Step = "restaurant_question"
	StepComplete           Step = "complete"
)

var (
	ErrWrongStep          = errors.New("action not valid in current step")
	ErrNoDishesSelected   = errors.New("at least one dish must be selected")
	ErrTooManyDishes      = errors.New("too many dishes selected")
	ErrUnknownDish        = errors.New("dish does not belong to the selected restaurant")
	ErrDishMismatch       = errors.New("rating does not target the current dish")
	ErrInvalidOpinion     = errors.New("invalid opinion")
	ErrTagNotAllowed      = errors.New("tag not allowed for this opinion")
	ErrQuestionMismatch   = errors.New("answer does not match the session question")
	ErrAlreadyComplete    = errors.New("rating flow already complete")
	ErrCannotGoBack       = errors.New("cannot navigate back from this step")
	ErrSubmissionNotBuilt = errors.New("submission must be built before completing")
)

// Session is the working state of one rating-flow wizard. It is created when
// the flow opens, mutated only through its methods, and discarded when the
// flow completes or the session expires. Nothing is persisted until the final
// submission.
type Session struct {
	mu sync.Mutex

	id        string
	userID    string
	step      Step
	createdAt time.Time

	selectedRestaurant *models.Restaurant
	allDishes          []*models.Dish
	selectedDishes     []*models.Dish
	currentDishIndex   int
	dishRatings        []models.DishRatingInput
	restaurantFeedback *models.RestaurantFeedbackInput
	randomQuestion     models.QuestionType
	isFirstVisit       bool
	pointsEarned       *models.PointsBreakdown

	// generation guards against stale async results: it is bumped on every
	// backward navigation, and results captured under an older generation are
	// dropped by the caller.
	generation uint64

	maxSelectedDishes int
}

// NewSession creates a session in the select_restaurant step. The restaurant
// question is drawn uniformly from the fixed enumeration once, at session
// start, and is never re-rolled (including across back-navigation).
func NewSession(userID string, maxSelectedDishes int) *Session {
	//nolint:gosec // G404: question selection is not security sensitive
	question := models.RestaurantQuestionTypes[rand.Intn(len(models.RestaurantQuestionTypes))]

	return &Session{
		id:                uuid.NewString(),
		userID:            userID,
		step:              StepSelectRestaurant,
		createdAt:         time.Now(),
		randomQuestion:    question,
		dishRatings:       []models.DishRatingInput{},
		maxSelectedDishes: maxSelectedDishes,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// UserID returns the owning user.
func (s *Session) UserID() string { return s.userID }

// Generation returns the current stale-async guard value.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// GenerationMatches reports whether the given guard value is still current.
func (s *Session) GenerationMatches(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// SelectRestaurant commits the select_restaurant → select_dishes transition.
// The caller resolves the restaurant, its full dish list and the first-visit
// status before calling; the transition only commits once all three are known.
func (s *Session) SelectRestaurant(r *models.Restaurant, dishes []*models.Dish, isFirstVisit bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepSelectRestaurant {
		return fmt.Errorf("%w: step=%s", ErrWrongStep, s.step)
	}

	s.selectedRestaurant = r
	s.allDishes = dishes
	s.isFirstVisit = isFirstVisit
	s.step = StepSelectDishes
	return nil
}

// ConfirmDishes commits the select_dishes → rate_dish transition with a
// non-empty dish selection and resets the dish cursor to 0.
func (s *Session) ConfirmDishes(dishIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepSelectDishes {
		return fmt.Errorf("%w: step=%s", ErrWrongStep, s.step)
	}
	if len(dishIDs) == 0 {
		return ErrNoDishesSelected
	}
	if s.maxSelectedDishes > 0 && len(dishIDs) > s.maxSelectedDishes {
		return fmt.Errorf("%w: %d selected, max %d", ErrTooManyDishes, len(dishIDs), s.maxSelectedDishes)
	}

	byID := make(map[string]*models.Dish, len(s.allDishes))
	for _, d := range s.allDishes {
		byID[d.ID] = d
	}

	selected := make([]*models.Dish, 0, len(dishIDs))
	seen := make(map[string]bool, len(dishIDs))
	for _, id := range dishIDs {
		dish, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownDish, id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		selected = append(selected, dish)
	}

	s.selectedDishes = selected
	s.currentDishIndex = 0
	s.dishRatings = s.dishRatings[:0]
	s.step = StepRateDish
	return nil
}

// RateDish appends one dish rating. While more selected dishes remain the
// session stays in rate_dish with the cursor advanced; after the last dish it
// moves to restaurant_question. Returns the step entered.
func (s *Session) RateDish(input models.DishRatingInput) (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepRateDish {
		return s.step, fmt.Errorf("%w: step=%s", ErrWrongStep, s.step)
	}

	current := s.selectedDishes[s.currentDishIndex]
	if input.DishID != current.ID {
		return s.step, fmt.Errorf("%w: expected %s, got %s", ErrDishMismatch, current.ID, input.DishID)
	}
	if !input.Opinion.Valid() {
		return s.step, fmt.Errorf("%w: %q", ErrInvalidOpinion, input.Opinion)
	}
	if err := validateTags(input.Opinion, input.Tags); err != nil {
		return s.step, err
	}

	input.DishName = current.Name
	s.dishRatings = append(s.dishRatings, input)

	if s.currentDishIndex < len(s.selectedDishes)-1 {
		s.currentDishIndex++
		return StepRateDish, nil
	}

	s.step = StepRestaurantQuestion
	return StepRestaurantQuestion, nil
}

// Back performs user-initiated backward navigation:
//   - select_dishes → select_restaurant, clearing the selected restaurant;
//   - rate_dish at index i>0 → rate_dish at i-1, dropping the last rating;
//   - rate_dish at index 0 → select_dishes, clearing all ratings;
//   - restaurant_question → rate_dish positioned at the last dish with its
//     rating dropped so it can be re-rated. This always targets the last dish,
//     which is correct because the flow is strictly linear.
//
// Every successful back bumps the generation so in-flight async results are
// dropped.
func (s *Session) Back() (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.step {
	case StepSelectDishes:
		s.selectedRestaurant = nil
		s.allDishes = nil
		s.selectedDishes = nil
		s.isFirstVisit = false
		s.step = StepSelectRestaurant

	case StepRateDish:
		if s.currentDishIndex > 0 {
			s.currentDishIndex--
			s.dishRatings = s.dishRatings[:len(s.dishRatings)-1]
		} else {
			s.dishRatings = s.dishRatings[:0]
			s.selectedDishes = nil
			s.step = StepSelectDishes
		}

	case StepRestaurantQuestion:
		s.currentDishIndex = len(s.selectedDishes) - 1
		s.dishRatings = s.dishRatings[:len(s.dishRatings)-1]
		s.step = StepRateDish

	case StepComplete:
		return s.step, ErrAlreadyComplete

	default:
		return s.step, fmt.Errorf("%w: step=%s", ErrCannotGoBack, s.step)
	}

	s.generation++
	return s.step, nil
}

// BuildSubmission validates the (optional) feedback answer against the
// session question and assembles the aggregate submission with its points
// breakdown. It does not advance the step: completion is committed separately
// once the caller has persisted the submission, so a failed persistence leaves
// the session in restaurant_question for a retry.
func (s *Session) BuildSubmission(feedback *models.RestaurantFeedbackInput) (*models.RatingSubmission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepRestaurantQuestion {
		return nil, fmt.Errorf("%w: step=%s", ErrWrongStep, s.step)
	}

	if feedback != nil {
		if feedback.QuestionType != s.randomQuestion {
			return nil, fmt.Errorf("%w: expected %s, got %s", ErrQuestionMismatch, s.randomQuestion, feedback.QuestionType)
		}
		feedback.RestaurantID = s.selectedRestaurant.ID
	}

	points := ComputePoints(s.dishRatings, feedback, s.isFirstVisit)

	ratings := make([]models.DishRatingInput, len(s.dishRatings))
	copy(ratings, s.dishRatings)

	return &models.RatingSubmission{
		UserID:       s.userID,
		RestaurantID: s.selectedRestaurant.ID,
		DishRatings:  ratings,
		Feedback:     feedback,
		IsFirstVisit: s.isFirstVisit,
		Points:       points,
	}, nil
}

// Complete commits the restaurant_question → complete transition after the
// submission has been persisted. pointsEarned is immutable afterwards.
func (s *Session) Complete(submission *models.RatingSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step != StepRestaurantQuestion {
		return fmt.Errorf("%w: step=%s", ErrWrongStep, s.step)
	}
	if submission == nil {
		return ErrSubmissionNotBuilt
	}

	s.restaurantFeedback = submission.Feedback
	points := submission.Points
	s.pointsEarned = &points
	s.step = StepComplete
	return nil
}

func validateTags(opinion models.Opinion, tags []string) error {
	allowed := models.AllowedDishTags(opinion)
	if len(allowed) == 0 {
		if len(tags) > 0 {
			return fmt.Errorf("%w: %q opinion takes no tags", ErrTagNotAllowed, opinion)
		}
		return nil
	}

	for _, tag := range tags {
		found := false
		for _, a := range allowed {
			if strings.EqualFold(tag, a) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: %q with opinion %q", ErrTagNotAllowed, tag, opinion)
		}
	}
	return nil
}

// View is an immutable snapshot of a session for API responses.
type View struct {
	SessionID          string                   `json:"sessionId"`
	Step               Step                     `json:"step"`
	Restaurant         *models.Restaurant       `json:"restaurant,omitempty"`
	AllDishes          []*models.Dish           `json:"allDishes,omitempty"`
	SelectedDishes     []*models.Dish           `json:"selectedDishes,omitempty"`
	CurrentDishIndex   int                      `json:"currentDishIndex"`
	CurrentDish        *models.Dish             `json:"currentDish,omitempty"`
	RatedDishes        int                      `json:"ratedDishes"`
	Question           models.QuestionType      `json:"question"`
	IsFirstVisit       bool                     `json:"isFirstVisit"`
	PointsEarned       *models.PointsBreakdown  `json:"pointsEarned,omitempty"`
	Generation         uint64                   `json:"generation"`
}

// Snapshot returns a consistent view of the session.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		SessionID:        s.id,
		Step:             s.step,
		Restaurant:       s.selectedRestaurant,
		CurrentDishIndex: s.currentDishIndex,
		RatedDishes:      len(s.dishRatings),
		Question:         s.randomQuestion,
		IsFirstVisit:     s.isFirstVisit,
		PointsEarned:     s.pointsEarned,
		Generation:       s.generation,
	}

	switch s.step {
	case StepSelectDishes:
		v.AllDishes = s.allDishes
	case StepRateDish:
		v.SelectedDishes = s.selectedDishes
		v.CurrentDish = s.selectedDishes[s.currentDishIndex]
	}

	return v
}
