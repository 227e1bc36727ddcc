package models

import "time"

// Opinion is the three-valued sentiment attached to a single dish rating.
type Opinion string

const (
	OpinionLiked    Opinion = "liked"
	OpinionOkay     Opinion = "okay"
	OpinionDisliked Opinion = "disliked"
)

// Valid reports whether the opinion is one of the known values.
func (o Opinion) Valid() bool {
	switch o {
	case OpinionLiked, OpinionOkay, OpinionDisliked:
		return true
	}
	return false
}

// Dish tag vocabularies are fixed and conditioned on opinion polarity:
// positive tags for liked dishes, negative tags for disliked dishes, and no
// tags at all for okay dishes.
var (
	PositiveDishTags = []string{
		"tasty",
		"generous_portion",
		"great_value",
		"beautiful_plating",
		"fresh_ingredients",
		"would_order_again",
	}

	NegativeDishTags = []string{
		"bland",
		"too_salty",
		"small_portion",
		"overpriced",
		"poorly_cooked",
		"arrived_cold",
	}
)

// AllowedDishTags returns the tag vocabulary for an opinion.
func AllowedDishTags(opinion Opinion) []string {
	switch opinion {
	case OpinionLiked:
		return PositiveDishTags
	case OpinionDisliked:
		return NegativeDishTags
	default:
		return nil
	}
}

// QuestionType identifies one restaurant-experience question.
type QuestionType string

const (
	QuestionServiceFriendly    QuestionType = "service_friendly"
	QuestionWouldReturn        QuestionType = "would_return"
	QuestionGoodValue          QuestionType = "good_value"
	QuestionCleanPremises      QuestionType = "clean_premises"
	QuestionWaitReasonable     QuestionType = "wait_reasonable"
	QuestionPleasantAtmosphere QuestionType = "pleasant_atmosphere"
)

// RestaurantQuestionTypes is the fixed enumeration one question is drawn from
// at rating-flow session start.
var RestaurantQuestionTypes = []QuestionType{
	QuestionServiceFriendly,
	QuestionWouldReturn,
	QuestionGoodValue,
	QuestionCleanPremises,
	QuestionWaitReasonable,
	QuestionPleasantAtmosphere,
}

// Valid reports whether the question type is one of the known values.
func (q QuestionType) Valid() bool {
	for _, known := range RestaurantQuestionTypes {
		if q == known {
			return true
		}
	}
	return false
}

// DishRatingInput is one completed dish rating inside a rating-flow session.
type DishRatingInput struct {
	DishID   string   `json:"dishId"`
	DishName string   `json:"dishName"`
	Opinion  Opinion  `json:"opinion"`
	Tags     []string `json:"tags,omitempty"`
	PhotoURL string   `json:"photoUrl,omitempty"`
}

// RestaurantFeedbackInput is the answer to the one restaurant-experience
// question asked per session.
type RestaurantFeedbackInput struct {
	RestaurantID string       `json:"restaurantId"`
	QuestionType QuestionType `json:"questionType"`
	Response     bool         `json:"response"`
	PhotoURL     string       `json:"photoUrl,omitempty"`
}

// PointsBreakdown is the deterministic points tally for one completed session.
type PointsBreakdown struct {
	DishRatings        int `json:"dishRatings"`
	DishTags           int `json:"dishTags"`
	DishPhotos         int `json:"dishPhotos"`
	RestaurantFeedback int `json:"restaurantFeedback"`
	RestaurantPhoto    int `json:"restaurantPhoto"`
	FirstVisitBonus    int `json:"firstVisitBonus"`
	Total              int `json:"total"`
}

// RatingSubmission is the single aggregate object produced when a rating flow
// completes. Feedback is nil when the restaurant question was skipped.
type RatingSubmission struct {
	UserID       string                   `json:"userId"`
	RestaurantID string                   `json:"restaurantId"`
	DishRatings  []DishRatingInput        `json:"dishRatings"`
	Feedback     *RestaurantFeedbackInput `json:"feedback,omitempty"`
	IsFirstVisit bool                     `json:"isFirstVisit"`
	Points       PointsBreakdown          `json:"points"`
}

// PointsEntry is one row of a user's points history.
type PointsEntry struct {
	VisitID      string    `json:"visitId"`
	RestaurantID string    `json:"restaurantId"`
	Points       int       `json:"points"`
	AwardedAt    time.Time `json:"awardedAt"`
}

// PointsSummary is the user's lifetime total plus their ledger.
type PointsSummary struct {
	Total   int            `json:"total"`
	History []*PointsEntry `json:"history"`
}
