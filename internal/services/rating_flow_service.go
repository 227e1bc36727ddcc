package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tastebud/tastebud-api/config"
	"github.com/tastebud/tastebud-api/internal/cache"
	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/internal/ratingflow"
	"github.com/tastebud/tastebud-api/internal/repository"
	apperrors "github.com/tastebud/tastebud-api/pkg/errors"
	"github.com/tastebud/tastebud-api/pkg/httpclient"
	"github.com/tastebud/tastebud-api/pkg/logger"
	"github.com/tastebud/tastebud-api/pkg/metrics"
	"github.com/tastebud/tastebud-api/pkg/storage"
	"github.com/tastebud/tastebud-api/pkg/trigger"
)

// RatingFlowService drives the rating wizard: it owns the session store,
// resolves restaurants and menus for the selection steps, and turns a finished
// session into one persisted submission.
type RatingFlowService struct {
	sessions    *ratingflow.SessionStore
	cache       *cache.RestaurantCache
	restaurants repository.RestaurantDataSource
	dishes      repository.DishDataSource
	visits      repository.VisitDataSource
	photos      *storage.PhotoClient
	httpClient  httpclient.Client
	config      *config.Config
}

// NewRatingFlowService creates a new rating flow service instance
func NewRatingFlowService(
	sessions *ratingflow.SessionStore,
	restaurantCache *cache.RestaurantCache,
	restaurants repository.RestaurantDataSource,
	dishes repository.DishDataSource,
	visits repository.VisitDataSource,
	photos *storage.PhotoClient,
	cfg *config.Config,
	httpClient httpclient.Client,
) *RatingFlowService {
	return &RatingFlowService{
		sessions:    sessions,
		cache:       restaurantCache,
		restaurants: restaurants,
		dishes:      dishes,
		visits:      visits,
		photos:      photos,
		httpClient:  httpClient,
		config:      cfg,
	}
}

// StartSession opens a new rating flow for the user
func (s *RatingFlowService) StartSession(ctx context.Context, userID string) (ratingflow.View, error) {
	session := ratingflow.NewSession(userID, s.config.RatingFlow.MaxSelectedDishes)
	s.sessions.Put(session)

	metrics.RatingFlowSessions.WithLabelValues("started").Inc()
	logger.Info("Rating flow session started",
		zap.String("session_id", session.ID()),
		zap.String("user_id", userID))

	return session.Snapshot(), nil
}

// GetSession returns the current state of the user's session
func (s *RatingFlowService) GetSession(ctx context.Context, userID, sessionID string) (ratingflow.View, error) {
	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return ratingflow.View{}, err
	}
	return session.Snapshot(), nil
}

// SelectRestaurant resolves the chosen restaurant, its menu and the user's
// visit history, then commits the selection. The step does not advance until
// all three lookups have succeeded.
func (s *RatingFlowService) SelectRestaurant(ctx context.Context, userID, sessionID, restaurantSlug string) (ratingflow.View, error) {
	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return ratingflow.View{}, err
	}

	restaurant, err := s.resolveRestaurant(ctx, restaurantSlug)
	if err != nil {
		return ratingflow.View{}, err
	}

	dishes, err := s.resolveDishes(ctx, restaurant.ID)
	if err != nil {
		return ratingflow.View{}, err
	}
	if len(dishes) == 0 {
		return ratingflow.View{}, apperrors.InvalidInputError("restaurant", "restaurant has no dishes to rate")
	}

	visited, err := s.visits.HasVisited(ctx, userID, restaurant.ID)
	if err != nil {
		return ratingflow.View{}, fmt.Errorf("failed to check visit history: %w", err)
	}

	if err := session.SelectRestaurant(restaurant, dishes, !visited); err != nil {
		return ratingflow.View{}, stepError(err)
	}

	s.sessions.Put(session)
	metrics.RatingFlowSteps.WithLabelValues(string(ratingflow.StepSelectDishes), "forward").Inc()

	return session.Snapshot(), nil
}

// ConfirmDishes commits the dish selection and enters the rating loop
func (s *RatingFlowService) ConfirmDishes(ctx context.Context, userID, sessionID string, dishIDs []string) (ratingflow.View, error) {
	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return ratingflow.View{}, err
	}

	if err := session.ConfirmDishes(dishIDs); err != nil {
		return ratingflow.View{}, stepError(err)
	}

	s.sessions.Put(session)
	metrics.RatingFlowSteps.WithLabelValues(string(ratingflow.StepRateDish), "forward").Inc()

	return session.Snapshot(), nil
}

// RateDish records one dish rating and advances the loop
func (s *RatingFlowService) RateDish(ctx context.Context, userID, sessionID string, input models.DishRatingInput) (ratingflow.View, error) {
	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return ratingflow.View{}, err
	}

	step, err := session.RateDish(input)
	if err != nil {
		return ratingflow.View{}, stepError(err)
	}

	s.sessions.Put(session)
	metrics.RatingFlowSteps.WithLabelValues(string(step), "forward").Inc()

	return session.Snapshot(), nil
}

// SubmitFeedback answers the restaurant question and completes the flow
func (s *RatingFlowService) SubmitFeedback(ctx context.Context, userID, sessionID string, feedback *models.RestaurantFeedbackInput) (ratingflow.View, error) {
	if feedback == nil {
		return ratingflow.View{}, apperrors.InvalidInputError("feedback", "feedback payload is required")
	}
	return s.complete(ctx, userID, sessionID, feedback)
}

// SkipFeedback declines the restaurant question and completes the flow. The
// feedback-dependent point components stay at zero.
func (s *RatingFlowService) SkipFeedback(ctx context.Context, userID, sessionID string) (ratingflow.View, error) {
	return s.complete(ctx, userID, sessionID, nil)
}

// Back navigates one step backwards
func (s *RatingFlowService) Back(ctx context.Context, userID, sessionID string) (ratingflow.View, error) {
	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return ratingflow.View{}, err
	}

	step, err := session.Back()
	if err != nil {
		return ratingflow.View{}, stepError(err)
	}

	s.sessions.Put(session)
	metrics.RatingFlowSteps.WithLabelValues(string(step), "back").Inc()

	return session.Snapshot(), nil
}

// AbandonSession discards an in-flight session
func (s *RatingFlowService) AbandonSession(ctx context.Context, userID, sessionID string) error {
	if _, err := s.ownedSession(userID, sessionID); err != nil {
		return err
	}

	s.sessions.Delete(sessionID)
	logger.Info("Rating flow session abandoned",
		zap.String("session_id", sessionID),
		zap.String("user_id", userID))

	return nil
}

// UploadPhoto stores a dish or restaurant photo for the session and returns
// its URL. The caller attaches the URL to the rating or feedback payload. If
// the user navigated backwards while the upload was in flight the result is
// discarded, the session state it belonged to no longer exists.
func (s *RatingFlowService) UploadPhoto(ctx context.Context, userID, sessionID, kind, photoData, contentType string) (string, error) {
	if kind != "dish" && kind != "restaurant" {
		return "", apperrors.InvalidInputError("kind", "must be dish or restaurant")
	}

	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return "", err
	}

	if s.photos == nil {
		return "", apperrors.InvalidInputError("photo", "photo uploads are not available")
	}

	if err := s.photos.ValidatePhotoType(contentType); err != nil {
		metrics.PhotoUploads.WithLabelValues(kind, "invalid").Inc()
		return "", apperrors.InvalidInputError("contentType", err.Error())
	}
	if err := s.photos.ValidatePhotoSize(photoData); err != nil {
		metrics.PhotoUploads.WithLabelValues(kind, "invalid").Inc()
		return "", apperrors.InvalidInputError("photo", err.Error())
	}

	generation := session.Generation()
	key := fmt.Sprintf("visits/%s/%s-%s%s", session.ID(), kind, uuid.NewString(), extensionFor(contentType))

	url, err := s.photos.UploadPhoto(ctx, photoData, key, contentType)
	if err != nil {
		metrics.PhotoUploads.WithLabelValues(kind, "error").Inc()
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	if !session.GenerationMatches(generation) {
		metrics.PhotoUploads.WithLabelValues(kind, "stale").Inc()
		logger.Debug("Discarding stale photo upload",
			zap.String("session_id", sessionID),
			zap.String("key", key))
		return "", apperrors.InvalidInputError("photo", "session changed during upload, please retry")
	}

	metrics.PhotoUploads.WithLabelValues(kind, "success").Inc()
	return url, nil
}

// complete builds the submission, persists it and only then marks the session
// complete. A visit-record failure aborts the whole submission; feedback and
// points failures follow the configured policy and by default are logged
// without blocking completion.
func (s *RatingFlowService) complete(ctx context.Context, userID, sessionID string, feedback *models.RestaurantFeedbackInput) (ratingflow.View, error) {
	start := time.Now()

	session, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return ratingflow.View{}, err
	}

	submission, err := session.BuildSubmission(feedback)
	if err != nil {
		return ratingflow.View{}, stepError(err)
	}

	visitID, err := s.visits.CreateVisit(ctx, submission)
	if err != nil {
		metrics.RatingSubmissions.WithLabelValues("visit_failed").Inc()
		logger.Error("Failed to record visit, submission aborted",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return ratingflow.View{}, apperrors.InternalError("failed to record visit")
	}

	if submission.Feedback != nil {
		if err := s.visits.SaveExperienceResponse(ctx, visitID, submission.Feedback); err != nil {
			if s.config.RatingFlow.FeedbackSaveFatal {
				metrics.RatingSubmissions.WithLabelValues("feedback_failed").Inc()
				return ratingflow.View{}, apperrors.InternalError("failed to save feedback")
			}
			logger.Error("Failed to save experience response, visit kept",
				zap.String("visit_id", visitID),
				zap.Error(err))
		}
	}

	if err := s.visits.AwardPoints(ctx, userID, visitID, submission.Points.Total); err != nil {
		if s.config.RatingFlow.PointsAwardFatal {
			metrics.RatingSubmissions.WithLabelValues("points_failed").Inc()
			return ratingflow.View{}, apperrors.InternalError("failed to award points")
		}
		logger.Error("Failed to award points, visit kept",
			zap.String("visit_id", visitID),
			zap.Error(err))
	}

	if err := session.Complete(submission); err != nil {
		return ratingflow.View{}, stepError(err)
	}
	s.sessions.Put(session)

	trigger.CallAsync(s.config.EventTriggers.VisitRecordedTriggerURL, visitID, s.httpClient)

	metrics.RatingSubmissions.WithLabelValues("success").Inc()
	metrics.RatingSubmissionDuration.Observe(metrics.MeasureDuration(start))
	metrics.PointsAwarded.Add(float64(submission.Points.Total))

	logger.Info("Rating flow completed",
		zap.String("session_id", sessionID),
		zap.String("visit_id", visitID),
		zap.Int("dishes_rated", len(submission.DishRatings)),
		zap.Bool("feedback_given", submission.Feedback != nil),
		zap.Int("points", submission.Points.Total))

	return session.Snapshot(), nil
}

func (s *RatingFlowService) ownedSession(userID, sessionID string) (*ratingflow.Session, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID() != userID {
		return nil, apperrors.AccessDeniedError("session belongs to another user")
	}
	return session, nil
}

func (s *RatingFlowService) resolveRestaurant(ctx context.Context, slug string) (*models.Restaurant, error) {
	if s.cache.IsReady() {
		if restaurant, err := s.cache.GetBySlug(slug); err == nil {
			return restaurant, nil
		}
	}

	restaurant, err := s.restaurants.GetRestaurantBySlug(ctx, slug)
	if err != nil {
		return nil, apperrors.NotFoundError("restaurant")
	}
	return restaurant, nil
}

func (s *RatingFlowService) resolveDishes(ctx context.Context, restaurantID string) ([]*models.Dish, error) {
	if s.cache.IsReady() {
		if dishesByRestaurant, err := s.cache.GetDishes(); err == nil {
			if dishes, ok := dishesByRestaurant[restaurantID]; ok {
				return dishes, nil
			}
		}
	}
	return s.dishes.GetDishesByRestaurant(ctx, restaurantID)
}

// stepError maps state-machine violations onto invalid-input errors so the
// handler layer returns 400s instead of 500s.
func stepError(err error) error {
	return apperrors.InvalidInputError("session", err.Error())
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
