package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tastebud/tastebud-api/config"
	"github.com/tastebud/tastebud-api/internal/models"
	apperrors "github.com/tastebud/tastebud-api/pkg/errors"
	"github.com/tastebud/tastebud-api/pkg/jwt"
	"github.com/tastebud/tastebud-api/pkg/logger"
)

// DinerAuthService issues guest sessions. There is no password flow: a diner
// provides a display name, gets an ID and a signed session cookie, and their
// visits and points accumulate under that ID.
type DinerAuthService struct {
	tokenManager *jwt.TokenManager
	config       *config.Config
}

// NewDinerAuthService creates a new diner auth service instance
func NewDinerAuthService(cfg *config.Config) *DinerAuthService {
	return &DinerAuthService{
		tokenManager: jwt.NewTokenManager(
			cfg.DinerSession.JWTSecret,
			cfg.DinerSession.JWTIssuer,
			cfg.DinerSession.SessionTTLHours,
		),
		config: cfg,
	}
}

// StartSession creates a diner identity and returns the session plus its
// signed token
func (s *DinerAuthService) StartSession(ctx context.Context, name, email string) (*models.DinerSession, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", apperrors.InvalidInputError("name", "name is required")
	}

	session := &models.DinerSession{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     strings.TrimSpace(email),
		CreatedAt: time.Now(),
	}

	token, err := s.tokenManager.GenerateToken(session.ID, session.Email, session.Name)
	if err != nil {
		logger.Error("Failed to generate session token", zap.Error(err))
		return nil, "", apperrors.InternalError("failed to create session")
	}

	logger.Info("Diner session started", zap.String("diner_id", session.ID))

	return session, token, nil
}

// GetSessionTTL returns the session lifetime in hours
func (s *DinerAuthService) GetSessionTTL() int {
	return s.config.DinerSession.SessionTTLHours
}

// GetCookieDomain returns the cookie domain for session cookies
func (s *DinerAuthService) GetCookieDomain() string {
	return s.config.DinerSession.CookieDomain
}

// GetCookieSecure returns whether session cookies require HTTPS
func (s *DinerAuthService) GetCookieSecure() bool {
	return s.config.DinerSession.CookieSecure
}

// GetTokenManager exposes the token manager for the session middleware
func (s *DinerAuthService) GetTokenManager() *jwt.TokenManager {
	return s.tokenManager
}
