package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tastebud/tastebud-api/internal/models"
	"github.com/tastebud/tastebud-api/pkg/jwt"
)

const (
	// DinerSessionCookieName is the name of the session cookie
	DinerSessionCookieName = "diner_session"

	// DinerSessionContextKey is the key used to store session in context
	DinerSessionContextKey = "diner_session"
)

var (
	ErrSessionNotFound = errors.New("session not found in context")
	ErrInvalidSession  = errors.New("invalid session type")
)

// DinerSessionMiddleware validates the JWT session cookie and adds the diner
// session to the request context
func DinerSessionMiddleware(tokenManager *jwt.TokenManager, cookieDomain string, cookieSecure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(DinerSessionCookieName)
		if err != nil {
			_ = c.Error(fmt.Errorf("missing session cookie")) //nolint:errcheck
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := tokenManager.ValidateToken(cookie)
		if err != nil {
			_ = c.Error(fmt.Errorf("invalid session token: %w", err)) //nolint:errcheck

			// Clear invalid cookie
			clearSessionCookie(c, cookieDomain, cookieSecure)

			if errors.Is(err, jwt.ErrExpiredToken) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			}
			c.Abort()
			return
		}

		session := &models.DinerSession{
			ID:    claims.DinerID,
			Email: claims.Email,
			Name:  claims.Name,
		}

		c.Set(DinerSessionContextKey, session)
		c.Next()
	}
}

// OptionalDinerSessionMiddleware adds the diner session to the request
// context when a valid cookie is present, and lets anonymous requests
// through. Used for endpoints that personalize results but do not require
// a session.
func OptionalDinerSessionMiddleware(tokenManager *jwt.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(DinerSessionCookieName)
		if err != nil {
			c.Next()
			return
		}

		claims, err := tokenManager.ValidateToken(cookie)
		if err != nil {
			c.Next()
			return
		}

		c.Set(DinerSessionContextKey, &models.DinerSession{
			ID:    claims.DinerID,
			Email: claims.Email,
			Name:  claims.Name,
		})
		c.Next()
	}
}

// GetDinerSession extracts the diner session from context
func GetDinerSession(c *gin.Context) (*models.DinerSession, error) {
	val, exists := c.Get(DinerSessionContextKey)
	if !exists {
		return nil, ErrSessionNotFound
	}

	session, ok := val.(*models.DinerSession)
	if !ok {
		return nil, ErrInvalidSession
	}

	return session, nil
}

// SetSessionCookie sets the diner session cookie
func SetSessionCookie(c *gin.Context, token string, ttlSeconds int, domain string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		DinerSessionCookieName,
		token,
		ttlSeconds,
		"/",
		domain,
		secure,
		true, // HttpOnly
	)
}

// ClearSessionCookie clears the diner session cookie
func ClearSessionCookie(c *gin.Context, domain string, secure bool) {
	clearSessionCookie(c, domain, secure)
}

func clearSessionCookie(c *gin.Context, domain string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		DinerSessionCookieName,
		"",
		-1,
		"/",
		domain,
		secure,
		true, // HttpOnly
	)
}
