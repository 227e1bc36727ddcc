package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tastebud/tastebud-api/pkg/jwt"
	"github.com/tastebud/tastebud-api/pkg/logger"
)

func init() {
	// Set Gin to test mode
	gin.SetMode(gin.TestMode)

	// Initialize logger for tests
	_ = logger.Initialize(logger.Config{
		Level:       "debug",
		Environment: "development",
		ServiceName: "tastebud-api-test",
	})
}

func sessionRouter(tokenManager *jwt.TokenManager) (*gin.Engine, *bool) {
	router := gin.New()
	handlerCalled := false
	router.Use(DinerSessionMiddleware(tokenManager, "", false))
	router.GET("/test", func(c *gin.Context) {
		handlerCalled = true
		session, err := GetDinerSession(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"diner_id": session.ID})
	})
	return router, &handlerCalled
}

func TestDinerSessionMiddleware_ValidCookie(t *testing.T) {
	tokenManager := jwt.NewTokenManager("test-secret", "tastebud-api", 24)
	token, err := tokenManager.GenerateToken("diner-123", "alex@example.com", "Alex")
	require.NoError(t, err)

	router, handlerCalled := sessionRouter(tokenManager)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", http.NoBody)
	req.AddCookie(&http.Cookie{Name: DinerSessionCookieName, Value: token})

	router.ServeHTTP(w, req)

	assert.True(t, *handlerCalled, "Handler should be called for valid session")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"diner_id":"diner-123"}`, w.Body.String())
}

func TestDinerSessionMiddleware_MissingCookie(t *testing.T) {
	tokenManager := jwt.NewTokenManager("test-secret", "tastebud-api", 24)
	router, handlerCalled := sessionRouter(tokenManager)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", http.NoBody)

	router.ServeHTTP(w, req)

	assert.False(t, *handlerCalled, "Handler should not be called without a cookie")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDinerSessionMiddleware_InvalidToken(t *testing.T) {
	tokenManager := jwt.NewTokenManager("test-secret", "tastebud-api", 24)
	router, handlerCalled := sessionRouter(tokenManager)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", http.NoBody)
	req.AddCookie(&http.Cookie{Name: DinerSessionCookieName, Value: "not-a-jwt"})

	router.ServeHTTP(w, req)

	assert.False(t, *handlerCalled, "Handler should not be called for an invalid token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDinerSessionMiddleware_TokenFromDifferentSecret(t *testing.T) {
	tokenManager := jwt.NewTokenManager("test-secret", "tastebud-api", 24)
	otherManager := jwt.NewTokenManager("other-secret", "tastebud-api", 24)
	token, err := otherManager.GenerateToken("diner-123", "", "Alex")
	require.NoError(t, err)

	router, handlerCalled := sessionRouter(tokenManager)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", http.NoBody)
	req.AddCookie(&http.Cookie{Name: DinerSessionCookieName, Value: token})

	router.ServeHTTP(w, req)

	assert.False(t, *handlerCalled)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInternalAPIAuthMiddleware_ValidToken(t *testing.T) {
	router := gin.New()
	handlerCalled := false
	router.Use(InternalAPIAuthMiddleware("internal-token"))
	router.GET("/test", func(c *gin.Context) {
		handlerCalled = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", http.NoBody)
	req.Header.Set("x-internal-tastebud-auth-token", "internal-token")

	router.ServeHTTP(w, req)

	assert.True(t, handlerCalled)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestInternalAPIAuthMiddleware_InvalidToken(t *testing.T) {
	router := gin.New()
	handlerCalled := false
	router.Use(InternalAPIAuthMiddleware("internal-token"))
	router.GET("/test", func(c *gin.Context) {
		handlerCalled = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", http.NoBody)
	req.Header.Set("x-internal-tastebud-auth-token", "wrong")

	router.ServeHTTP(w, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInternalAPIAuthMiddleware_MissingToken(t *testing.T) {
	router := gin.New()
	handlerCalled := false
	router.Use(InternalAPIAuthMiddleware("internal-token"))
	router.GET("/test", func(c *gin.Context) {
		handlerCalled = true
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/test", http.NoBody)

	router.ServeHTTP(w, req)

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
