package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tastebud/tastebud-api/pkg/jwt"
	"github.com/tastebud/tastebud-api/pkg/logger"
)

// InternalAPIAuthMiddleware validates the internal API token for
// service-to-service endpoints (cache refresh, internal reads)
func InternalAPIAuthMiddleware(validToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("x-internal-tastebud-auth-token")

		if token == "" || !jwt.TimingSafeCompare(token, validToken) {
			logger.Warn("Invalid internal API token",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing internal API token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
