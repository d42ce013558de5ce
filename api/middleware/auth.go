package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chronoboard/backend/pkg/auth"
	"github.com/chronoboard/backend/pkg/logger"
)

// UserIDKey is where Auth stores the verified user id in the gin context.
const UserIDKey = "user_id"

// Auth rejects requests whose bearer token fails verification. Handlers
// behind it can rely on UserIDKey being set.
func Auth(verifier *auth.Verifier, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "missing bearer token",
			})
			return
		}

		userID, err := verifier.Authenticate(token)
		if err != nil {
			log.Warn("token verification failed",
				logger.String("path", c.Request.URL.Path),
				logger.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"detail": "invalid authentication token",
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}
